package program

import (
	"time"

	"drpworkshop/server/internal/domain"
)

// EnsureStructuralIntegrity repairs a sheet loaded from storage that was
// written by an older client with missing sections or empty exercise lists:
// every phase is padded to exactly eight sections and every section with no
// exercises receives six default ones, dated by day-offset from now.
//
// The pass is idempotent: running it on an already-complete sheet changes
// nothing. It only ever adds; existing sections and exercises are never
// removed, reordered, or rewritten. Returns true when the sheet was changed
// so the caller knows to persist the repaired document.
func EnsureStructuralIntegrity(sheet *domain.SweatSheet, now time.Time) bool {
	changed := false
	for pi := range sheet.Phases {
		phase := &sheet.Phases[pi]
		for len(phase.Sections) < SectionsPerPhase {
			phase.Sections = append(phase.Sections, newSection(len(phase.Sections)+1, now))
			changed = true
		}
		for si := range phase.Sections {
			section := &phase.Sections[si]
			if len(section.Exercises) > 0 {
				continue
			}
			for j := 1; j <= MinExercisesPerSection; j++ {
				section.Exercises = append(section.Exercises, newExercise(j))
			}
			changed = true
		}
	}
	return changed
}
