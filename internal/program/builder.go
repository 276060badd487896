// Package program maintains the SweatSheet Phase→Section→Exercise→Set tree
// in memory and applies structural edits without violating its shape
// invariants: contiguous 1-based phase numbers capped at four, exactly eight
// sections per phase, six to fifteen exercises per section, and a set-record
// list kept in sync with each exercise's declared set count.
//
// The package is pure: no networking, no persistence. Callers load a sheet,
// apply edits through an Editor, and persist the whole document themselves.
package program

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
)

// Structural limits of a SweatSheet.
const (
	MaxPhases              = 4
	SectionsPerPhase       = 8
	MinExercisesPerSection = 6
	MaxExercisesPerSection = 15
	MaxSetsPerExercise     = 10
)

// RepOptions is the fixed enumeration a set's rep count is chosen from.
var RepOptions = []string{"5", "8", "10", "12", "15", "20", "25", "30"}

// ValidRep reports whether reps is one of the allowed rep counts or empty.
func ValidRep(reps string) bool {
	if reps == "" {
		return true
	}
	for _, r := range RepOptions {
		if r == reps {
			return true
		}
	}
	return false
}

// NewSheet builds a complete SweatSheet for an athlete: phase 1 with eight
// sections and six unset exercises per section. The caller persists it in a
// single insert; there is no partial remote state to reconcile afterwards.
func NewSheet(name string, creatorID primitive.ObjectID, athleteID *primitive.ObjectID, now time.Time) *domain.SweatSheet {
	sheet := &domain.SweatSheet{
		ID:         primitive.NewObjectID(),
		Name:       name,
		CreatorID:  creatorID,
		AssignedTo: athleteID,
		IsActive:   true,
		IsTemplate: false,
		Phases:     []domain.Phase{newPhase(1, now)},
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	return sheet
}

func newPhase(number int, now time.Time) domain.Phase {
	phase := domain.Phase{
		ID:          primitive.NewObjectID(),
		PhaseNumber: number,
		Sections:    make([]domain.Section, 0, SectionsPerPhase),
	}
	for i := 1; i <= SectionsPerPhase; i++ {
		phase.Sections = append(phase.Sections, newSection(i, now))
	}
	return phase
}

// newSection dates each section by its day offset from now: section 1 is
// today, section 2 tomorrow, and so on.
func newSection(number int, now time.Time) domain.Section {
	section := domain.Section{
		ID:            primitive.NewObjectID(),
		SectionNumber: number,
		Date:          now.AddDate(0, 0, number-1).Format(domain.SectionDateLayout),
		Exercises:     make([]domain.SheetExercise, 0, MinExercisesPerSection),
	}
	for j := 1; j <= MinExercisesPerSection; j++ {
		section.Exercises = append(section.Exercises, newExercise(j))
	}
	return section
}

func newExercise(order int) domain.SheetExercise {
	return domain.SheetExercise{
		ID:    primitive.NewObjectID(),
		Order: order,
	}
}
