package program

import (
	"errors"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
)

// --- Error Definitions ---
var (
	ErrPhaseLimit      = errors.New("sheet already has the maximum number of phases")
	ErrSectionFull     = errors.New("section already has the maximum number of exercises")
	ErrSectionAtFloor  = errors.New("section cannot shrink below the minimum number of exercises")
	ErrNotFound        = errors.New("entity not found in sheet")
	ErrInvalidSetCount = errors.New("set count must be between 1 and 10")
	ErrInvalidRep      = errors.New("rep count is not one of the allowed options")
)

// sectionPath addresses a section inside the sheet; exercisePath an exercise.
type sectionPath struct{ phase, section int }
type exercisePath struct{ phase, section, exercise int }

// Editor applies structural edits to one SweatSheet. Every entity is
// addressed by its stable ID through a lookup index, not by positional
// phase/section/exercise triples, so a stale position held by a caller can
// never mutate the wrong entity after a list resizes.
//
// An Editor is not safe for concurrent use; it owns the sheet for the
// duration of an editing session.
type Editor struct {
	sheet     *domain.SweatSheet
	phases    map[primitive.ObjectID]int
	sections  map[primitive.ObjectID]sectionPath
	exercises map[primitive.ObjectID]exercisePath
}

// NewEditor wraps a sheet and builds its ID index.
func NewEditor(sheet *domain.SweatSheet) *Editor {
	e := &Editor{sheet: sheet}
	e.reindex()
	return e
}

// Sheet returns the underlying document.
func (e *Editor) Sheet() *domain.SweatSheet {
	return e.sheet
}

// reindex rebuilds the ID lookup maps. Called after every structural change;
// field-level edits do not move entities and skip it.
func (e *Editor) reindex() {
	e.phases = make(map[primitive.ObjectID]int, len(e.sheet.Phases))
	e.sections = make(map[primitive.ObjectID]sectionPath)
	e.exercises = make(map[primitive.ObjectID]exercisePath)
	for pi := range e.sheet.Phases {
		phase := &e.sheet.Phases[pi]
		e.phases[phase.ID] = pi
		for si := range phase.Sections {
			section := &phase.Sections[si]
			e.sections[section.ID] = sectionPath{pi, si}
			for xi := range section.Exercises {
				e.exercises[section.Exercises[xi].ID] = exercisePath{pi, si, xi}
			}
		}
	}
}

func (e *Editor) section(id primitive.ObjectID) *domain.Section {
	path, ok := e.sections[id]
	if !ok {
		return nil
	}
	return &e.sheet.Phases[path.phase].Sections[path.section]
}

func (e *Editor) exercise(id primitive.ObjectID) *domain.SheetExercise {
	path, ok := e.exercises[id]
	if !ok {
		return nil
	}
	return &e.sheet.Phases[path.phase].Sections[path.section].Exercises[path.exercise]
}

// Exercise returns the exercise with the given ID, or nil when the sheet
// holds no such exercise. Callers may inspect but must route mutations
// through the editor.
func (e *Editor) Exercise(id primitive.ObjectID) *domain.SheetExercise {
	return e.exercise(id)
}

// InitializePhase appends the next contiguous phase: exactly eight sections,
// each with exactly six unset exercises. Refused once the sheet holds the
// maximum number of phases.
func (e *Editor) InitializePhase(now time.Time) (*domain.Phase, error) {
	if len(e.sheet.Phases) >= MaxPhases {
		return nil, ErrPhaseLimit
	}
	phase := newPhase(len(e.sheet.Phases)+1, now)
	e.sheet.Phases = append(e.sheet.Phases, phase)
	e.reindex()
	return e.sheet.CurrentPhase(), nil
}

// AddExercise appends one unset exercise to the section, refusing once the
// section is at capacity.
func (e *Editor) AddExercise(sectionID primitive.ObjectID) (*domain.SheetExercise, error) {
	section := e.section(sectionID)
	if section == nil {
		return nil, ErrNotFound
	}
	if len(section.Exercises) >= MaxExercisesPerSection {
		return nil, ErrSectionFull
	}
	section.Exercises = append(section.Exercises, newExercise(len(section.Exercises)+1))
	e.reindex()
	return &section.Exercises[len(section.Exercises)-1], nil
}

// RemoveExercise deletes the exercise, refusing when its section holds the
// minimum count or fewer. The floor is the fixed minimum of six, never a
// remembered creation-time count.
func (e *Editor) RemoveExercise(exerciseID primitive.ObjectID) error {
	path, ok := e.exercises[exerciseID]
	if !ok {
		return ErrNotFound
	}
	section := &e.sheet.Phases[path.phase].Sections[path.section]
	if len(section.Exercises) <= MinExercisesPerSection {
		return ErrSectionAtFloor
	}
	section.Exercises = append(section.Exercises[:path.exercise], section.Exercises[path.exercise+1:]...)
	e.reindex()
	return nil
}

// SetCategory points the exercise at a workout category. Changing the
// category always clears the specific workout, even if the new category
// contains one of the same name.
func (e *Editor) SetCategory(exerciseID primitive.ObjectID, ref domain.WorkoutRef) error {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return ErrNotFound
	}
	exercise.WorkoutCategory = ref
	exercise.SpecificWorkout = domain.WorkoutRef{}
	return nil
}

// SetSpecificWorkout points the exercise at a movement within its category.
func (e *Editor) SetSpecificWorkout(exerciseID primitive.ObjectID, ref domain.WorkoutRef) error {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return ErrNotFound
	}
	exercise.SpecificWorkout = ref
	return nil
}

// SetSets declares the exercise's set count and resizes its set-record list
// to match: growing appends empty records, shrinking truncates from the
// tail. Records that survive a resize keep their index and contents. An
// empty value clears both the count and the records.
func (e *Editor) SetSets(exerciseID primitive.ObjectID, sets string) error {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return ErrNotFound
	}
	if sets == "" {
		exercise.Sets = ""
		exercise.SetsData = nil
		return nil
	}
	n, err := strconv.Atoi(sets)
	if err != nil || n < 1 || n > MaxSetsPerExercise {
		return ErrInvalidSetCount
	}
	exercise.Sets = sets
	if n <= len(exercise.SetsData) {
		exercise.SetsData = exercise.SetsData[:n]
		return nil
	}
	for len(exercise.SetsData) < n {
		exercise.SetsData = append(exercise.SetsData, domain.SetRecord{})
	}
	return nil
}

// SetExerciseCompleted flags the whole exercise done or not done.
func (e *Editor) SetExerciseCompleted(exerciseID primitive.ObjectID, completed bool) error {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return ErrNotFound
	}
	exercise.Completed = completed
	return nil
}

// ToggleExerciseCompleted flips the completion flag and returns the new
// value.
func (e *Editor) ToggleExerciseCompleted(exerciseID primitive.ObjectID) (bool, error) {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return false, ErrNotFound
	}
	exercise.Completed = !exercise.Completed
	return exercise.Completed, nil
}

// setRecordAt returns the addressed set record, or nil when either the
// exercise is unknown or setIndex falls outside the current record list.
// Out-of-range set edits are silently dropped: the list may have shrunk
// since the caller rendered it.
func (e *Editor) setRecordAt(exerciseID primitive.ObjectID, setIndex int) *domain.SetRecord {
	exercise := e.exercise(exerciseID)
	if exercise == nil {
		return nil
	}
	if setIndex < 0 || setIndex >= len(exercise.SetsData) {
		return nil
	}
	return &exercise.SetsData[setIndex]
}

// SetReps records the rep count for one set. Reps must come from RepOptions.
func (e *Editor) SetReps(exerciseID primitive.ObjectID, setIndex int, reps string) error {
	if !ValidRep(reps) {
		return ErrInvalidRep
	}
	if rec := e.setRecordAt(exerciseID, setIndex); rec != nil {
		rec.Reps = reps
	}
	return nil
}

// SetWeight records the free-text weight for one set.
func (e *Editor) SetWeight(exerciseID primitive.ObjectID, setIndex int, weight string) error {
	if rec := e.setRecordAt(exerciseID, setIndex); rec != nil {
		rec.Weight = weight
	}
	return nil
}

// SetSetCompleted flags one set done or not done.
func (e *Editor) SetSetCompleted(exerciseID primitive.ObjectID, setIndex int, completed bool) error {
	if rec := e.setRecordAt(exerciseID, setIndex); rec != nil {
		rec.Completed = completed
	}
	return nil
}

// CompletePhase marks the phase complete and, when the completed phase is
// the latest one and the sheet is under the phase cap, initializes the next
// phase. The fourth phase never spawns a fifth. Returns the newly created
// phase, or nil when none was created.
func (e *Editor) CompletePhase(phaseID primitive.ObjectID, now time.Time) (*domain.Phase, error) {
	idx, ok := e.phases[phaseID]
	if !ok {
		return nil, ErrNotFound
	}
	phase := &e.sheet.Phases[idx]
	if !phase.IsCompleted {
		phase.IsCompleted = true
		completedAt := now.UTC()
		phase.CompletedAt = &completedAt
	}
	if idx != len(e.sheet.Phases)-1 || len(e.sheet.Phases) >= MaxPhases {
		return nil, nil
	}
	return e.InitializePhase(now)
}
