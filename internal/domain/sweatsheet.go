// internal/domain/sweatsheet.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SectionDateLayout is the wire format for section and calendar dates.
const SectionDateLayout = "2006-01-02"

// WorkoutRef is a reference into the workout library: either a category or a
// specific movement within one. A zero ref means "not chosen yet".
type WorkoutRef struct {
	ID   primitive.ObjectID `bson:"id,omitempty" json:"id,omitempty"`
	Name string             `bson:"name,omitempty" json:"name,omitempty"`
}

// IsZero reports whether the reference is unset.
func (r WorkoutRef) IsZero() bool {
	return r.ID.IsZero() && r.Name == ""
}

// SetRecord is one rep/weight/completion entry within an exercise.
type SetRecord struct {
	Reps      string `bson:"reps" json:"reps"`     // Chosen from the rep options, empty until set
	Weight    string `bson:"weight" json:"weight"` // Free text, e.g. "135"
	Completed bool   `bson:"completed" json:"completed"`
}

// SheetExercise is one prescribed movement within a section of a SweatSheet.
// The set-record list length is kept synchronized with Sets by the program
// editor; never resize SetsData directly.
type SheetExercise struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	WorkoutCategory WorkoutRef         `bson:"workoutCategory" json:"workoutCategory"`
	SpecificWorkout WorkoutRef         `bson:"specificWorkout" json:"specificWorkout"`
	Sets            string             `bson:"sets" json:"sets"` // Declared set count as text, "1".."10"
	SetsData        []SetRecord        `bson:"setsData" json:"setsData"`
	Completed       bool               `bson:"completed" json:"completed"`
	Order           int                `bson:"order" json:"order"`
}

// IsUnset reports whether the exercise has no workout chosen and no set data.
func (e *SheetExercise) IsUnset() bool {
	return e.WorkoutCategory.IsZero() && e.SpecificWorkout.IsZero() &&
		e.Sets == "" && len(e.SetsData) == 0
}

// Section is one scheduled day within a phase.
type Section struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	SectionNumber int                `bson:"sectionNumber" json:"sectionNumber"` // 1-based, unique within the phase
	Date          string             `bson:"date" json:"date"`                   // SectionDateLayout
	Exercises     []SheetExercise    `bson:"exercises" json:"exercises"`
}

// Phase is one of up to four sequential blocks of a SweatSheet.
type Phase struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	PhaseNumber int                `bson:"phaseNumber" json:"phaseNumber"` // 1-based, contiguous
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Sections    []Section          `bson:"sections" json:"sections"`
}

// SweatSheet is a structured multi-phase workout program created by a pro
// and (optionally) assigned to one athlete. The whole tree persists as a
// single document; edits are last-writer-wins whole-document updates.
type SweatSheet struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name"`
	CreatorID      primitive.ObjectID  `bson:"creatorId" json:"creatorId"`
	AssignedTo     *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	IsActive       bool                `bson:"isActive" json:"isActive"`
	IsTemplate     bool                `bson:"isTemplate" json:"isTemplate"`
	IdempotencyKey string              `bson:"idempotencyKey,omitempty" json:"-"` // Guards against double provisioning on retry
	Phases         []Phase             `bson:"phases" json:"phases"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// CurrentPhase returns the highest-numbered phase, or nil for an empty sheet.
func (s *SweatSheet) CurrentPhase() *Phase {
	if len(s.Phases) == 0 {
		return nil
	}
	return &s.Phases[len(s.Phases)-1]
}
