package program

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newTestSheet(t *testing.T) *domain.SweatSheet {
	t.Helper()
	athleteID := primitive.NewObjectID()
	return NewSheet("Test Program", primitive.NewObjectID(), &athleteID, testNow)
}

func firstSection(sheet *domain.SweatSheet) *domain.Section {
	return &sheet.Phases[0].Sections[0]
}

func TestNewSheet_Shape(t *testing.T) {
	sheet := newTestSheet(t)

	require.True(t, sheet.IsActive)
	require.False(t, sheet.IsTemplate)
	require.Len(t, sheet.Phases, 1)
	require.Equal(t, 1, sheet.Phases[0].PhaseNumber)
	require.False(t, sheet.Phases[0].IsCompleted)
	require.Len(t, sheet.Phases[0].Sections, SectionsPerPhase)
	for i, section := range sheet.Phases[0].Sections {
		require.Equal(t, i+1, section.SectionNumber)
		require.Len(t, section.Exercises, MinExercisesPerSection)
		for _, ex := range section.Exercises {
			require.True(t, ex.IsUnset())
			require.False(t, ex.Completed)
		}
	}
}

func TestNewSheet_SectionDatesOffsetByDay(t *testing.T) {
	sheet := newTestSheet(t)

	sections := sheet.Phases[0].Sections
	require.Equal(t, "2026-03-02", sections[0].Date)
	require.Equal(t, "2026-03-03", sections[1].Date)
	require.Equal(t, "2026-03-09", sections[7].Date)
}

func TestInitializePhase_AlwaysEightByS6(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)

	for want := 2; want <= MaxPhases; want++ {
		phase, err := e.InitializePhase(testNow)
		require.NoError(t, err)
		require.Equal(t, want, phase.PhaseNumber)
		require.Len(t, phase.Sections, SectionsPerPhase)
		for _, section := range phase.Sections {
			require.Len(t, section.Exercises, MinExercisesPerSection)
		}
	}

	_, err := e.InitializePhase(testNow)
	require.ErrorIs(t, err, ErrPhaseLimit)
	require.Len(t, sheet.Phases, MaxPhases)
}

func TestCompletePhase_SpawnsNextUntilCap(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)

	for i := 0; i < 3; i++ {
		next, err := e.CompletePhase(sheet.Phases[i].ID, testNow)
		require.NoError(t, err)
		require.NotNil(t, next)
		require.Equal(t, i+2, next.PhaseNumber)
		require.True(t, sheet.Phases[i].IsCompleted)
		require.NotNil(t, sheet.Phases[i].CompletedAt)
	}
	require.Len(t, sheet.Phases, 4)

	next, err := e.CompletePhase(sheet.Phases[3].ID, testNow)
	require.NoError(t, err)
	require.Nil(t, next, "phase 4 must not spawn a phase 5")
	require.Len(t, sheet.Phases, 4)
	require.True(t, sheet.Phases[3].IsCompleted)
}

func TestCompletePhase_EarlierPhaseDoesNotSpawn(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	_, err := e.InitializePhase(testNow)
	require.NoError(t, err)

	// Completing phase 1 while phase 2 already exists marks it done but
	// must not append a duplicate phase 2.
	next, err := e.CompletePhase(sheet.Phases[0].ID, testNow)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, sheet.Phases, 2)
}

func TestAddExercise_CapAtFifteen(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	section := firstSection(sheet)

	for len(section.Exercises) < MaxExercisesPerSection {
		ex, err := e.AddExercise(section.ID)
		require.NoError(t, err)
		require.True(t, ex.IsUnset())
	}
	require.Len(t, section.Exercises, MaxExercisesPerSection)

	_, err := e.AddExercise(section.ID)
	require.ErrorIs(t, err, ErrSectionFull)
	require.Len(t, section.Exercises, MaxExercisesPerSection)
}

func TestRemoveExercise_FloorAtSix(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	section := firstSection(sheet)

	added, err := e.AddExercise(section.ID)
	require.NoError(t, err)
	require.Len(t, section.Exercises, 7)

	require.NoError(t, e.RemoveExercise(added.ID))
	require.Len(t, section.Exercises, 6)

	err = e.RemoveExercise(section.Exercises[0].ID)
	require.ErrorIs(t, err, ErrSectionAtFloor)
	require.Len(t, section.Exercises, 6)
}

func TestRemoveExercise_StaleIDAfterResize(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	section := firstSection(sheet)

	a, err := e.AddExercise(section.ID)
	require.NoError(t, err)
	aID := a.ID
	b, err := e.AddExercise(section.ID)
	require.NoError(t, err)
	bID := b.ID

	// Removing a shifts b's position; addressing by ID must still hit b.
	require.NoError(t, e.RemoveExercise(aID))
	require.NoError(t, e.RemoveExercise(bID))
	require.ErrorIs(t, e.RemoveExercise(bID), ErrNotFound)
}

func TestSetCategory_AlwaysClearsSpecificWorkout(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	upper := domain.WorkoutRef{ID: primitive.NewObjectID(), Name: "Upper Body"}
	bench := domain.WorkoutRef{ID: primitive.NewObjectID(), Name: "Bench Press"}
	require.NoError(t, e.SetCategory(exID, upper))
	require.NoError(t, e.SetSpecificWorkout(exID, bench))

	// The new category holds a workout with the same name; the reference
	// must still be cleared.
	lower := domain.WorkoutRef{ID: primitive.NewObjectID(), Name: "Lower Body"}
	require.NoError(t, e.SetCategory(exID, lower))

	ex := firstSection(sheet).Exercises[0]
	require.Equal(t, lower, ex.WorkoutCategory)
	require.True(t, ex.SpecificWorkout.IsZero())
}

func TestSetSets_GrowPreservesExistingRecords(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	require.NoError(t, e.SetSets(exID, "2"))
	require.NoError(t, e.SetReps(exID, 0, "10"))
	require.NoError(t, e.SetWeight(exID, 0, "135"))
	require.NoError(t, e.SetReps(exID, 1, "8"))

	require.NoError(t, e.SetSets(exID, "4"))
	ex := firstSection(sheet).Exercises[0]
	require.Equal(t, "4", ex.Sets)
	require.Len(t, ex.SetsData, 4)
	require.Equal(t, domain.SetRecord{Reps: "10", Weight: "135"}, ex.SetsData[0])
	require.Equal(t, domain.SetRecord{Reps: "8"}, ex.SetsData[1])
	require.Equal(t, domain.SetRecord{}, ex.SetsData[2])
	require.Equal(t, domain.SetRecord{}, ex.SetsData[3])
}

func TestSetSets_ShrinkTruncatesFromTail(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	require.NoError(t, e.SetSets(exID, "3"))
	require.NoError(t, e.SetWeight(exID, 0, "100"))
	require.NoError(t, e.SetWeight(exID, 1, "105"))
	require.NoError(t, e.SetWeight(exID, 2, "110"))

	require.NoError(t, e.SetSets(exID, "1"))
	ex := firstSection(sheet).Exercises[0]
	require.Len(t, ex.SetsData, 1)
	require.Equal(t, "100", ex.SetsData[0].Weight)
}

func TestSetSets_ClearAndInvalid(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	require.NoError(t, e.SetSets(exID, "5"))
	require.NoError(t, e.SetSets(exID, ""))
	ex := firstSection(sheet).Exercises[0]
	require.Empty(t, ex.Sets)
	require.Empty(t, ex.SetsData)

	require.ErrorIs(t, e.SetSets(exID, "0"), ErrInvalidSetCount)
	require.ErrorIs(t, e.SetSets(exID, "11"), ErrInvalidSetCount)
	require.ErrorIs(t, e.SetSets(exID, "lots"), ErrInvalidSetCount)
}

func TestSetFields_OutOfRangeSetIndexIsSilent(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	require.NoError(t, e.SetSets(exID, "2"))
	require.NoError(t, e.SetReps(exID, 5, "10"))
	require.NoError(t, e.SetWeight(exID, -1, "95"))
	require.NoError(t, e.SetSetCompleted(exID, 2, true))

	ex := firstSection(sheet).Exercises[0]
	require.Equal(t, domain.SetRecord{}, ex.SetsData[0])
	require.Equal(t, domain.SetRecord{}, ex.SetsData[1])
}

func TestSetReps_RejectsOffMenuValue(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	require.NoError(t, e.SetSets(exID, "1"))
	require.ErrorIs(t, e.SetReps(exID, 0, "13"), ErrInvalidRep)
	require.NoError(t, e.SetReps(exID, 0, "12"))
	require.NoError(t, e.SetReps(exID, 0, ""))
}

func TestToggleExerciseCompleted(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID

	done, err := e.ToggleExerciseCompleted(exID)
	require.NoError(t, err)
	require.True(t, done)
	done, err = e.ToggleExerciseCompleted(exID)
	require.NoError(t, err)
	require.False(t, done)

	_, err = e.ToggleExerciseCompleted(primitive.NewObjectID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEnsureStructuralIntegrity_PadsMissingStructure(t *testing.T) {
	sheet := newTestSheet(t)
	// Simulate a partially written document: phase 1 lost five sections and
	// one surviving section lost all its exercises.
	sheet.Phases[0].Sections = sheet.Phases[0].Sections[:3]
	sheet.Phases[0].Sections[1].Exercises = nil

	changed := EnsureStructuralIntegrity(sheet, testNow)
	require.True(t, changed)

	require.Len(t, sheet.Phases[0].Sections, SectionsPerPhase)
	for i, section := range sheet.Phases[0].Sections {
		require.Equal(t, i+1, section.SectionNumber)
		require.Len(t, section.Exercises, MinExercisesPerSection)
	}
	require.Equal(t, "2026-03-05", sheet.Phases[0].Sections[3].Date)
}

func TestEnsureStructuralIntegrity_Idempotent(t *testing.T) {
	sheet := newTestSheet(t)
	sheet.Phases[0].Sections = sheet.Phases[0].Sections[:5]

	require.True(t, EnsureStructuralIntegrity(sheet, testNow))
	after := *sheet
	require.False(t, EnsureStructuralIntegrity(sheet, testNow.Add(48*time.Hour)))
	require.Equal(t, after, *sheet)
}

func TestEnsureStructuralIntegrity_KeepsExistingData(t *testing.T) {
	sheet := newTestSheet(t)
	e := NewEditor(sheet)
	exID := firstSection(sheet).Exercises[0].ID
	require.NoError(t, e.SetSets(exID, "3"))
	require.NoError(t, e.SetWeight(exID, 0, "225"))
	sheet.Phases[0].Sections = sheet.Phases[0].Sections[:6]

	require.True(t, EnsureStructuralIntegrity(sheet, testNow))
	require.Equal(t, "225", firstSection(sheet).Exercises[0].SetsData[0].Weight)
	require.Len(t, firstSection(sheet).Exercises, MinExercisesPerSection)
}
