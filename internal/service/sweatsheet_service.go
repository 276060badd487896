package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/program"
	"drpworkshop/server/internal/repository"
)

// --- Error Definitions ---
var (
	ErrSweatSheetNotFound      = errors.New("sweatsheet not found")
	ErrEmptySheetName          = errors.New("sweatsheet name cannot be empty")
	ErrSweatSheetAccess        = errors.New("user has no access to this sweatsheet")
	ErrSweatSheetNotOwner      = errors.New("only the creator can modify this sweatsheet")
	ErrAthleteNotFound         = errors.New("athlete not found")
	ErrNotAnAthlete            = errors.New("target user is not an athlete")
	ErrWorkoutNotFound         = errors.New("workout not found in library")
	ErrWorkoutCategoryMismatch = errors.New("workout does not belong to the exercise's category")
)

// --- Service Interface ---

// SweatSheetService owns the lifecycle and editing of workout programs.
// Every edit loads the document, applies one operation through the program
// editor, and writes the whole document back.
type SweatSheetService interface {
	// Lifecycle
	Create(ctx context.Context, creatorID primitive.ObjectID, name string, athleteID *primitive.ObjectID, idempotencyKey string) (*domain.SweatSheet, error)
	CreateTemplate(ctx context.Context, creatorID primitive.ObjectID, name string, idempotencyKey string) (*domain.SweatSheet, error)
	Get(ctx context.Context, userID primitive.ObjectID, sheetID primitive.ObjectID) (*domain.SweatSheet, error)
	GetActiveForAthlete(ctx context.Context, athleteID primitive.ObjectID) (*domain.SweatSheet, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.SweatSheet, error)
	ListTemplates(ctx context.Context) ([]domain.SweatSheet, error)
	Rename(ctx context.Context, creatorID, sheetID primitive.ObjectID, name string) (*domain.SweatSheet, error)
	Assign(ctx context.Context, creatorID, sheetID, athleteID primitive.ObjectID) (*domain.SweatSheet, error)
	Delete(ctx context.Context, creatorID, sheetID primitive.ObjectID) error

	// Structural edits (creator only)
	InitializePhase(ctx context.Context, userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error)
	AddExercise(ctx context.Context, userID, sheetID, sectionID primitive.ObjectID) (*domain.SweatSheet, error)
	RemoveExercise(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID) (*domain.SweatSheet, error)
	SetExerciseCategory(ctx context.Context, userID, sheetID, exerciseID, categoryID primitive.ObjectID) (*domain.SweatSheet, error)
	SetExerciseWorkout(ctx context.Context, userID, sheetID, exerciseID, workoutID primitive.ObjectID) (*domain.SweatSheet, error)
	SetExerciseSets(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, sets string) (*domain.SweatSheet, error)

	// Training edits (creator or assigned athlete)
	CompletePhase(ctx context.Context, userID, sheetID, phaseID primitive.ObjectID) (*domain.SweatSheet, error)
	ToggleExerciseCompleted(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID) (*domain.SweatSheet, error)
	SetSetReps(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, reps string) (*domain.SweatSheet, error)
	SetSetWeight(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, weight string) (*domain.SweatSheet, error)
	SetSetCompleted(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, completed bool) (*domain.SweatSheet, error)
}

// --- Service Implementation ---

type sweatSheetService struct {
	sheetRepo   repository.SweatSheetRepository
	userRepo    repository.UserRepository
	workoutRepo repository.WorkoutRepository
}

// NewSweatSheetService creates a new instance of sweatSheetService.
func NewSweatSheetService(sheetRepo repository.SweatSheetRepository, userRepo repository.UserRepository, workoutRepo repository.WorkoutRepository) SweatSheetService {
	return &sweatSheetService{
		sheetRepo:   sheetRepo,
		userRepo:    userRepo,
		workoutRepo: workoutRepo,
	}
}

// Create provisions a complete new SweatSheet in one insert: phase one with
// its eight sections and six unset exercises per section. The idempotency
// key makes a retried request return the already-created sheet instead of a
// duplicate. When the athlete already has an active sheet, that sheet is
// returned and no new one is created.
func (s *sweatSheetService) Create(ctx context.Context, creatorID primitive.ObjectID, name string, athleteID *primitive.ObjectID, idempotencyKey string) (*domain.SweatSheet, error) {
	if name == "" {
		return nil, ErrEmptySheetName
	}

	if idempotencyKey != "" {
		existing, err := s.sheetRepo.GetByIdempotencyKey(ctx, creatorID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	if athleteID != nil {
		athlete, err := s.userRepo.GetByID(ctx, *athleteID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrAthleteNotFound
			}
			return nil, err
		}
		if !athlete.IsAthlete() {
			return nil, ErrNotAnAthlete
		}

		active, err := s.sheetRepo.GetActiveForAthlete(ctx, *athleteID)
		if err == nil {
			return active, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	sheet := program.NewSheet(name, creatorID, athleteID, time.Now())
	sheet.IdempotencyKey = idempotencyKey

	id, err := s.sheetRepo.Create(ctx, sheet)
	if err != nil {
		// A retry raced us past the key check; the first insert won.
		if errors.Is(err, repository.ErrConflict) && idempotencyKey != "" {
			return s.sheetRepo.GetByIdempotencyKey(ctx, creatorID, idempotencyKey)
		}
		return nil, err
	}
	sheet.ID = id
	return sheet, nil
}

// CreateTemplate provisions an unassigned, inactive sheet to be reused as a
// starting point for athletes.
func (s *sweatSheetService) CreateTemplate(ctx context.Context, creatorID primitive.ObjectID, name string, idempotencyKey string) (*domain.SweatSheet, error) {
	if name == "" {
		return nil, ErrEmptySheetName
	}

	if idempotencyKey != "" {
		existing, err := s.sheetRepo.GetByIdempotencyKey(ctx, creatorID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	sheet := program.NewSheet(name, creatorID, nil, time.Now())
	sheet.IsTemplate = true
	sheet.IsActive = false
	sheet.IdempotencyKey = idempotencyKey

	id, err := s.sheetRepo.Create(ctx, sheet)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) && idempotencyKey != "" {
			return s.sheetRepo.GetByIdempotencyKey(ctx, creatorID, idempotencyKey)
		}
		return nil, err
	}
	sheet.ID = id
	return sheet, nil
}

// Get loads a sheet for any user allowed to see it: its creator, its
// assigned athlete, or anyone when it is a template. Structural gaps left by
// older documents are repaired on read and persisted.
func (s *sweatSheetService) Get(ctx context.Context, userID primitive.ObjectID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
	sheet, err := s.load(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if !canView(sheet, userID) {
		return nil, ErrSweatSheetAccess
	}
	return sheet, nil
}

// GetActiveForAthlete returns the athlete's single active sheet, repaired on
// read like Get.
func (s *sweatSheetService) GetActiveForAthlete(ctx context.Context, athleteID primitive.ObjectID) (*domain.SweatSheet, error) {
	sheet, err := s.sheetRepo.GetActiveForAthlete(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSweatSheetNotFound
		}
		return nil, err
	}
	if program.EnsureStructuralIntegrity(sheet, time.Now()) {
		if err := s.sheetRepo.Update(ctx, sheet); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

// ListForUser returns sheets the user created (pro) or was assigned
// (athlete).
func (s *sweatSheetService) ListForUser(ctx context.Context, userID primitive.ObjectID, role domain.Role) ([]domain.SweatSheet, error) {
	if role == domain.RolePro {
		return s.sheetRepo.ListByCreator(ctx, userID)
	}
	return s.sheetRepo.ListAssigned(ctx, userID)
}

func (s *sweatSheetService) ListTemplates(ctx context.Context) ([]domain.SweatSheet, error) {
	return s.sheetRepo.ListTemplates(ctx)
}

// Rename changes the sheet's display name.
func (s *sweatSheetService) Rename(ctx context.Context, creatorID, sheetID primitive.ObjectID, name string) (*domain.SweatSheet, error) {
	if name == "" {
		return nil, ErrEmptySheetName
	}
	sheet, err := s.loadOwned(ctx, creatorID, sheetID)
	if err != nil {
		return nil, err
	}
	sheet.Name = name
	if err := s.sheetRepo.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Assign hands the sheet to an athlete and activates it.
func (s *sweatSheetService) Assign(ctx context.Context, creatorID, sheetID, athleteID primitive.ObjectID) (*domain.SweatSheet, error) {
	sheet, err := s.loadOwned(ctx, creatorID, sheetID)
	if err != nil {
		return nil, err
	}

	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if !athlete.IsAthlete() {
		return nil, ErrNotAnAthlete
	}

	sheet.AssignedTo = &athleteID
	sheet.IsActive = true
	sheet.IsTemplate = false
	if err := s.sheetRepo.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Delete removes a sheet the caller created.
func (s *sweatSheetService) Delete(ctx context.Context, creatorID, sheetID primitive.ObjectID) error {
	err := s.sheetRepo.Delete(ctx, sheetID, creatorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSweatSheetNotFound
	}
	return err
}

// --- Structural edits ---

func (s *sweatSheetService) InitializePhase(ctx context.Context, userID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		_, err := ed.InitializePhase(time.Now())
		return err
	})
}

func (s *sweatSheetService) AddExercise(ctx context.Context, userID, sheetID, sectionID primitive.ObjectID) (*domain.SweatSheet, error) {
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		_, err := ed.AddExercise(sectionID)
		return err
	})
}

func (s *sweatSheetService) RemoveExercise(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID) (*domain.SweatSheet, error) {
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.RemoveExercise(exerciseID)
	})
}

// SetExerciseCategory resolves the category against the workout library and
// stamps its id and name onto the exercise. Changing category always clears
// any chosen specific workout.
func (s *sweatSheetService) SetExerciseCategory(ctx context.Context, userID, sheetID, exerciseID, categoryID primitive.ObjectID) (*domain.SweatSheet, error) {
	category, err := s.workoutRepo.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	ref := domain.WorkoutRef{ID: category.ID, Name: category.Name}
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.SetCategory(exerciseID, ref)
	})
}

// SetExerciseWorkout resolves the movement and verifies it belongs to the
// exercise's current category before stamping it.
func (s *sweatSheetService) SetExerciseWorkout(ctx context.Context, userID, sheetID, exerciseID, workoutID primitive.ObjectID) (*domain.SweatSheet, error) {
	workout, err := s.workoutRepo.GetExerciseByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	ref := domain.WorkoutRef{ID: workout.ID, Name: workout.Name}
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		ex := ed.Exercise(exerciseID)
		if ex == nil {
			return program.ErrNotFound
		}
		if ex.WorkoutCategory.ID != workout.CategoryID {
			return ErrWorkoutCategoryMismatch
		}
		return ed.SetSpecificWorkout(exerciseID, ref)
	})
}

func (s *sweatSheetService) SetExerciseSets(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, sets string) (*domain.SweatSheet, error) {
	return s.editAsOwner(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.SetSets(exerciseID, sets)
	})
}

// --- Training edits ---

func (s *sweatSheetService) CompletePhase(ctx context.Context, userID, sheetID, phaseID primitive.ObjectID) (*domain.SweatSheet, error) {
	return s.editAsParticipant(ctx, userID, sheetID, func(ed *program.Editor) error {
		_, err := ed.CompletePhase(phaseID, time.Now())
		return err
	})
}

func (s *sweatSheetService) ToggleExerciseCompleted(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID) (*domain.SweatSheet, error) {
	return s.editAsParticipant(ctx, userID, sheetID, func(ed *program.Editor) error {
		_, err := ed.ToggleExerciseCompleted(exerciseID)
		return err
	})
}

func (s *sweatSheetService) SetSetReps(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, reps string) (*domain.SweatSheet, error) {
	return s.editAsParticipant(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.SetReps(exerciseID, setIndex, reps)
	})
}

func (s *sweatSheetService) SetSetWeight(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, weight string) (*domain.SweatSheet, error) {
	return s.editAsParticipant(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.SetWeight(exerciseID, setIndex, weight)
	})
}

func (s *sweatSheetService) SetSetCompleted(ctx context.Context, userID, sheetID, exerciseID primitive.ObjectID, setIndex int, completed bool) (*domain.SweatSheet, error) {
	return s.editAsParticipant(ctx, userID, sheetID, func(ed *program.Editor) error {
		return ed.SetSetCompleted(exerciseID, setIndex, completed)
	})
}

// --- Helpers ---

// load fetches a sheet and repairs structural gaps on the way in.
func (s *sweatSheetService) load(ctx context.Context, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSweatSheetNotFound
		}
		return nil, err
	}
	if program.EnsureStructuralIntegrity(sheet, time.Now()) {
		if err := s.sheetRepo.Update(ctx, sheet); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

func (s *sweatSheetService) loadOwned(ctx context.Context, creatorID, sheetID primitive.ObjectID) (*domain.SweatSheet, error) {
	sheet, err := s.load(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if sheet.CreatorID != creatorID {
		return nil, ErrSweatSheetNotOwner
	}
	return sheet, nil
}

func canView(sheet *domain.SweatSheet, userID primitive.ObjectID) bool {
	if sheet.CreatorID == userID || sheet.IsTemplate {
		return true
	}
	return sheet.AssignedTo != nil && *sheet.AssignedTo == userID
}

func canTrain(sheet *domain.SweatSheet, userID primitive.ObjectID) bool {
	if sheet.CreatorID == userID {
		return true
	}
	return sheet.AssignedTo != nil && *sheet.AssignedTo == userID
}

// editAsOwner runs one editor operation and writes the whole document back.
// Concurrent writers are last-writer-wins at the document level.
func (s *sweatSheetService) editAsOwner(ctx context.Context, userID, sheetID primitive.ObjectID, op func(*program.Editor) error) (*domain.SweatSheet, error) {
	sheet, err := s.loadOwned(ctx, userID, sheetID)
	if err != nil {
		return nil, err
	}
	return s.applyEdit(ctx, sheet, op)
}

func (s *sweatSheetService) editAsParticipant(ctx context.Context, userID, sheetID primitive.ObjectID, op func(*program.Editor) error) (*domain.SweatSheet, error) {
	sheet, err := s.load(ctx, sheetID)
	if err != nil {
		return nil, err
	}
	if !canTrain(sheet, userID) {
		return nil, ErrSweatSheetAccess
	}
	return s.applyEdit(ctx, sheet, op)
}

func (s *sweatSheetService) applyEdit(ctx context.Context, sheet *domain.SweatSheet, op func(*program.Editor) error) (*domain.SweatSheet, error) {
	ed := program.NewEditor(sheet)
	if err := op(ed); err != nil {
		return nil, err
	}
	if err := s.sheetRepo.Update(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}
