package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

var ErrCategoryNotFound = errors.New("workout category not found")

// --- Service Interface ---

// WorkoutService exposes the shared, read-mostly workout library that
// SweatSheet exercises reference by id and name.
type WorkoutService interface {
	ListCategories(ctx context.Context) ([]domain.WorkoutCategory, error)
	ListExercises(ctx context.Context) ([]domain.WorkoutExercise, error)
	ListExercisesByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	// EnsureDefaults seeds the built-in catalog into an empty library. Safe
	// to call on every startup.
	EnsureDefaults(ctx context.Context) error
}

// --- Service Implementation ---

type workoutService struct {
	workoutRepo repository.WorkoutRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository) WorkoutService {
	return &workoutService{workoutRepo: workoutRepo}
}

func (s *workoutService) ListCategories(ctx context.Context) ([]domain.WorkoutCategory, error) {
	return s.workoutRepo.ListCategories(ctx)
}

func (s *workoutService) ListExercises(ctx context.Context) ([]domain.WorkoutExercise, error) {
	return s.workoutRepo.ListExercises(ctx)
}

func (s *workoutService) ListExercisesByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	if _, err := s.workoutRepo.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return s.workoutRepo.ListExercisesByCategory(ctx, categoryID)
}

// defaultCatalog is the built-in library: five categories, eight movements
// each. Exercises in a SweatSheet pick a category first; the chosen category
// constrains the specific movement menu.
var defaultCatalog = []struct {
	category  string
	movements []string
}{
	{"Upper Body", []string{
		"Bench Press", "Push-ups", "Pull-ups", "Shoulder Press",
		"Bicep Curls", "Tricep Dips", "Lateral Raises", "Rows",
	}},
	{"Lower Body", []string{
		"Squats", "Deadlifts", "Lunges", "Leg Press",
		"Calf Raises", "Leg Extensions", "Leg Curls", "Hip Thrusts",
	}},
	{"Core", []string{
		"Planks", "Crunches", "Russian Twists", "Mountain Climbers",
		"Bicycle Crunches", "Leg Raises", "Side Planks", "Ab Wheel",
	}},
	{"Cardio", []string{
		"Running", "Cycling", "Rowing", "Jump Rope",
		"Burpees", "Mountain Climbers", "High Knees", "Jumping Jacks",
	}},
	{"Flexibility", []string{
		"Stretching", "Yoga", "Pilates", "Mobility Work",
		"Foam Rolling", "Dynamic Stretching", "Static Stretching", "Hip Openers",
	}},
}

// EnsureDefaults populates the library when it is empty. A non-empty library
// is left untouched so operator edits survive restarts.
func (s *workoutService) EnsureDefaults(ctx context.Context) error {
	count, err := s.workoutRepo.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("Seeding default workout library...")
	for _, entry := range defaultCatalog {
		categoryID, err := s.workoutRepo.CreateCategory(ctx, &domain.WorkoutCategory{Name: entry.category})
		if err != nil {
			// Another instance may be seeding concurrently; its writes win.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return err
		}
		for _, name := range entry.movements {
			_, err := s.workoutRepo.CreateExercise(ctx, &domain.WorkoutExercise{
				Name:        name,
				CategoryID:  categoryID,
				Description: fmt.Sprintf("%s exercise for %s", name, entry.category),
			})
			if err != nil && !errors.Is(err, repository.ErrConflict) {
				return err
			}
		}
	}
	return nil
}
