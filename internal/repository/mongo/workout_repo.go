// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
)

const (
	workoutCategoryCollectionName = "workout_categories"
	workoutExerciseCollectionName = "workout_exercises"
)

// mongoWorkoutRepository implements repository.WorkoutRepository over the
// two library collections.
type mongoWorkoutRepository struct {
	categories *mongo.Collection
	exercises  *mongo.Collection
}

// NewMongoWorkoutRepository creates a new workout library repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		categories: db.Collection(workoutCategoryCollectionName),
		exercises:  db.Collection(workoutExerciseCollectionName),
	}
}

// CreateCategory inserts a new workout category.
func (r *mongoWorkoutRepository) CreateCategory(ctx context.Context, category *domain.WorkoutCategory) (primitive.ObjectID, error) {
	if category.Name == "" {
		return primitive.NilObjectID, errors.New("category name is required")
	}
	category.ID = primitive.NewObjectID()
	category.CreatedAt = time.Now().UTC()

	result, err := r.categories.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted category ID")
	}
	return insertedID, nil
}

// ListCategories retrieves all library categories sorted by name.
func (r *mongoWorkoutRepository) ListCategories(ctx context.Context) ([]domain.WorkoutCategory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.categories.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []domain.WorkoutCategory
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.WorkoutCategory{}
	}
	return categories, nil
}

// GetCategoryByID retrieves a single category.
func (r *mongoWorkoutRepository) GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCategory, error) {
	var category domain.WorkoutCategory
	err := r.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateExercise inserts a new library movement.
func (r *mongoWorkoutRepository) CreateExercise(ctx context.Context, exercise *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CategoryID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and categoryId are required")
	}
	exercise.ID = primitive.NewObjectID()
	exercise.CreatedAt = time.Now().UTC()

	result, err := r.exercises.InsertOne(ctx, exercise)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// ListExercises retrieves the whole movement library.
func (r *mongoWorkoutRepository) ListExercises(ctx context.Context) ([]domain.WorkoutExercise, error) {
	return r.findExercises(ctx, bson.M{})
}

// ListExercisesByCategory retrieves the movements in one category.
func (r *mongoWorkoutRepository) ListExercisesByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	return r.findExercises(ctx, bson.M{"categoryId": categoryID})
}

func (r *mongoWorkoutRepository) findExercises(ctx context.Context, filter bson.M) ([]domain.WorkoutExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.exercises.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.WorkoutExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.WorkoutExercise{}
	}
	return exercises, nil
}

// GetExerciseByID retrieves a single library movement.
func (r *mongoWorkoutRepository) GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error) {
	var exercise domain.WorkoutExercise
	err := r.exercises.FindOne(ctx, bson.M{"_id": id}).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// CountCategories reports how many categories exist; the seeder uses this to
// decide whether the library needs populating.
func (r *mongoWorkoutRepository) CountCategories(ctx context.Context) (int64, error) {
	return r.categories.CountDocuments(ctx, bson.M{})
}

// EnsureWorkoutIndexes creates necessary indexes for both library
// collections. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, categories, exercises *mongo.Collection) {
	_, err := categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", categories.Name(), err)
	}

	_, err = exercises.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "categoryId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "categoryId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", exercises.Name(), err)
	}
}
