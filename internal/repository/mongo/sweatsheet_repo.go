// internal/repository/mongo/sweatsheet_repo.go
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

const sweatSheetCollectionName = "sweatsheets"

// mongoSweatSheetRepository implements repository.SweatSheetRepository.
// A SweatSheet is one document with the full phase tree embedded; creation
// is a single insert and every edit is a whole-tree replacement.
type mongoSweatSheetRepository struct {
	collection *mongo.Collection
}

// NewMongoSweatSheetRepository creates a new SweatSheet repository.
func NewMongoSweatSheetRepository(db *mongo.Database) repository.SweatSheetRepository {
	return &mongoSweatSheetRepository{
		collection: db.Collection(sweatSheetCollectionName),
	}
}

// Create inserts a fully built sheet. The idempotency-key unique index turns
// a retried provisioning call into a conflict instead of a duplicate sheet.
func (r *mongoSweatSheetRepository) Create(ctx context.Context, sheet *domain.SweatSheet) (primitive.ObjectID, error) {
	if sheet.CreatorID == primitive.NilObjectID || sheet.Name == "" {
		return primitive.NilObjectID, errors.New("sheet requires creatorId and name")
	}
	if sheet.ID == primitive.NilObjectID {
		sheet.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = now
	}
	sheet.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, sheet)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted sheet ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single sheet with its full phase tree.
func (r *mongoSweatSheetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SweatSheet, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByIdempotencyKey finds the sheet a retried provisioning call already
// created, scoped to the creator so keys cannot collide across pros.
func (r *mongoSweatSheetRepository) GetByIdempotencyKey(ctx context.Context, creatorID primitive.ObjectID, key string) (*domain.SweatSheet, error) {
	return r.findOne(ctx, bson.M{"creatorId": creatorID, "idempotencyKey": key})
}

// GetActiveForAthlete finds the athlete's current live sheet, if any.
func (r *mongoSweatSheetRepository) GetActiveForAthlete(ctx context.Context, athleteID primitive.ObjectID) (*domain.SweatSheet, error) {
	return r.findOne(ctx, bson.M{"assignedTo": athleteID, "isActive": true, "isTemplate": false})
}

func (r *mongoSweatSheetRepository) findOne(ctx context.Context, filter bson.M) (*domain.SweatSheet, error) {
	var sheet domain.SweatSheet
	err := r.collection.FindOne(ctx, filter).Decode(&sheet)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &sheet, nil
}

// ListByCreator retrieves all sheets a pro created, newest first.
func (r *mongoSweatSheetRepository) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.SweatSheet, error) {
	return r.findAll(ctx, bson.M{"creatorId": creatorID})
}

// ListAssigned retrieves the active sheets assigned to an athlete.
func (r *mongoSweatSheetRepository) ListAssigned(ctx context.Context, athleteID primitive.ObjectID) ([]domain.SweatSheet, error) {
	return r.findAll(ctx, bson.M{"assignedTo": athleteID, "isActive": true})
}

// ListTemplates retrieves reusable template sheets.
func (r *mongoSweatSheetRepository) ListTemplates(ctx context.Context) ([]domain.SweatSheet, error) {
	return r.findAll(ctx, bson.M{"isTemplate": true})
}

func (r *mongoSweatSheetRepository) findAll(ctx context.Context, filter bson.M) ([]domain.SweatSheet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sheets []domain.SweatSheet
	if err = cursor.All(ctx, &sheets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	if sheets == nil {
		sheets = []domain.SweatSheet{}
	}
	return sheets, nil
}

// Update replaces the sheet's mutable state including the whole phase tree.
// Concurrent editors are not coordinated; the last write wins.
func (r *mongoSweatSheetRepository) Update(ctx context.Context, sheet *domain.SweatSheet) error {
	if sheet.ID == primitive.NilObjectID {
		return errors.New("sheet ID is required for update")
	}

	filter := bson.M{"_id": sheet.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":       sheet.Name,
			"assignedTo": sheet.AssignedTo,
			"isActive":   sheet.IsActive,
			"isTemplate": sheet.IsTemplate,
			"phases":     sheet.Phases,
			"updatedAt":  time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a sheet, enforcing creator ownership in the filter.
func (r *mongoSweatSheetRepository) Delete(ctx context.Context, id, creatorID primitive.ObjectID) error {
	if id == primitive.NilObjectID || creatorID == primitive.NilObjectID {
		return errors.New("sheet ID and creator ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "creatorId": creatorID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the sheet didn't exist or it belongs to another pro.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSweatSheetIndexes creates necessary indexes. Call during startup.
func EnsureSweatSheetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "creatorId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "assignedTo", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// One sheet per retried provisioning attempt. Sheets created without
			// a key are excluded from the index so they never collide.
			Keys: bson.D{{Key: "creatorId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "isTemplate", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
