// internal/repository/mongo/calendar_repo.go
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

const calendarCollectionName = "calendars"

// mongoCalendarRepository implements repository.CalendarRepository. One
// document per user; Put upserts the whole events map in a single write.
type mongoCalendarRepository struct {
	collection *mongo.Collection
}

// NewMongoCalendarRepository creates a new calendar repository.
func NewMongoCalendarRepository(db *mongo.Database) repository.CalendarRepository {
	return &mongoCalendarRepository{
		collection: db.Collection(calendarCollectionName),
	}
}

// GetByUserID retrieves the user's calendar, returning an empty one when
// none has been stored yet (lazy creation on first Put).
func (r *mongoCalendarRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Calendar, error) {
	var calendar domain.Calendar
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&calendar)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Calendar{UserID: userID, Events: domain.EventsMap{}}, nil
		}
		return nil, err
	}
	if calendar.Events == nil {
		calendar.Events = domain.EventsMap{}
	}
	return &calendar, nil
}

// Put replaces the user's whole events map and returns the stored document,
// which callers treat as the new source of truth.
func (r *mongoCalendarRepository) Put(ctx context.Context, userID primitive.ObjectID, events domain.EventsMap) (*domain.Calendar, error) {
	if events == nil {
		events = domain.EventsMap{}
	}
	now := time.Now().UTC()

	filter := bson.M{"userId": userID}
	update := bson.M{
		"$set":         bson.M{"events": events, "updatedAt": now},
		"$setOnInsert": bson.M{"userId": userID},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var calendar domain.Calendar
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&calendar); err != nil {
		return nil, err
	}
	if calendar.Events == nil {
		calendar.Events = domain.EventsMap{}
	}
	return &calendar, nil
}

// EnsureCalendarIndexes creates necessary indexes. Call during startup.
func EnsureCalendarIndexes(ctx context.Context, collection *mongo.Collection) {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
