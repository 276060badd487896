// internal/repository/mongo/conversation_repo.go
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

const conversationCollectionName = "conversations"

// mongoConversationRepository implements repository.ConversationRepository.
type mongoConversationRepository struct {
	collection *mongo.Collection
}

// NewMongoConversationRepository creates a new conversation repository.
func NewMongoConversationRepository(db *mongo.Database) repository.ConversationRepository {
	return &mongoConversationRepository{
		collection: db.Collection(conversationCollectionName),
	}
}

// Create inserts a new conversation.
func (r *mongoConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (primitive.ObjectID, error) {
	if len(conversation.ParticipantIDs) < 2 {
		return primitive.NilObjectID, errors.New("conversation requires at least two participants")
	}
	conversation.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, conversation)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted conversation ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single conversation.
func (r *mongoConversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// ListByParticipant retrieves every conversation the user takes part in,
// most recently active first.
func (r *mongoConversationRepository) ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Conversation, error) {
	filter := bson.M{"participantIds": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var conversations []domain.Conversation
	if err = cursor.All(ctx, &conversations); err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	return conversations, nil
}

// FindDirect looks up the existing direct conversation between two users.
func (r *mongoConversationRepository) FindDirect(ctx context.Context, a, b primitive.ObjectID) (*domain.Conversation, error) {
	filter := bson.M{
		"type":           domain.ConversationDirect,
		"participantIds": bson.M{"$all": bson.A{a, b}, "$size": 2},
	}
	var conversation domain.Conversation
	err := r.collection.FindOne(ctx, filter).Decode(&conversation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

// Touch bumps the conversation's updatedAt so it sorts to the top of the
// list after a new message.
func (r *mongoConversationRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureConversationIndexes creates necessary indexes. Call during startup.
func EnsureConversationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participantIds", Value: 1}, {Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
