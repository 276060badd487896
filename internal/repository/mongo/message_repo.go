// internal/repository/mongo/message_repo.go
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
	messageCollectionName     = "messages"
	messageReadCollectionName = "message_reads"
)

// mongoMessageRepository implements repository.MessageRepository. Messages
// are append-only; read state lives in a separate receipts collection.
type mongoMessageRepository struct {
	messages *mongo.Collection
	reads    *mongo.Collection
}

// NewMongoMessageRepository creates a new message repository.
func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		messages: db.Collection(messageCollectionName),
		reads:    db.Collection(messageReadCollectionName),
	}
}

// Append persists a new message. The server-assigned ID and timestamp are
// authoritative; a duplicate clientRef within the conversation maps to
// ErrConflict so a retried send cannot appear twice.
func (r *mongoMessageRepository) Append(ctx context.Context, message *domain.Message) (primitive.ObjectID, error) {
	if message.ConversationID == primitive.NilObjectID || message.SenderID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("message requires conversationId and senderId")
	}
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now().UTC()

	result, err := r.messages.InsertOne(ctx, message)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// GetByClientRef retrieves the already-persisted message for a retried send.
func (r *mongoMessageRepository) GetByClientRef(ctx context.Context, conversationID primitive.ObjectID, clientRef string) (*domain.Message, error) {
	var message domain.Message
	filter := bson.M{"conversationId": conversationID, "clientRef": clientRef}
	err := r.messages.FindOne(ctx, filter).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// ListByConversation retrieves up to limit of the conversation's most recent
// messages in chronological order.
func (r *mongoMessageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	filter := bson.M{"conversationId": conversationID}
	// Fetch newest first to honor the limit, then reverse for display order.
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions = findOptions.SetLimit(limit)
	}

	cursor, err := r.messages.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// GetLast retrieves the newest message in the conversation.
func (r *mongoMessageRepository) GetLast(ctx context.Context, conversationID primitive.ObjectID) (*domain.Message, error) {
	var message domain.Message
	filter := bson.M{"conversationId": conversationID}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.messages.FindOne(ctx, filter, findOptions).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &message, nil
}

// MarkRead writes a receipt for every message in the conversation the user
// has not read yet. Messages sent by the user need no receipt.
func (r *mongoMessageRepository) MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error {
	unreadIDs, err := r.unreadMessageIDs(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if len(unreadIDs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	receipts := make([]interface{}, 0, len(unreadIDs))
	for _, id := range unreadIDs {
		receipts = append(receipts, domain.MessageRead{
			ID:        primitive.NewObjectID(),
			MessageID: id,
			UserID:    userID,
			ReadAt:    now,
		})
	}
	// Unordered so one duplicate receipt (concurrent mark-read) doesn't
	// abort the rest.
	_, err = r.reads.InsertMany(ctx, receipts, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

// CountUnread reports how many messages from other senders the user has not
// read in the conversation.
func (r *mongoMessageRepository) CountUnread(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error) {
	unreadIDs, err := r.unreadMessageIDs(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(unreadIDs)), nil
}

func (r *mongoMessageRepository) unreadMessageIDs(ctx context.Context, conversationID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	// All message IDs in the conversation not sent by the user
	filter := bson.M{"conversationId": conversationID, "senderId": bson.M{"$ne": userID}}
	cursor, err := r.messages.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	candidateIDs := make([]primitive.ObjectID, 0, len(docs))
	for _, doc := range docs {
		candidateIDs = append(candidateIDs, doc.ID)
	}

	// Receipts the user already holds for those messages
	readCursor, err := r.reads.Find(ctx,
		bson.M{"userId": userID, "messageId": bson.M{"$in": candidateIDs}},
		options.Find().SetProjection(bson.M{"messageId": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer readCursor.Close(ctx)

	var receipts []struct {
		MessageID primitive.ObjectID `bson:"messageId"`
	}
	if err = readCursor.All(ctx, &receipts); err != nil {
		return nil, err
	}

	readSet := make(map[primitive.ObjectID]struct{}, len(receipts))
	for _, receipt := range receipts {
		readSet[receipt.MessageID] = struct{}{}
	}

	var unread []primitive.ObjectID
	for _, id := range candidateIDs {
		if _, ok := readSet[id]; !ok {
			unread = append(unread, id)
		}
	}
	return unread, nil
}

// EnsureMessageIndexes creates necessary indexes for messages and receipts.
// Call during startup.
func EnsureMessageIndexes(ctx context.Context, messages, reads *mongo.Collection) {
	_, err := messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Dedupe retried sends carrying a client ref. Messages without one
			// are excluded from the index so they never collide with each other.
			Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "clientRef", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"clientRef": bson.M{"$exists": true}}),
		},
	})
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", messages.Name(), err)
	}

	_, err = reads.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "messageId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", reads.Name(), err)
	}
}
