package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// SweatSheetRepository persists whole SweatSheet documents; edits replace
// the full phase tree (last writer wins, per the editing model).
type SweatSheetRepository interface {
	Create(ctx context.Context, sheet *domain.SweatSheet) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SweatSheet, error)
	GetByIdempotencyKey(ctx context.Context, creatorID primitive.ObjectID, key string) (*domain.SweatSheet, error)
	GetActiveForAthlete(ctx context.Context, athleteID primitive.ObjectID) (*domain.SweatSheet, error)
	ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]domain.SweatSheet, error)
	ListAssigned(ctx context.Context, athleteID primitive.ObjectID) ([]domain.SweatSheet, error)
	ListTemplates(ctx context.Context) ([]domain.SweatSheet, error)
	Update(ctx context.Context, sheet *domain.SweatSheet) error
	Delete(ctx context.Context, id, creatorID primitive.ObjectID) error
}

// WorkoutRepository defines the interface for the shared workout library.
type WorkoutRepository interface {
	CreateCategory(ctx context.Context, category *domain.WorkoutCategory) (primitive.ObjectID, error)
	ListCategories(ctx context.Context) ([]domain.WorkoutCategory, error)
	GetCategoryByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutCategory, error)
	CreateExercise(ctx context.Context, exercise *domain.WorkoutExercise) (primitive.ObjectID, error)
	ListExercises(ctx context.Context) ([]domain.WorkoutExercise, error)
	ListExercisesByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]domain.WorkoutExercise, error)
	GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutExercise, error)
	CountCategories(ctx context.Context) (int64, error)
}

// ConversationRepository defines the interface for conversation data.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error)
	ListByParticipant(ctx context.Context, userID primitive.ObjectID) ([]domain.Conversation, error)
	FindDirect(ctx context.Context, a, b primitive.ObjectID) (*domain.Conversation, error)
	Touch(ctx context.Context, id primitive.ObjectID) error
}

// MessageRepository defines the interface for messages and read receipts.
type MessageRepository interface {
	Append(ctx context.Context, message *domain.Message) (primitive.ObjectID, error)
	GetByClientRef(ctx context.Context, conversationID primitive.ObjectID, clientRef string) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID, limit int64) ([]domain.Message, error)
	GetLast(ctx context.Context, conversationID primitive.ObjectID) (*domain.Message, error)
	MarkRead(ctx context.Context, conversationID, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, conversationID, userID primitive.ObjectID) (int64, error)
}

// CalendarRepository stores the single per-user events document. Put
// replaces the whole map; the stored document is the source of truth.
type CalendarRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Calendar, error)
	Put(ctx context.Context, userID primitive.ObjectID, events domain.EventsMap) (*domain.Calendar, error)
}

// NoteRepository defines the interface for author-scoped notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) (primitive.ObjectID, error)
	ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]domain.Note, error)
	Delete(ctx context.Context, id, authorID primitive.ObjectID) error
}
