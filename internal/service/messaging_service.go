package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/domain"
	"drpworkshop/server/internal/repository"
	"drpworkshop/server/internal/storage"
)

// --- Error Definitions ---
var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotParticipant       = errors.New("user is not a participant of this conversation")
	ErrEmptyMessage         = errors.New("message must carry text or a file")
	ErrSelfConversation     = errors.New("cannot open a conversation with yourself")
)

// DefaultMessagePageSize bounds how many messages one fetch returns.
const DefaultMessagePageSize = 100

// ConversationSummary is one inbox row: the conversation plus the derived
// display title, its most recent message, and the caller's unread count.
type ConversationSummary struct {
	Conversation domain.Conversation `json:"conversation"`
	Title        string              `json:"title"`
	LastMessage  *domain.Message     `json:"lastMessage,omitempty"`
	UnreadCount  int64               `json:"unreadCount"`
}

// SendMessageInput groups the fields of one outgoing message. ClientRef is an
// optional client-generated key; retries carrying the same ref return the
// first persisted message instead of appending a duplicate.
type SendMessageInput struct {
	ConversationID primitive.ObjectID
	Content        string
	FileKey        string
	ClientRef      string
}

// MessageAttachment pairs a presigned upload URL with the object key the
// client must echo back in the message it sends.
type MessageAttachment struct {
	ObjectKey string `json:"objectKey"`
	UploadURL string `json:"uploadUrl"`
}

// --- Service Interface ---

// MessagingService owns conversations, messages and read state. The server
// record is authoritative: senders receive the persisted message back and
// render that, never a locally fabricated copy.
type MessagingService interface {
	ListInbox(ctx context.Context, userID primitive.ObjectID) ([]ConversationSummary, error)
	GetOrCreateDirect(ctx context.Context, userID, otherID primitive.ObjectID) (*domain.Conversation, error)
	CreateGroup(ctx context.Context, creatorID primitive.ObjectID, title string, participantIDs []primitive.ObjectID) (*domain.Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID primitive.ObjectID, limit int64) ([]domain.Message, error)
	Send(ctx context.Context, senderID primitive.ObjectID, input SendMessageInput) (*domain.Message, error)
	MarkRead(ctx context.Context, userID, conversationID primitive.ObjectID) error
	PrepareAttachment(ctx context.Context, userID primitive.ObjectID, contentType string) (*MessageAttachment, error)
	AttachmentDownloadURL(ctx context.Context, userID, conversationID primitive.ObjectID, fileKey string) (string, error)
}

// --- Service Implementation ---

type messagingService struct {
	convoRepo   repository.ConversationRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

// NewMessagingService creates a new instance of messagingService.
func NewMessagingService(convoRepo repository.ConversationRepository, messageRepo repository.MessageRepository, userRepo repository.UserRepository, fileStorage storage.FileStorage) MessagingService {
	return &messagingService{
		convoRepo:   convoRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

// ListInbox returns the caller's conversations ordered most-recently-active
// first, each decorated with a title, the last message and an unread count.
func (s *messagingService) ListInbox(ctx context.Context, userID primitive.ObjectID) ([]ConversationSummary, error) {
	conversations, err := s.convoRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, convo := range conversations {
		summary := ConversationSummary{Conversation: convo}

		title, err := s.titleFor(ctx, &convo, userID)
		if err != nil {
			return nil, err
		}
		summary.Title = title

		last, err := s.messageRepo.GetLast(ctx, convo.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		summary.LastMessage = last

		unread, err := s.messageRepo.CountUnread(ctx, convo.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetOrCreateDirect returns the existing one-on-one conversation between the
// two users, creating it on first contact.
func (s *messagingService) GetOrCreateDirect(ctx context.Context, userID, otherID primitive.ObjectID) (*domain.Conversation, error) {
	if userID == otherID {
		return nil, ErrSelfConversation
	}
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	existing, err := s.convoRepo.FindDirect(ctx, userID, otherID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	convo := &domain.Conversation{
		Type:           domain.ConversationDirect,
		ParticipantIDs: []primitive.ObjectID{userID, otherID},
	}
	id, err := s.convoRepo.Create(ctx, convo)
	if err != nil {
		return nil, err
	}
	convo.ID = id
	return convo, nil
}

// CreateGroup opens a titled conversation among the creator and the given
// participants.
func (s *messagingService) CreateGroup(ctx context.Context, creatorID primitive.ObjectID, title string, participantIDs []primitive.ObjectID) (*domain.Conversation, error) {
	if title == "" {
		return nil, errors.New("group conversation requires a title")
	}

	members := []primitive.ObjectID{creatorID}
	for _, id := range participantIDs {
		if id == creatorID {
			continue
		}
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	if len(members) < 2 {
		return nil, errors.New("group conversation requires at least one other participant")
	}

	convo := &domain.Conversation{
		Type:           domain.ConversationGroup,
		Title:          title,
		ParticipantIDs: members,
	}
	id, err := s.convoRepo.Create(ctx, convo)
	if err != nil {
		return nil, err
	}
	convo.ID = id
	return convo, nil
}

// ListMessages returns the newest messages of a conversation in
// chronological order.
func (s *messagingService) ListMessages(ctx context.Context, userID, conversationID primitive.ObjectID, limit int64) ([]domain.Message, error) {
	if _, err := s.authorized(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > DefaultMessagePageSize {
		limit = DefaultMessagePageSize
	}
	return s.messageRepo.ListByConversation(ctx, conversationID, limit)
}

// Send appends one message and bumps the conversation's activity timestamp.
// The returned message carries the server-assigned ID and timestamp.
func (s *messagingService) Send(ctx context.Context, senderID primitive.ObjectID, input SendMessageInput) (*domain.Message, error) {
	if input.Content == "" && input.FileKey == "" {
		return nil, ErrEmptyMessage
	}
	if _, err := s.authorized(ctx, senderID, input.ConversationID); err != nil {
		return nil, err
	}

	messageType := domain.MessageText
	if input.FileKey != "" {
		messageType = domain.MessageFile
	}
	message := &domain.Message{
		ConversationID: input.ConversationID,
		SenderID:       senderID,
		Type:           messageType,
		Content:        input.Content,
		FileKey:        input.FileKey,
		ClientRef:      input.ClientRef,
		CreatedAt:      time.Now(),
	}

	id, err := s.messageRepo.Append(ctx, message)
	if err != nil {
		// A retried send with the same client ref already landed; the
		// original record is the answer.
		if errors.Is(err, repository.ErrConflict) && input.ClientRef != "" {
			return s.messageRepo.GetByClientRef(ctx, input.ConversationID, input.ClientRef)
		}
		return nil, err
	}
	message.ID = id

	if err := s.convoRepo.Touch(ctx, input.ConversationID); err != nil {
		return nil, err
	}
	return message, nil
}

// MarkRead records read receipts for every message in the conversation the
// user has not yet seen.
func (s *messagingService) MarkRead(ctx context.Context, userID, conversationID primitive.ObjectID) error {
	if _, err := s.authorized(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.messageRepo.MarkRead(ctx, conversationID, userID)
}

// PrepareAttachment mints an object key and a presigned upload URL; the file
// itself never passes through the API server.
func (s *messagingService) PrepareAttachment(ctx context.Context, userID primitive.ObjectID, contentType string) (*MessageAttachment, error) {
	objectKey := fmt.Sprintf("%s%s/%s", storage.AttachmentKeyPrefix, userID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &MessageAttachment{ObjectKey: objectKey, UploadURL: uploadURL}, nil
}

// AttachmentDownloadURL presigns a download for a file referenced by a
// message in one of the caller's conversations.
func (s *messagingService) AttachmentDownloadURL(ctx context.Context, userID, conversationID primitive.ObjectID, fileKey string) (string, error) {
	if _, err := s.authorized(ctx, userID, conversationID); err != nil {
		return "", err
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, fileKey, storage.DefaultPresignedURLExpiry)
}

// --- Helpers ---

func (s *messagingService) authorized(ctx context.Context, userID, conversationID primitive.ObjectID) (*domain.Conversation, error) {
	convo, err := s.convoRepo.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !convo.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return convo, nil
}

// titleFor derives the inbox title: groups use their stored title, directs
// show the other participants' display names.
func (s *messagingService) titleFor(ctx context.Context, convo *domain.Conversation, viewerID primitive.ObjectID) (string, error) {
	if convo.Title != "" {
		return convo.Title, nil
	}
	others := make([]primitive.ObjectID, 0, len(convo.ParticipantIDs))
	for _, id := range convo.ParticipantIDs {
		if id != viewerID {
			others = append(others, id)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, others)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(users))
	for i := range users {
		names = append(names, users[i].DisplayName())
	}
	return convo.DeriveTitle(names), nil
}
