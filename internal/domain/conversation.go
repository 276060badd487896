// internal/domain/conversation.go
package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversationType distinguishes one-on-one chats from group chats.
type ConversationType string

const (
	ConversationDirect ConversationType = "direct"
	ConversationGroup  ConversationType = "group"
)

// MessageType tags the payload kind of a message.
type MessageType string

const (
	MessageText MessageType = "text"
	MessageFile MessageType = "file" // Content is a caption, FileKey points into object storage
)

// Conversation is a set of participants with an append-only message list.
// Messages live in their own collection keyed by ConversationID.
type Conversation struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Type           ConversationType     `bson:"type" json:"type"`
	Title          string               `bson:"title,omitempty" json:"title,omitempty"` // Optional; directs derive one from participants
	ParticipantIDs []primitive.ObjectID `bson:"participantIds" json:"participantIds"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"` // Bumped on every message
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DeriveTitle produces a display title from participant names when no
// explicit title was set.
func (c *Conversation) DeriveTitle(names []string) string {
	if c.Title != "" {
		return c.Title
	}
	return strings.Join(names, ", ")
}

// Message belongs to one conversation. Server-assigned ID and timestamp are
// authoritative; clients wait for the persisted record rather than trusting
// an optimistic local append.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversationId" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	Type           MessageType        `bson:"type" json:"type"`
	Content        string             `bson:"content" json:"content"`
	FileKey        string             `bson:"fileKey,omitempty" json:"fileKey,omitempty"` // Object key for file messages
	ClientRef      string             `bson:"clientRef,omitempty" json:"clientRef,omitempty"` // Client-supplied key to dedupe retries
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// MessageRead is a per-user read receipt for one message.
type MessageRead struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MessageID primitive.ObjectID `bson:"messageId" json:"messageId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ReadAt    time.Time          `bson:"readAt" json:"readAt"`
}
