package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"drpworkshop/server/internal/service"
)

// MessagingHandler holds the messaging service dependency.
type MessagingHandler struct {
	messagingService service.MessagingService
}

// NewMessagingHandler creates a new MessagingHandler.
func NewMessagingHandler(messagingService service.MessagingService) *MessagingHandler {
	return &MessagingHandler{messagingService: messagingService}
}

// --- Request Structs ---

type OpenDirectRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type CreateGroupRequest struct {
	Title          string   `json:"title" binding:"required"`
	ParticipantIDs []string `json:"participantIds" binding:"required,min=1"`
}

type SendMessageRequest struct {
	Content string `json:"content"`
	FileKey string `json:"fileKey"`
	// ClientRef dedupes retried sends; the first persisted message wins.
	ClientRef string `json:"clientRef"`
}

type PrepareAttachmentRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handler Methods ---

// ListInbox returns the caller's conversations, newest activity first.
func (h *MessagingHandler) ListInbox(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	inbox, err := h.messagingService.ListInbox(c.Request.Context(), userID)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

// OpenDirect returns the one-on-one conversation with another user,
// creating it on first contact.
func (h *MessagingHandler) OpenDirect(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req OpenDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	otherID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid userId format")
		return
	}

	convo, err := h.messagingService.GetOrCreateDirect(c.Request.Context(), userID, otherID)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, convo)
}

// CreateGroup opens a titled group conversation.
func (h *MessagingHandler) CreateGroup(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	participantIDs := make([]primitive.ObjectID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid participant ID format")
			return
		}
		participantIDs = append(participantIDs, id)
	}

	convo, err := h.messagingService.CreateGroup(c.Request.Context(), userID, req.Title, participantIDs)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, convo)
}

// ListMessages returns a conversation's recent messages in chronological
// order. ?limit caps the page size.
func (h *MessagingHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := parseObjectIDParam(c, "conversationId")
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)

	messages, err := h.messagingService.ListMessages(c.Request.Context(), userID, conversationID, limit)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// SendMessage appends one message. The response carries the persisted
// record with its server-assigned ID and timestamp; clients render that.
func (h *MessagingHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := parseObjectIDParam(c, "conversationId")
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	message, err := h.messagingService.Send(c.Request.Context(), userID, service.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
		FileKey:        req.FileKey,
		ClientRef:      req.ClientRef,
	})
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// MarkRead records read receipts for everything the caller has not seen in
// the conversation.
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := parseObjectIDParam(c, "conversationId")
	if !ok {
		return
	}
	if err := h.messagingService.MarkRead(c.Request.Context(), userID, conversationID); err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PrepareAttachment mints an upload URL for a message attachment.
func (h *MessagingHandler) PrepareAttachment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req PrepareAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	attachment, err := h.messagingService.PrepareAttachment(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, attachment)
}

// GetAttachmentURL presigns a download for a file referenced by a message.
func (h *MessagingHandler) GetAttachmentURL(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	conversationID, ok := parseObjectIDParam(c, "conversationId")
	if !ok {
		return
	}
	fileKey := c.Query("fileKey")
	if fileKey == "" {
		abortWithError(c, http.StatusBadRequest, "fileKey query parameter is required")
		return
	}

	url, err := h.messagingService.AttachmentDownloadURL(c.Request.Context(), userID, conversationID, fileKey)
	if err != nil {
		h.handleMessagingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// --- Helpers ---

func (h *MessagingHandler) handleMessagingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotParticipant):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrSelfConversation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
