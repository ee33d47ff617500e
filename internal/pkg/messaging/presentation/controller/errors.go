package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrimsg/internal/pkg/messaging/application/usecase"
	messaging "agrimsg/internal/pkg/messaging/domain"
)

// respondError maps use case errors onto HTTP statuses. Validation failures
// are the caller's fault; persistence failures are ours.
func respondError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		status = http.StatusInternalServerError
	case errors.Is(err, messaging.ErrNotParticipant), errors.Is(err, messaging.ErrNotSender):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// messageJSON serializes a message the same way across every endpoint that
// returns one.
func messageJSON(m messaging.Message) gin.H {
	return gin.H{
		"id":              m.ID,
		"conversation_id": m.ConversationID,
		"sender_id":       m.SenderID,
		"content":         m.Content,
		"content_type":    m.ContentType,
		"attachment_url":  m.AttachmentURL,
		"attachment_type": m.AttachmentType,
		"is_edited":       m.IsEdited,
		"created_at":      m.CreatedAt,
		"updated_at":      m.UpdatedAt,
	}
}

func conversationJSON(conv messaging.Conversation) gin.H {
	return gin.H{
		"id":              conv.ID,
		"title":           conv.Title,
		"type":            conv.Type,
		"created_by":      conv.CreatedBy,
		"organization_id": conv.OrganizationID,
		"created_at":      conv.CreatedAt,
		"updated_at":      conv.UpdatedAt,
	}
}
