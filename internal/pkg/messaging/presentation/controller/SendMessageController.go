package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrimsg/internal/infrastructure/realtime"
	"agrimsg/internal/pkg/messaging/application/usecase"
	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	"agrimsg/internal/pkg/messaging/persistence/repository/adapter"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// SendMessageController handles the send-message endpoint only (one
// controller per endpoint). Successful sends are pushed to connected
// sessions through the realtime router.
type SendMessageController struct {
	UC     *usecase.SendMessageUseCase
	Router *realtime.Router
}

func NewSendMessageController(pool *pgxpool.Pool, qc *cache.QueryCache, notifier notifsvc.Notifier, router *realtime.Router) *SendMessageController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &SendMessageController{
		UC:     usecase.NewSendMessageUseCase(repo, qc, notifier),
		Router: router,
	}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	SenderID          string  `json:"sender_id" binding:"required"`
	Content           string  `json:"content"`
	ContentType       string  `json:"content_type"`
	AttachmentURL     *string `json:"attachment_url"`
	AttachmentType    *string `json:"attachment_type"`
	SenderDisplayName string  `json:"sender_display_name"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		in := usecase.SendMessageInput{
			ConversationID:    conversationID,
			SenderID:          req.SenderID,
			Content:           req.Content,
			ContentType:       messaging.ContentType(req.ContentType),
			AttachmentURL:     req.AttachmentURL,
			AttachmentType:    req.AttachmentType,
			SenderDisplayName: req.SenderDisplayName,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		msg, err := h.UC.Execute(ctx, in)
		if err != nil {
			respondError(c, err)
			return
		}

		publishMessage(h.Router, realtime.EventMessageInsert, *msg)

		c.JSON(http.StatusCreated, messageJSON(*msg))
	}
}

// publishMessage pushes a change event to sessions subscribed to the
// conversation. The sender's own session is excluded; its HTTP response (or
// socket ack) already carries the message.
func publishMessage(router *realtime.Router, eventType string, msg messaging.Message) {
	if router == nil {
		return
	}
	exclude := ""
	if msg.SenderID != nil {
		exclude = *msg.SenderID
	}
	ev, err := realtime.NewChangeEvent(eventType, msg.ConversationID, messageJSON(msg))
	if err != nil {
		return
	}
	router.Publish(ev, exclude)
}
