package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrimsg/internal/pkg/messaging/application/usecase"
	"agrimsg/internal/pkg/messaging/cache"
	"agrimsg/internal/pkg/messaging/persistence/repository/adapter"
)

// MarkReadController handles the mark-conversation-read endpoint (one
// controller per endpoint).
type MarkReadController struct {
	UC *usecase.MarkConversationReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool, qc *cache.QueryCache) *MarkReadController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &MarkReadController{UC: usecase.NewMarkConversationReadUseCase(repo, qc)}
}

type markReadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.MarkConversationReadInput{
			ConversationID: conversationID,
			UserID:         req.UserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "read", "conversation_id": conversationID})
	}
}
