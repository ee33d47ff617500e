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

// RemoveParticipantController handles removing a member from a conversation
// (one controller per endpoint). Removal is a soft delete.
type RemoveParticipantController struct {
	UC *usecase.RemoveParticipantUseCase
}

func NewRemoveParticipantController(pool *pgxpool.Pool, qc *cache.QueryCache) *RemoveParticipantController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &RemoveParticipantController{UC: usecase.NewRemoveParticipantUseCase(repo, qc)}
}

func (h *RemoveParticipantController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		userID := c.Param("userId")
		if conversationID == "" || userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId and userId are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.RemoveParticipantInput{
			ConversationID: conversationID,
			UserID:         userID,
			DisplayName:    c.Query("display_name"),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "removed", "conversation_id": conversationID, "user_id": userID})
	}
}
