package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrimsg/internal/pkg/messaging/application/usecase"
	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	"agrimsg/internal/pkg/messaging/persistence/repository/adapter"
)

// AddParticipantController handles adding a member to a conversation (one
// controller per endpoint).
type AddParticipantController struct {
	UC *usecase.AddParticipantUseCase
}

func NewAddParticipantController(pool *pgxpool.Pool, qc *cache.QueryCache) *AddParticipantController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &AddParticipantController{UC: usecase.NewAddParticipantUseCase(repo, qc)}
}

type addParticipantRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

func (h *AddParticipantController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req addParticipantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p, err := h.UC.Execute(ctx, usecase.AddParticipantInput{
			ConversationID: conversationID,
			UserID:         req.UserID,
			Role:           messaging.ParticipantRole(req.Role),
			DisplayName:    req.DisplayName,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"conversation_id": p.ConversationID,
			"user_id":         p.UserID,
			"role":            p.Role,
			"is_active":       p.IsActive,
			"joined_at":       p.JoinedAt,
		})
	}
}
