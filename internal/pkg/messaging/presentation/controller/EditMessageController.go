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
	"agrimsg/internal/pkg/messaging/persistence/repository/adapter"
)

// EditMessageController handles message edits (one controller per endpoint).
// Edits are pushed to connected sessions as update events.
type EditMessageController struct {
	UC     *usecase.EditMessageUseCase
	Router *realtime.Router
}

func NewEditMessageController(pool *pgxpool.Pool, qc *cache.QueryCache, router *realtime.Router) *EditMessageController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &EditMessageController{
		UC:     usecase.NewEditMessageUseCase(repo, qc),
		Router: router,
	}
}

type editMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *EditMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID := c.Param("messageId")
		if messageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId is required"})
			return
		}

		var req editMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.EditMessageInput{
			MessageID: messageID,
			UserID:    req.UserID,
			Content:   req.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		publishMessage(h.Router, realtime.EventMessageUpdate, *msg)

		c.JSON(http.StatusOK, messageJSON(*msg))
	}
}
