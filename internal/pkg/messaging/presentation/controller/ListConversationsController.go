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

// ListConversationsController handles the inbox endpoint: every conversation
// the user belongs to, with the latest message and unread count per entry
// (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, qc *cache.QueryCache) *ListConversationsController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &ListConversationsController{UC: usecase.NewListConversationsUseCase(repo, qc)}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		previews, err := h.UC.Execute(ctx, usecase.ListConversationsInput{UserID: userID})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversations": previews,
			"count":         len(previews),
		})
	}
}
