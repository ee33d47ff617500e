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

// UnreadCountController handles the unread-total endpoint used for the inbox
// badge (one controller per endpoint).
type UnreadCountController struct {
	UC *usecase.UnreadCountUseCase
}

func NewUnreadCountController(pool *pgxpool.Pool, qc *cache.QueryCache) *UnreadCountController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &UnreadCountController{UC: usecase.NewUnreadCountUseCase(repo, qc)}
}

func (h *UnreadCountController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		total, err := h.UC.Execute(ctx, usecase.UnreadCountInput{UserID: userID})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user_id": userID, "unread": total})
	}
}
