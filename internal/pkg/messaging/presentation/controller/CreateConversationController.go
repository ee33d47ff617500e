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
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// CreateConversationController handles conversation creation for all three
// conversation types (one controller per endpoint).
type CreateConversationController struct {
	DirectUC *usecase.CreateDirectConversationUseCase
	GroupUC  *usecase.CreateGroupConversationUseCase
}

func NewCreateConversationController(pool *pgxpool.Pool, qc *cache.QueryCache, notifier notifsvc.Notifier) *CreateConversationController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &CreateConversationController{
		DirectUC: usecase.NewCreateDirectConversationUseCase(repo, qc),
		GroupUC:  usecase.NewCreateGroupConversationUseCase(repo, qc, notifier),
	}
}

type createConversationRequest struct {
	UserID           string   `json:"user_id" binding:"required"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	OtherUserID      string   `json:"other_user_id"`
	OtherDisplayName string   `json:"other_display_name"`
	ParticipantIDs   []string `json:"participant_ids"`
	OrganizationID   *string  `json:"organization_id"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		typ := messaging.ConversationType(req.Type)
		if typ == "" || typ == messaging.ConversationDirect {
			h.handleDirect(c, ctx, req)
			return
		}
		h.handleGroup(c, ctx, req, typ)
	}
}

func (h *CreateConversationController) handleDirect(c *gin.Context, ctx context.Context, req createConversationRequest) {
	out, err := h.DirectUC.Execute(ctx, usecase.CreateDirectConversationInput{
		UserID:           req.UserID,
		OtherUserID:      req.OtherUserID,
		OtherDisplayName: req.OtherDisplayName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if out.Existing {
		status = http.StatusOK
	}
	body := conversationJSON(out.Conversation)
	body["existing"] = out.Existing
	c.JSON(status, body)
}

func (h *CreateConversationController) handleGroup(c *gin.Context, ctx context.Context, req createConversationRequest, typ messaging.ConversationType) {
	conv, err := h.GroupUC.Execute(ctx, usecase.CreateGroupConversationInput{
		Title:          req.Title,
		CreatorID:      req.UserID,
		ParticipantIDs: req.ParticipantIDs,
		OrganizationID: req.OrganizationID,
		Type:           typ,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conversationJSON(*conv))
}
