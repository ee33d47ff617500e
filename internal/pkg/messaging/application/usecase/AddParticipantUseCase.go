package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// AddParticipantInput identifies the conversation and the user to add.
// DisplayName, when known by the caller, appears in the system message.
type AddParticipantInput struct {
	ConversationID string
	UserID         string
	Role           messaging.ParticipantRole
	DisplayName    string
}

// AddParticipantUseCase adds (or reactivates) a conversation member and drops
// a system message into the conversation.
type AddParticipantUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewAddParticipantUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *AddParticipantUseCase {
	return &AddParticipantUseCase{Repo: repo, Cache: qc}
}

func (uc *AddParticipantUseCase) Execute(ctx context.Context, in AddParticipantInput) (*messaging.Participant, error) {
	if in.ConversationID == "" {
		return nil, messaging.ErrMissingConversation
	}
	if in.UserID == "" {
		return nil, messaging.ErrMissingUser
	}
	role := in.Role
	if role == "" {
		role = messaging.RoleMember
	}
	if role != messaging.RoleMember && role != messaging.RoleAdmin {
		return nil, messaging.ErrInvalidRole
	}

	p := messaging.Participant{
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		Role:           role,
		IsActive:       true,
		JoinedAt:       time.Now().UTC(),
	}
	if err := uc.Repo.AddParticipant(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.writeSystemMessage(ctx, in.ConversationID, displayOrID(in.DisplayName, in.UserID)+" joined the conversation")
	uc.invalidateMembers(ctx, in.ConversationID, in.UserID)

	return &p, nil
}

// writeSystemMessage records a membership change in the conversation log,
// best-effort.
func (uc *AddParticipantUseCase) writeSystemMessage(ctx context.Context, conversationID, content string) {
	writeSystemMessage(ctx, uc.Repo, conversationID, content)
}

func (uc *AddParticipantUseCase) invalidateMembers(ctx context.Context, conversationID string, extra ...string) {
	invalidateMembers(ctx, uc.Repo, uc.Cache, conversationID, extra...)
}

func displayOrID(displayName, userID string) string {
	if displayName != "" {
		return displayName
	}
	return userID
}

// writeSystemMessage inserts a sender-less system message; failures are
// logged, never surfaced.
func writeSystemMessage(ctx context.Context, repo repository.MessagingRepository, conversationID, content string) {
	msg, err := messaging.NewMessage(messaging.Message{
		ConversationID: conversationID,
		Content:        content,
		ContentType:    messaging.ContentSystem,
	})
	if err != nil {
		log.Printf("messaging: build system message failed: %v", err)
		return
	}
	if _, err := repo.SaveMessage(ctx, *msg); err != nil {
		log.Printf("messaging: save system message failed: %v", err)
	}
}

// invalidateMembers drops cached read models for every active member plus any
// extra user ids (e.g. a just-removed participant).
func invalidateMembers(ctx context.Context, repo repository.MessagingRepository, qc *cache.QueryCache, conversationID string, extra ...string) {
	ids := append([]string{}, extra...)
	if participants, err := repo.ListParticipants(ctx, conversationID, true); err == nil {
		for _, p := range participants {
			ids = append(ids, p.UserID)
		}
	} else {
		log.Printf("messaging: list participants for cache invalidation failed: %v", err)
	}
	qc.InvalidateUsers(ctx, ids...)
}
