package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// RemoveParticipantInput identifies the conversation and the user to remove.
type RemoveParticipantInput struct {
	ConversationID string
	UserID         string
	DisplayName    string
}

// RemoveParticipantUseCase soft-deletes a membership: is_active flips to
// false, the row survives so read state and history stay attributable.
type RemoveParticipantUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewRemoveParticipantUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *RemoveParticipantUseCase {
	return &RemoveParticipantUseCase{Repo: repo, Cache: qc}
}

func (uc *RemoveParticipantUseCase) Execute(ctx context.Context, in RemoveParticipantInput) error {
	if in.ConversationID == "" {
		return messaging.ErrMissingConversation
	}
	if in.UserID == "" {
		return messaging.ErrMissingUser
	}

	if err := uc.Repo.DeactivateParticipant(ctx, in.ConversationID, in.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return messaging.ErrNotParticipant
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	writeSystemMessage(ctx, uc.Repo, in.ConversationID, displayOrID(in.DisplayName, in.UserID)+" left the conversation")
	invalidateMembers(ctx, uc.Repo, uc.Cache, in.ConversationID, in.UserID)

	return nil
}
