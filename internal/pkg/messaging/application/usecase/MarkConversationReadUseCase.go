package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// MarkConversationReadInput identifies the conversation and the reading user.
type MarkConversationReadInput struct {
	ConversationID string
	UserID         string
}

// MarkConversationReadUseCase advances the participant's last_read_at
// watermark and bulk-updates per-message read status. The two writes are
// sequential and not transactional: a failure between them leaves the
// watermark ahead of the per-message bookkeeping.
type MarkConversationReadUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewMarkConversationReadUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *MarkConversationReadUseCase {
	return &MarkConversationReadUseCase{Repo: repo, Cache: qc}
}

func (uc *MarkConversationReadUseCase) Execute(ctx context.Context, in MarkConversationReadInput) error {
	if in.ConversationID == "" {
		return messaging.ErrMissingConversation
	}
	if in.UserID == "" {
		return messaging.ErrMissingUser
	}

	now := time.Now().UTC()

	if err := uc.Repo.TouchLastRead(ctx, in.ConversationID, in.UserID, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return messaging.ErrNotParticipant
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if _, err := uc.Repo.MarkMessagesRead(ctx, in.ConversationID, in.UserID, now); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Cache.InvalidateUsers(ctx, in.UserID)
	return nil
}
