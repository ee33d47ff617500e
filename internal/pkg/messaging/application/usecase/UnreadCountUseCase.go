package usecase

import (
	"context"
	"fmt"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// UnreadCountInput identifies whose unread total to compute.
type UnreadCountInput struct {
	UserID string
}

// UnreadCountUseCase returns the user's total unread messages across all
// active conversations, served from cache when fresh.
type UnreadCountUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewUnreadCountUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *UnreadCountUseCase {
	return &UnreadCountUseCase{Repo: repo, Cache: qc}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, in UnreadCountInput) (int, error) {
	if in.UserID == "" {
		return 0, messaging.ErrMissingUser
	}

	if total, ok := uc.Cache.GetUnread(ctx, in.UserID); ok {
		return total, nil
	}

	total, err := uc.Repo.CountUnread(ctx, in.UserID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Cache.SetUnread(ctx, in.UserID, total)
	return total, nil
}
