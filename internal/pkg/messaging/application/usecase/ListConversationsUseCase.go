package usecase

import (
	"context"
	"fmt"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// ListConversationsInput identifies whose inbox to load.
type ListConversationsInput struct {
	UserID string
}

// ListConversationsUseCase returns the user's conversation previews (latest
// message plus unread count per conversation), served from cache when fresh.
type ListConversationsUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewListConversationsUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Cache: qc}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]messaging.ConversationPreview, error) {
	if in.UserID == "" {
		return nil, messaging.ErrMissingUser
	}

	if previews, ok := uc.Cache.GetPreviews(ctx, in.UserID); ok {
		return previews, nil
	}

	previews, err := uc.Repo.ListPreviews(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	uc.Cache.SetPreviews(ctx, in.UserID, previews)
	return previews, nil
}
