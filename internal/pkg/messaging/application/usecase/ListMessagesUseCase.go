package usecase

import (
	"context"
	"fmt"

	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// ListMessagesInput carries parameters to fetch a conversation's messages,
// ordered oldest first.
type ListMessagesInput struct {
	ConversationID string
	Limit          int
	Offset         int
}

// ListMessagesUseCase fetches messages for a conversation honoring limit/offset.
type ListMessagesUseCase struct {
	Repo repository.MessagingRepository
}

func NewListMessagesUseCase(repo repository.MessagingRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{Repo: repo}
}

func (uc *ListMessagesUseCase) Execute(ctx context.Context, in ListMessagesInput) ([]messaging.Message, error) {
	if in.ConversationID == "" {
		return nil, messaging.ErrMissingConversation
	}
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
