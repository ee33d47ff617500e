package usecase

import (
	"context"
	"fmt"

	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// JoinConversationInput validates a request to subscribe a user session to a
// conversation's change feed.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user is an active member before the
// realtime router lets them into the room.
type JoinConversationUseCase struct {
	Repo repository.MessagingRepository
}

func NewJoinConversationUseCase(repo repository.MessagingRepository) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" {
		return messaging.ErrMissingConversation
	}
	if in.UserID == "" {
		return messaging.ErrMissingUser
	}

	ok, err := uc.Repo.IsActiveParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !ok {
		return messaging.ErrNotParticipant
	}
	return nil
}
