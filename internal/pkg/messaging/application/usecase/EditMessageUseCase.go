package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// EditMessageInput identifies the message, the editing user and the new content.
type EditMessageInput struct {
	MessageID string
	UserID    string
	Content   string
}

// EditMessageUseCase replaces a message's content and flags it edited. Only
// the original sender may edit; system messages have no sender and cannot be
// edited.
type EditMessageUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewEditMessageUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo, Cache: qc}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*messaging.Message, error) {
	if in.MessageID == "" || in.UserID == "" {
		return nil, messaging.ErrMissingUser
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, messaging.ErrEmptyMessage
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg.SenderID == nil || *msg.SenderID != in.UserID {
		return nil, messaging.ErrNotSender
	}

	editedAt := time.Now().UTC()
	if err := uc.Repo.UpdateMessageContent(ctx, in.MessageID, content, editedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	msg.Content = content
	msg.IsEdited = true
	msg.UpdatedAt = editedAt

	// Previews may show this message; refresh every member's read models.
	if participants, err := uc.Repo.ListParticipants(ctx, msg.ConversationID, true); err == nil {
		ids := make([]string, 0, len(participants))
		for _, p := range participants {
			ids = append(ids, p.UserID)
		}
		uc.Cache.InvalidateUsers(ctx, ids...)
	} else {
		log.Printf("messaging: list participants after edit failed: %v", err)
	}

	return msg, nil
}
