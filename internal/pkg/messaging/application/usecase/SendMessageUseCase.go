package usecase

import (
	"context"
	"fmt"
	"log"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
	notification "agrimsg/internal/pkg/notification/domain"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// SendMessageInput carries the data needed to post a message into a
// conversation. SenderDisplayName, when known by the caller, becomes the
// notification title for other participants.
type SendMessageInput struct {
	ConversationID    string
	SenderID          string
	Content           string
	ContentType       messaging.ContentType
	AttachmentURL     *string
	AttachmentType    *string
	SenderDisplayName string
}

// SendMessageUseCase persists a message and fans out notifications to the
// other participants. The message insert is the only hard failure path;
// everything after it is best-effort.
type SendMessageUseCase struct {
	Repo     repository.MessagingRepository
	Cache    *cache.QueryCache
	Notifier notifsvc.Notifier
}

func NewSendMessageUseCase(repo repository.MessagingRepository, qc *cache.QueryCache, notifier notifsvc.Notifier) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Cache: qc, Notifier: notifier}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	if in.ConversationID == "" {
		return nil, messaging.ErrMissingConversation
	}
	if in.SenderID == "" {
		return nil, messaging.ErrMissingUser
	}

	isParticipant, err := uc.Repo.IsActiveParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, messaging.ErrNotParticipant
	}

	sender := in.SenderID
	msg, err := messaging.NewMessage(messaging.Message{
		ConversationID: in.ConversationID,
		SenderID:       &sender,
		Content:        in.Content,
		ContentType:    in.ContentType,
		AttachmentURL:  in.AttachmentURL,
		AttachmentType: in.AttachmentType,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	uc.fanOut(ctx, msg, in.SenderDisplayName)

	return msg, nil
}

// fanOut invalidates cached read models for every participant and issues one
// notification per other participant. Failures here are logged and dropped;
// the send already succeeded.
func (uc *SendMessageUseCase) fanOut(ctx context.Context, msg *messaging.Message, senderName string) {
	participants, err := uc.Repo.ListParticipants(ctx, msg.ConversationID, true)
	if err != nil {
		log.Printf("messaging: list participants for notification fan-out failed: %v", err)
		if msg.SenderID != nil {
			uc.Cache.InvalidateUsers(ctx, *msg.SenderID)
		}
		return
	}

	userIDs := make([]string, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	uc.Cache.InvalidateUsers(ctx, userIDs...)

	if uc.Notifier == nil {
		return
	}

	title := senderName
	if title == "" {
		title = "New message"
	}
	link := "/messages/" + msg.ConversationID
	preview := msg.NotificationPreview()

	for _, p := range participants {
		if msg.SenderID != nil && p.UserID == *msg.SenderID {
			continue
		}
		uc.Notifier.Notify(ctx, notification.Notification{
			UserID:   p.UserID,
			Title:    title,
			Message:  preview,
			Category: "message",
			Priority: notification.PriorityNormal,
			Link:     &link,
			Metadata: map[string]any{
				"conversation_id": msg.ConversationID,
				"message_id":      msg.ID,
			},
		})
	}
}
