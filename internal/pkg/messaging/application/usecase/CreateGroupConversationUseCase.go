package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
	notification "agrimsg/internal/pkg/notification/domain"
	notifsvc "agrimsg/internal/pkg/notification/service"
)

// CreateGroupConversationInput covers group and announcement conversations;
// both share the same creation shape. Type defaults to group.
type CreateGroupConversationInput struct {
	Title          string
	CreatorID      string
	ParticipantIDs []string
	OrganizationID *string
	Type           messaging.ConversationType
}

// CreateGroupConversationUseCase creates a multi-member conversation. The
// creator is always included with role=admin and participant ids are
// de-duplicated. Unlike direct creation there is no compensating rollback:
// a participant-insert failure after the conversation row is committed leaves
// the partially-populated conversation in place.
type CreateGroupConversationUseCase struct {
	Repo     repository.MessagingRepository
	Cache    *cache.QueryCache
	Notifier notifsvc.Notifier
}

func NewCreateGroupConversationUseCase(repo repository.MessagingRepository, qc *cache.QueryCache, notifier notifsvc.Notifier) *CreateGroupConversationUseCase {
	return &CreateGroupConversationUseCase{Repo: repo, Cache: qc, Notifier: notifier}
}

func (uc *CreateGroupConversationUseCase) Execute(ctx context.Context, in CreateGroupConversationInput) (*messaging.Conversation, error) {
	if in.CreatorID == "" {
		return nil, messaging.ErrMissingUser
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, messaging.ErrMissingTitle
	}
	typ := in.Type
	if typ == "" {
		typ = messaging.ConversationGroup
	}
	if typ != messaging.ConversationGroup && typ != messaging.ConversationAnnouncement {
		return nil, messaging.ErrInvalidConversationType
	}

	// Creator first, then the rest without duplicates.
	memberIDs := []string{in.CreatorID}
	seen := map[string]struct{}{in.CreatorID: {}}
	for _, id := range in.ParticipantIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}

	now := time.Now().UTC()
	conv := messaging.Conversation{
		ID:             uuid.NewString(),
		Title:          &title,
		Type:           typ,
		CreatedBy:      in.CreatorID,
		OrganizationID: in.OrganizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.Repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for _, id := range memberIDs {
		role := messaging.RoleMember
		if id == in.CreatorID {
			role = messaging.RoleAdmin
		}
		p := messaging.Participant{
			ConversationID: conv.ID,
			UserID:         id,
			Role:           role,
			IsActive:       true,
			JoinedAt:       now,
		}
		if err := uc.Repo.AddParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	uc.Cache.InvalidateUsers(ctx, memberIDs...)

	// Announcement creation notifies every member except the creator.
	if typ == messaging.ConversationAnnouncement && uc.Notifier != nil {
		link := "/messages/" + conv.ID
		for _, id := range memberIDs {
			if id == in.CreatorID {
				continue
			}
			uc.Notifier.Notify(ctx, notification.Notification{
				UserID:   id,
				Title:    "New announcement",
				Message:  title,
				Category: "announcement",
				Priority: notification.PriorityHigh,
				Link:     &link,
				Metadata: map[string]any{"conversation_id": conv.ID},
			})
		}
	}

	return &conv, nil
}
