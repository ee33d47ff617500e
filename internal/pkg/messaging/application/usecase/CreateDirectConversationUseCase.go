package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"agrimsg/internal/pkg/messaging/cache"
	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

// CreateDirectConversationInput carries the two endpoints of a direct
// conversation. OtherDisplayName, when known by the caller, becomes the
// default title.
type CreateDirectConversationInput struct {
	UserID           string
	OtherUserID      string
	OtherDisplayName string
}

// CreateDirectConversationOutput reports whether an existing conversation was
// reused instead of created.
type CreateDirectConversationOutput struct {
	Conversation messaging.Conversation
	Existing     bool
}

// CreateDirectConversationUseCase opens (or finds) the single direct
// conversation between two users. Uniqueness is enforced by lookup, not by a
// store constraint: concurrent calls for the same pair can still race past
// the check and create duplicates.
type CreateDirectConversationUseCase struct {
	Repo  repository.MessagingRepository
	Cache *cache.QueryCache
}

func NewCreateDirectConversationUseCase(repo repository.MessagingRepository, qc *cache.QueryCache) *CreateDirectConversationUseCase {
	return &CreateDirectConversationUseCase{Repo: repo, Cache: qc}
}

// Execute validates, searches for an existing direct conversation between the
// pair, and creates one when none exists. On participant-insert failure the
// just-created conversation row is deleted best-effort before the error
// propagates.
func (uc *CreateDirectConversationUseCase) Execute(ctx context.Context, in CreateDirectConversationInput) (*CreateDirectConversationOutput, error) {
	if in.UserID == "" || in.OtherUserID == "" {
		return nil, messaging.ErrMissingUser
	}
	if in.UserID == in.OtherUserID {
		return nil, messaging.ErrSelfConversation
	}

	mine, err := uc.Repo.ListConversationIDsForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	theirs, err := uc.Repo.ListConversationIDsForUser(ctx, in.OtherUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if shared := intersect(mine, theirs); len(shared) > 0 {
		convs, err := uc.Repo.ListConversationsByIDs(ctx, shared)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		for _, c := range convs {
			if c.Type == messaging.ConversationDirect {
				return &CreateDirectConversationOutput{Conversation: c, Existing: true}, nil
			}
		}
	}

	now := time.Now().UTC()
	conv := messaging.Conversation{
		ID:        uuid.NewString(),
		Type:      messaging.ConversationDirect,
		CreatedBy: in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.OtherDisplayName != "" {
		title := in.OtherDisplayName
		conv.Title = &title
	}

	if err := uc.Repo.CreateConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	participants := []messaging.Participant{
		{ConversationID: conv.ID, UserID: in.UserID, Role: messaging.RoleAdmin, IsActive: true, JoinedAt: now},
		{ConversationID: conv.ID, UserID: in.OtherUserID, Role: messaging.RoleMember, IsActive: true, JoinedAt: now},
	}
	for _, p := range participants {
		if err := uc.Repo.AddParticipant(ctx, p); err != nil {
			if delErr := uc.Repo.DeleteConversation(ctx, conv.ID); delErr != nil {
				log.Printf("messaging: compensating delete of conversation %s failed: %v", conv.ID, delErr)
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	uc.Cache.InvalidateUsers(ctx, in.UserID, in.OtherUserID)

	return &CreateDirectConversationOutput{Conversation: conv, Existing: false}, nil
}

// intersect returns ids present in both slices, preserving a's order.
func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := set[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
