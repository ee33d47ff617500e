package repository

import (
	"context"
	"time"

	messaging "agrimsg/internal/pkg/messaging/domain"
)

// MessagingRepository defines persistence operations for conversations,
// participants, messages and read state. Implementations return
// pgx.ErrNoRows-compatible errors when a targeted row does not exist.
type MessagingRepository interface {
	CreateConversation(ctx context.Context, c messaging.Conversation) error
	// DeleteConversation removes a conversation row; used only as the
	// compensating action when participant setup fails mid-create.
	DeleteConversation(ctx context.Context, id string) error
	GetConversation(ctx context.Context, id string) (*messaging.Conversation, error)

	// ListConversationIDsForUser returns ids of conversations the user is an
	// active participant of.
	ListConversationIDsForUser(ctx context.Context, userID string) ([]string, error)
	ListConversationsByIDs(ctx context.Context, ids []string) ([]messaging.Conversation, error)

	AddParticipant(ctx context.Context, p messaging.Participant) error
	DeactivateParticipant(ctx context.Context, conversationID, userID string) error
	ListParticipants(ctx context.Context, conversationID string, activeOnly bool) ([]messaging.Participant, error)
	IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	SaveMessage(ctx context.Context, m messaging.Message) (string, error)
	GetMessage(ctx context.Context, id string) (*messaging.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]messaging.Message, error)
	UpdateMessageContent(ctx context.Context, id, content string, editedAt time.Time) error

	TouchLastRead(ctx context.Context, conversationID, userID string, at time.Time) error
	// MarkMessagesRead bulk-updates message_status for every message in the
	// conversation not sent by this user; returns the number of rows touched.
	MarkMessagesRead(ctx context.Context, conversationID, userID string, at time.Time) (int64, error)

	ListPreviews(ctx context.Context, userID string) ([]messaging.ConversationPreview, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}
