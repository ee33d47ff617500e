package messaging

import "time"

// ConversationPreview is the inbox read model for one (conversation, user)
// pair: the latest message plus that user's unread count. Backed by the
// conversation_previews view.
type ConversationPreview struct {
	ConversationID  string           `db:"conversation_id" json:"conversation_id"`
	UserID          string           `db:"user_id" json:"user_id"`
	Title           *string          `db:"title" json:"title,omitempty"`
	Type            ConversationType `db:"conversation_type" json:"conversation_type"`
	LastMessage     *string          `db:"last_message" json:"last_message,omitempty"`
	LastMessageType *ContentType     `db:"last_message_type" json:"last_message_type,omitempty"`
	LastSenderID    *string          `db:"last_sender_id" json:"last_sender_id,omitempty"`
	LastMessageAt   *time.Time       `db:"last_message_at" json:"last_message_at,omitempty"`
	UnreadCount     int              `db:"unread_count" json:"unread_count"`
}
