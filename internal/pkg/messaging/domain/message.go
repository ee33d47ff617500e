package messaging

import (
	"strings"
	"time"
)

// ContentType represents the kind of content a message carries.
type ContentType string

const (
	ContentText   ContentType = "text"
	ContentImage  ContentType = "image"
	ContentFile   ContentType = "file"
	ContentSystem ContentType = "system"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentImage, ContentFile, ContentSystem:
		return true
	}
	return false
}

// Message is a log entry in a conversation. Immutable except for Content and
// IsEdited via an explicit edit. SenderID is nil for system messages.
type Message struct {
	ID             string      `db:"id"`
	ConversationID string      `db:"conversation_id"`
	SenderID       *string     `db:"sender_id"`
	Content        string      `db:"content"`
	ContentType    ContentType `db:"content_type"`
	AttachmentURL  *string     `db:"attachment_url"`
	AttachmentType *string     `db:"attachment_type"`
	IsEdited       bool        `db:"is_edited"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

// NewMessage validates and normalizes a message before it is persisted.
// Content is trimmed; the content type defaults to text. Non-system messages
// need a sender and either content or an attachment.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" {
		return nil, ErrMissingConversation
	}
	if m.ContentType == "" {
		m.ContentType = ContentText
	}
	if !m.ContentType.Valid() {
		return nil, ErrInvalidContentType
	}

	m.Content = strings.TrimSpace(m.Content)

	if m.ContentType != ContentSystem {
		if m.SenderID == nil || *m.SenderID == "" {
			return nil, ErrMissingUser
		}
		if m.Content == "" && m.AttachmentURL == nil {
			return nil, ErrEmptyMessage
		}
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}

// previewLimit caps how much message content a notification preview carries.
const previewLimit = 50

// NotificationPreview derives the short, content-type-aware text used when
// notifying other participants about this message.
func (m Message) NotificationPreview() string {
	switch m.ContentType {
	case ContentImage:
		return "Sent you an image"
	case ContentFile:
		return "Sent you a file"
	}
	runes := []rune(m.Content)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return m.Content
}

// IsSystem reports whether this is a system-generated message.
func (m Message) IsSystem() bool {
	return m.ContentType == ContentSystem
}
