package messaging

import "time"

// ParticipantRole expresses the role within a conversation.
type ParticipantRole string

const (
	RoleAdmin  ParticipantRole = "admin"
	RoleMember ParticipantRole = "member"
)

// Participant captures membership and read state.
// Primary key: (ConversationID, UserID). Removal is a soft delete: IsActive
// flips to false, the row is never deleted.
type Participant struct {
	ConversationID string          `db:"conversation_id"`
	UserID         string          `db:"user_id"`
	Role           ParticipantRole `db:"role"`
	IsActive       bool            `db:"is_active"`
	LastReadAt     *time.Time      `db:"last_read_at"`
	JoinedAt       time.Time       `db:"joined_at"`
}
