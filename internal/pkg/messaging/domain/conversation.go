package messaging

import "time"

// ConversationType distinguishes the three conversation shapes the platform
// supports.
type ConversationType string

const (
	ConversationDirect       ConversationType = "direct"
	ConversationGroup        ConversationType = "group"
	ConversationAnnouncement ConversationType = "announcement"
)

// Valid reports whether t is one of the known conversation types.
func (t ConversationType) Valid() bool {
	switch t {
	case ConversationDirect, ConversationGroup, ConversationAnnouncement:
		return true
	}
	return false
}

// Conversation is a thread between two or more users. A direct conversation
// has exactly two participants; group and announcement conversations may be
// scoped to an organization.
type Conversation struct {
	ID             string           `db:"id"`
	Title          *string          `db:"title"`
	Type           ConversationType `db:"conversation_type"`
	CreatedBy      string           `db:"created_by"`
	OrganizationID *string          `db:"organization_id"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}
