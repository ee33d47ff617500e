package notification

import (
	"errors"
	"time"
)

// Priority orders notifications in the recipient's inbox.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

var (
	ErrMissingUser     = errors.New("notification: user id is required")
	ErrMissingTitle    = errors.New("notification: title is required")
	ErrInvalidPriority = errors.New("notification: unknown priority")
)

// Notification is an inbox entry created as a side effect of messaging and
// announcement actions. Creation is best-effort everywhere: a failed
// notification must never fail the action that triggered it.
type Notification struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	Title     string         `db:"title" json:"title"`
	Message   string         `db:"message" json:"message"`
	Category  string         `db:"category" json:"category"`
	Priority  Priority       `db:"priority" json:"priority"`
	Link      *string        `db:"link" json:"link,omitempty"`
	Metadata  map[string]any `db:"metadata" json:"metadata,omitempty"`
	IsRead    bool           `db:"is_read" json:"is_read"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// New validates and normalizes a notification before delivery. Category
// defaults to "general" and priority to normal.
func New(n Notification) (*Notification, error) {
	if n.UserID == "" {
		return nil, ErrMissingUser
	}
	if n.Title == "" {
		return nil, ErrMissingTitle
	}
	if n.Category == "" {
		n.Category = "general"
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	if !n.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	return &n, nil
}
