package messaging

import "errors"

// Domain-level errors for messaging behaviors.
var (
	ErrMissingUser             = errors.New("messaging: user id is required")
	ErrMissingConversation     = errors.New("messaging: conversation id is required")
	ErrSelfConversation        = errors.New("messaging: cannot open a direct conversation with yourself")
	ErrMissingTitle            = errors.New("messaging: title is required")
	ErrInvalidConversationType = errors.New("messaging: unknown conversation type")
	ErrInvalidContentType      = errors.New("messaging: unknown content type")
	ErrEmptyMessage            = errors.New("messaging: message needs content or an attachment")
	ErrInvalidRole             = errors.New("messaging: unknown participant role")
	ErrNotParticipant          = errors.New("messaging: user is not an active participant in the conversation")
	ErrNotSender               = errors.New("messaging: only the sender can edit a message")
)
