package repository

import (
	"context"
	"time"

	notification "agrimsg/internal/pkg/notification/domain"
)

// NotificationRepository defines persistence operations for the notification
// side-channel.
type NotificationRepository interface {
	// Create inserts a notification through the create_notification stored
	// procedure and returns the new row's id.
	Create(ctx context.Context, n notification.Notification) (string, error)

	// DeleteReadOlderThan removes read notifications created before cutoff
	// and returns the number of rows deleted.
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
