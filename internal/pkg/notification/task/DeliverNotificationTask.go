package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "agrimsg/internal/infrastructure/queue/port"
	notification "agrimsg/internal/pkg/notification/domain"
	repoAdapter "agrimsg/internal/pkg/notification/persistence/repository/adapter"
)

// DeliverNotificationTaskType is the queue task name for writing one
// notification row.
const DeliverNotificationTaskType = "notification:deliver"

// DeliverNotificationTaskPayload is the JSON payload transported via the
// queue. Kept separate from the domain type to avoid coupling with JSON tags.
type DeliverNotificationTaskPayload struct {
	UserID   string         `json:"userId"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Category string         `json:"category"`
	Priority string         `json:"priority"`
	Link     *string        `json:"link,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RegisterDeliverNotificationTask binds the delivery handler to the worker
// server. Handlers are idempotent in effect: re-delivery creates a duplicate
// inbox entry, which the retention sweep eventually clears, so retries stay
// bounded.
func RegisterDeliverNotificationTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(DeliverNotificationTaskType, func(ctx context.Context, t qport.Task) error {
		var p DeliverNotificationTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		n, err := notification.New(notification.Notification{
			UserID:   p.UserID,
			Title:    p.Title,
			Message:  p.Message,
			Category: p.Category,
			Priority: notification.Priority(p.Priority),
			Link:     p.Link,
			Metadata: p.Metadata,
		})
		if err != nil {
			return err
		}

		repo := repoAdapter.NewPgNotificationRepository(pool)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err = repo.Create(ctx, *n)
		return err
	})
}
