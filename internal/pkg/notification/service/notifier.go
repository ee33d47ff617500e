package service

import (
	"context"
	"encoding/json"
	"log"

	qport "agrimsg/internal/infrastructure/queue/port"
	notification "agrimsg/internal/pkg/notification/domain"
	repository "agrimsg/internal/pkg/notification/persistence/repository/port"
	"agrimsg/internal/pkg/notification/task"
)

// Notifier delivers one notification as a fire-and-forget side effect.
// Implementations log their own failures and never return them; callers loop
// over recipients without checking results.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification)
}

// DirectNotifier writes notifications synchronously through the repository.
// Used when no queue backend is configured.
type DirectNotifier struct {
	repo repository.NotificationRepository
}

func NewDirectNotifier(repo repository.NotificationRepository) *DirectNotifier {
	return &DirectNotifier{repo: repo}
}

var _ Notifier = (*DirectNotifier)(nil)

func (d *DirectNotifier) Notify(ctx context.Context, n notification.Notification) {
	validated, err := notification.New(n)
	if err != nil {
		log.Printf("notification: skipping invalid notification for %s: %v", n.UserID, err)
		return
	}
	if _, err := d.repo.Create(ctx, *validated); err != nil {
		log.Printf("notification: create for %s failed: %v", n.UserID, err)
	}
}

// QueueNotifier hands notifications to the background worker via the task
// queue, decoupling delivery from the request path entirely.
type QueueNotifier struct {
	client qport.Client
}

func NewQueueNotifier(client qport.Client) *QueueNotifier {
	return &QueueNotifier{client: client}
}

var _ Notifier = (*QueueNotifier)(nil)

func (q *QueueNotifier) Notify(ctx context.Context, n notification.Notification) {
	validated, err := notification.New(n)
	if err != nil {
		log.Printf("notification: skipping invalid notification for %s: %v", n.UserID, err)
		return
	}

	payload := task.DeliverNotificationTaskPayload{
		UserID:   validated.UserID,
		Title:    validated.Title,
		Message:  validated.Message,
		Category: validated.Category,
		Priority: string(validated.Priority),
		Link:     validated.Link,
		Metadata: validated.Metadata,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notification: encode payload for %s failed: %v", n.UserID, err)
		return
	}

	opts := qport.EnqueueOption{Queue: "notifications", MaxRetry: 5}
	if _, err := q.client.Enqueue(ctx, qport.Task{Type: task.DeliverNotificationTaskType, Payload: b}, opts); err != nil {
		log.Printf("notification: enqueue for %s failed: %v", n.UserID, err)
	}
}
