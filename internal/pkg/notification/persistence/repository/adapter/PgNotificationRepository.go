package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	notification "agrimsg/internal/pkg/notification/domain"
	repository "agrimsg/internal/pkg/notification/persistence/repository/port"
)

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

var _ repository.NotificationRepository = (*PgNotificationRepository)(nil)

func (r *PgNotificationRepository) Create(ctx context.Context, n notification.Notification) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgNotificationRepository: nil pool")
	}

	var metadata []byte
	if n.Metadata != nil {
		b, err := json.Marshal(n.Metadata)
		if err != nil {
			return "", err
		}
		metadata = b
	}

	var id string
	err := r.pool.QueryRow(ctx, `
		SELECT create_notification($1::uuid, $2, $3, $4, $5, $6, $7::jsonb)::text
	`, n.UserID, n.Title, n.Message, n.Category, n.Priority, n.Link, metadata).Scan(&id)
	return id, err
}

func (r *PgNotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgNotificationRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE is_read AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
