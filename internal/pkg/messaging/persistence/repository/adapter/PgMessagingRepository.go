package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "agrimsg/internal/pkg/messaging/domain"
	repository "agrimsg/internal/pkg/messaging/persistence/repository/port"
)

type PgMessagingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{pool: pool}
}

var _ repository.MessagingRepository = (*PgMessagingRepository)(nil)

func (r *PgMessagingRepository) CreateConversation(ctx context.Context, c messaging.Conversation) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, title, conversation_type, created_by, organization_id, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4::uuid, $5::uuid, $6, $6)
	`, c.ID, c.Title, c.Type, c.CreatedBy, c.OrganizationID, c.CreatedAt)
	return err
}

func (r *PgMessagingRepository) DeleteConversation(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1::uuid`, id)
	return err
}

func (r *PgMessagingRepository) GetConversation(ctx context.Context, id string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	var c messaging.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, title, conversation_type, created_by::text, organization_id::text, created_at, updated_at
		FROM conversations
		WHERE id = $1::uuid
	`, id).Scan(&c.ID, &c.Title, &c.Type, &c.CreatedBy, &c.OrganizationID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgMessagingRepository) ListConversationIDsForUser(ctx context.Context, userID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text
		FROM conversation_participants
		WHERE user_id = $1::uuid AND is_active
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PgMessagingRepository) ListConversationsByIDs(ctx context.Context, ids []string) ([]messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, title, conversation_type, created_by::text, organization_id::text, created_at, updated_at
		FROM conversations
		WHERE id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []messaging.Conversation
	for rows.Next() {
		var c messaging.Conversation
		if err := rows.Scan(&c.ID, &c.Title, &c.Type, &c.CreatedBy, &c.OrganizationID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (r *PgMessagingRepository) AddParticipant(ctx context.Context, p messaging.Participant) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	// Re-adding a removed participant reactivates the existing row.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_participants (conversation_id, user_id, role, is_active, last_read_at, joined_at)
		VALUES ($1::uuid, $2::uuid, $3, TRUE, $4, $5)
		ON CONFLICT (conversation_id, user_id)
		DO UPDATE SET role = EXCLUDED.role,
		              is_active = TRUE
	`, p.ConversationID, p.UserID, p.Role, p.LastReadAt, p.JoinedAt)
	return err
}

func (r *PgMessagingRepository) DeactivateParticipant(ctx context.Context, conversationID, userID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET is_active = FALSE
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid
	`, conversationID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMessagingRepository) ListParticipants(ctx context.Context, conversationID string, activeOnly bool) ([]messaging.Participant, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, user_id::text, role, is_active, last_read_at, joined_at
		FROM conversation_participants
		WHERE conversation_id = $1::uuid AND (NOT $2::bool OR is_active)
	`, conversationID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []messaging.Participant
	for rows.Next() {
		var p messaging.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.Role, &p.IsActive, &p.LastReadAt, &p.JoinedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

func (r *PgMessagingRepository) IsActiveParticipant(ctx context.Context, conversationID, userID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgMessagingRepository: nil pool")
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_participants
			WHERE conversation_id = $1::uuid AND user_id = $2::uuid AND is_active
		)
	`, conversationID, userID).Scan(&ok)
	return ok, err
}

func (r *PgMessagingRepository) SaveMessage(ctx context.Context, m messaging.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessagingRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, content_type, attachment_url, attachment_type, created_at, updated_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $7)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, m.ContentType, m.AttachmentURL, m.AttachmentType, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) GetMessage(ctx context.Context, id string) (*messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	var m messaging.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, content_type,
		       attachment_url, attachment_type, is_edited, created_at, updated_at
		FROM messages
		WHERE id = $1::uuid
	`, id).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ContentType,
		&m.AttachmentURL, &m.AttachmentType, &m.IsEdited, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgMessagingRepository) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, content_type,
		       attachment_url, attachment_type, is_edited, created_at, updated_at
		FROM messages
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	for rows.Next() {
		var m messaging.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ContentType,
			&m.AttachmentURL, &m.AttachmentType, &m.IsEdited, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *PgMessagingRepository) UpdateMessageContent(ctx context.Context, id, content string, editedAt time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE messages
		SET content = $2, is_edited = TRUE, updated_at = $3
		WHERE id = $1::uuid
	`, id, content, editedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMessagingRepository) TouchLastRead(ctx context.Context, conversationID, userID string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE conversation_participants
		SET last_read_at = $3
		WHERE conversation_id = $1::uuid AND user_id = $2::uuid AND is_active
	`, conversationID, userID, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMessagingRepository) MarkMessagesRead(ctx context.Context, conversationID, userID string, at time.Time) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		INSERT INTO message_status (message_id, user_id, is_delivered, is_read, read_at)
		SELECT m.id, $2::uuid, TRUE, TRUE, $3
		FROM messages m
		WHERE m.conversation_id = $1::uuid
		  AND (m.sender_id IS NULL OR m.sender_id <> $2::uuid)
		ON CONFLICT (message_id, user_id)
		DO UPDATE SET is_read = TRUE, read_at = EXCLUDED.read_at
	`, conversationID, userID, at)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *PgMessagingRepository) ListPreviews(ctx context.Context, userID string) ([]messaging.ConversationPreview, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, user_id::text, title, conversation_type,
		       last_message, last_message_type, last_sender_id::text, last_message_at, unread_count
		FROM conversation_previews
		WHERE user_id = $1::uuid
		ORDER BY last_message_at DESC NULLS LAST
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []messaging.ConversationPreview
	for rows.Next() {
		var p messaging.ConversationPreview
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.Title, &p.Type,
			&p.LastMessage, &p.LastMessageType, &p.LastSenderID, &p.LastMessageAt, &p.UnreadCount); err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}
	return previews, rows.Err()
}

func (r *PgMessagingRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgMessagingRepository: nil pool")
	}
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(unread_count), 0)
		FROM unread_message_counts
		WHERE user_id = $1::uuid
	`, userID).Scan(&total)
	return total, err
}
