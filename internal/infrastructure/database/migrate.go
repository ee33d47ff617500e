package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements is applied in order by Migrate. Every statement is
// idempotent so the migration can be re-run against an existing database.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS conversations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		title TEXT,
		conversation_type TEXT NOT NULL CHECK (conversation_type IN ('direct', 'group', 'announcement')),
		created_by UUID NOT NULL,
		organization_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS conversation_participants (
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_read_at TIMESTAMPTZ,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (conversation_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_participants_user ON conversation_participants (user_id) WHERE is_active`,

	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		sender_id UUID,
		content TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT 'text' CHECK (content_type IN ('text', 'image', 'file', 'system')),
		attachment_url TEXT,
		attachment_type TEXT,
		is_edited BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages (conversation_id, created_at)`,

	`CREATE TABLE IF NOT EXISTS message_status (
		message_id UUID NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		is_delivered BOOLEAN NOT NULL DEFAULT FALSE,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		read_at TIMESTAMPTZ,
		PRIMARY KEY (message_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		category TEXT NOT NULL,
		priority TEXT NOT NULL DEFAULT 'normal' CHECK (priority IN ('low', 'normal', 'high')),
		link TEXT,
		metadata JSONB,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read)`,

	// Per-(conversation, user) unread counts: messages sent by someone else
	// after the participant's last_read_at watermark.
	`CREATE OR REPLACE VIEW unread_message_counts AS
		SELECT cp.conversation_id,
		       cp.user_id,
		       COUNT(m.id) AS unread_count
		FROM conversation_participants cp
		LEFT JOIN messages m
		       ON m.conversation_id = cp.conversation_id
		      AND (m.sender_id IS NULL OR m.sender_id <> cp.user_id)
		      AND (cp.last_read_at IS NULL OR m.created_at > cp.last_read_at)
		WHERE cp.is_active
		GROUP BY cp.conversation_id, cp.user_id`,

	`CREATE OR REPLACE VIEW conversation_previews AS
		SELECT c.id AS conversation_id,
		       cp.user_id,
		       c.title,
		       c.conversation_type,
		       lm.content AS last_message,
		       lm.content_type AS last_message_type,
		       lm.sender_id AS last_sender_id,
		       lm.created_at AS last_message_at,
		       COALESCE(u.unread_count, 0) AS unread_count
		FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.is_active
		LEFT JOIN LATERAL (
			SELECT m.content, m.content_type, m.sender_id, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON TRUE
		LEFT JOIN unread_message_counts u
		       ON u.conversation_id = c.id AND u.user_id = cp.user_id`,

	`CREATE OR REPLACE FUNCTION create_notification(
		p_user_id UUID,
		p_title TEXT,
		p_message TEXT,
		p_category TEXT,
		p_priority TEXT DEFAULT 'normal',
		p_link TEXT DEFAULT NULL,
		p_metadata JSONB DEFAULT NULL
	) RETURNS UUID AS $$
	DECLARE
		v_id UUID;
	BEGIN
		INSERT INTO notifications (user_id, title, message, category, priority, link, metadata)
		VALUES (p_user_id, p_title, p_message, p_category, p_priority, p_link, p_metadata)
		RETURNING id INTO v_id;
		RETURN v_id;
	END;
	$$ LANGUAGE plpgsql`,
}

// Migrate applies the schema to the connected database, statement by statement.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
