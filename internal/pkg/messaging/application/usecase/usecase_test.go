package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	messaging "agrimsg/internal/pkg/messaging/domain"
	notification "agrimsg/internal/pkg/notification/domain"
)

// memRepo is an in-memory MessagingRepository for exercising use cases
// without a database.
type memRepo struct {
	conversations map[string]messaging.Conversation
	participants  map[string][]messaging.Participant
	messages      []messaging.Message
	nextMessageID int

	failAddParticipantFor string
	failSaveMessage       bool

	deletedConversations []string
}

func newMemRepo() *memRepo {
	return &memRepo{
		conversations: map[string]messaging.Conversation{},
		participants:  map[string][]messaging.Participant{},
	}
}

func (r *memRepo) CreateConversation(_ context.Context, c messaging.Conversation) error {
	r.conversations[c.ID] = c
	return nil
}

func (r *memRepo) DeleteConversation(_ context.Context, id string) error {
	delete(r.conversations, id)
	delete(r.participants, id)
	r.deletedConversations = append(r.deletedConversations, id)
	return nil
}

func (r *memRepo) GetConversation(_ context.Context, id string) (*messaging.Conversation, error) {
	c, ok := r.conversations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (r *memRepo) ListConversationIDsForUser(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for convID, ps := range r.participants {
		for _, p := range ps {
			if p.UserID == userID && p.IsActive {
				ids = append(ids, convID)
			}
		}
	}
	return ids, nil
}

func (r *memRepo) ListConversationsByIDs(_ context.Context, ids []string) ([]messaging.Conversation, error) {
	var out []messaging.Conversation
	for _, id := range ids {
		if c, ok := r.conversations[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memRepo) AddParticipant(_ context.Context, p messaging.Participant) error {
	if r.failAddParticipantFor != "" && p.UserID == r.failAddParticipantFor {
		return errors.New("insert failed")
	}
	for i, existing := range r.participants[p.ConversationID] {
		if existing.UserID == p.UserID {
			existing.IsActive = true
			existing.Role = p.Role
			r.participants[p.ConversationID][i] = existing
			return nil
		}
	}
	r.participants[p.ConversationID] = append(r.participants[p.ConversationID], p)
	return nil
}

func (r *memRepo) DeactivateParticipant(_ context.Context, conversationID, userID string) error {
	for i, p := range r.participants[conversationID] {
		if p.UserID == userID && p.IsActive {
			p.IsActive = false
			r.participants[conversationID][i] = p
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRepo) ListParticipants(_ context.Context, conversationID string, activeOnly bool) ([]messaging.Participant, error) {
	var out []messaging.Participant
	for _, p := range r.participants[conversationID] {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memRepo) IsActiveParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	for _, p := range r.participants[conversationID] {
		if p.UserID == userID && p.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SaveMessage(_ context.Context, m messaging.Message) (string, error) {
	if r.failSaveMessage {
		return "", errors.New("insert failed")
	}
	r.nextMessageID++
	m.ID = string(rune('a' + r.nextMessageID - 1))
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *memRepo) GetMessage(_ context.Context, id string) (*messaging.Message, error) {
	for _, m := range r.messages {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memRepo) ListMessages(_ context.Context, conversationID string, limit, offset int) ([]messaging.Message, error) {
	var out []messaging.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) UpdateMessageContent(_ context.Context, id, content string, editedAt time.Time) error {
	for i, m := range r.messages {
		if m.ID == id {
			m.Content = content
			m.IsEdited = true
			m.UpdatedAt = editedAt
			r.messages[i] = m
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRepo) TouchLastRead(_ context.Context, conversationID, userID string, at time.Time) error {
	for i, p := range r.participants[conversationID] {
		if p.UserID == userID && p.IsActive {
			t := at
			p.LastReadAt = &t
			r.participants[conversationID][i] = p
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRepo) MarkMessagesRead(_ context.Context, conversationID, userID string, _ time.Time) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if m.SenderID != nil && *m.SenderID == userID {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memRepo) ListPreviews(_ context.Context, userID string) ([]messaging.ConversationPreview, error) {
	ids, _ := r.ListConversationIDsForUser(context.Background(), userID)
	out := make([]messaging.ConversationPreview, 0, len(ids))
	for _, id := range ids {
		out = append(out, messaging.ConversationPreview{ConversationID: id})
	}
	return out, nil
}

func (r *memRepo) CountUnread(_ context.Context, userID string) (int, error) {
	total := 0
	for convID, ps := range r.participants {
		var me *messaging.Participant
		for i := range ps {
			if ps[i].UserID == userID && ps[i].IsActive {
				me = &ps[i]
			}
		}
		if me == nil {
			continue
		}
		for _, m := range r.messages {
			if m.ConversationID != convID {
				continue
			}
			if m.SenderID != nil && *m.SenderID == userID {
				continue
			}
			if me.LastReadAt != nil && !m.CreatedAt.After(*me.LastReadAt) {
				continue
			}
			total++
		}
	}
	return total, nil
}

// recordingNotifier captures notifications instead of delivering them.
type recordingNotifier struct {
	sent []notification.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notif notification.Notification) {
	n.sent = append(n.sent, notif)
}

func seedConversation(r *memRepo, id string, typ messaging.ConversationType, userIDs ...string) {
	now := time.Now().UTC()
	r.conversations[id] = messaging.Conversation{ID: id, Type: typ, CreatedBy: userIDs[0], CreatedAt: now, UpdatedAt: now}
	for _, uid := range userIDs {
		r.participants[id] = append(r.participants[id], messaging.Participant{
			ConversationID: id, UserID: uid, Role: messaging.RoleMember, IsActive: true, JoinedAt: now,
		})
	}
}

func TestCreateDirectConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with both participants", func(t *testing.T) {
		repo := newMemRepo()
		uc := NewCreateDirectConversationUseCase(repo, nil)

		out, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "bob", OtherDisplayName: "Bob"})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if out.Existing {
			t.Error("expected a new conversation, got an existing one")
		}
		if out.Conversation.Type != messaging.ConversationDirect {
			t.Errorf("type = %q, want direct", out.Conversation.Type)
		}
		if out.Conversation.Title == nil || *out.Conversation.Title != "Bob" {
			t.Errorf("title = %v, want Bob", out.Conversation.Title)
		}
		if got := len(repo.participants[out.Conversation.ID]); got != 2 {
			t.Fatalf("participants = %d, want 2", got)
		}
	})

	t.Run("idempotent for the same pair", func(t *testing.T) {
		repo := newMemRepo()
		uc := NewCreateDirectConversationUseCase(repo, nil)

		first, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "bob"})
		if err != nil {
			t.Fatalf("first Execute: %v", err)
		}
		second, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "bob"})
		if err != nil {
			t.Fatalf("second Execute: %v", err)
		}
		if !second.Existing || second.Conversation.ID != first.Conversation.ID {
			t.Errorf("second call got %q (existing=%v), want reuse of %q", second.Conversation.ID, second.Existing, first.Conversation.ID)
		}
		// Reversed arguments resolve to the same conversation.
		reversed, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "bob", OtherUserID: "alice"})
		if err != nil {
			t.Fatalf("reversed Execute: %v", err)
		}
		if !reversed.Existing || reversed.Conversation.ID != first.Conversation.ID {
			t.Errorf("reversed call got %q (existing=%v), want reuse of %q", reversed.Conversation.ID, reversed.Existing, first.Conversation.ID)
		}
		if len(repo.conversations) != 1 {
			t.Errorf("conversations = %d, want 1", len(repo.conversations))
		}
	})

	t.Run("rejects self conversation before any write", func(t *testing.T) {
		repo := newMemRepo()
		uc := NewCreateDirectConversationUseCase(repo, nil)

		if _, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "alice"}); !errors.Is(err, messaging.ErrSelfConversation) {
			t.Fatalf("err = %v, want ErrSelfConversation", err)
		}
		if len(repo.conversations) != 0 {
			t.Errorf("conversations = %d, want 0", len(repo.conversations))
		}
	})

	t.Run("shared group does not satisfy the direct lookup", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "g1", messaging.ConversationGroup, "alice", "bob")
		uc := NewCreateDirectConversationUseCase(repo, nil)

		out, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "bob"})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if out.Existing {
			t.Error("group conversation was mistaken for a direct one")
		}
	})

	t.Run("compensating delete on participant failure", func(t *testing.T) {
		repo := newMemRepo()
		repo.failAddParticipantFor = "bob"
		uc := NewCreateDirectConversationUseCase(repo, nil)

		if _, err := uc.Execute(ctx, CreateDirectConversationInput{UserID: "alice", OtherUserID: "bob"}); !errors.Is(err, ErrPersistence) {
			t.Fatalf("err = %v, want ErrPersistence", err)
		}
		if len(repo.conversations) != 0 {
			t.Errorf("conversation row survived a failed create")
		}
		if len(repo.deletedConversations) != 1 {
			t.Errorf("compensating deletes = %d, want 1", len(repo.deletedConversations))
		}
	})
}

func TestCreateGroupConversation(t *testing.T) {
	ctx := context.Background()

	t.Run("creator is admin, duplicates dropped", func(t *testing.T) {
		repo := newMemRepo()
		uc := NewCreateGroupConversationUseCase(repo, nil, nil)

		conv, err := uc.Execute(ctx, CreateGroupConversationInput{
			Title:          "Harvest crew",
			CreatorID:      "alice",
			ParticipantIDs: []string{"bob", "alice", "bob", "", "carol"},
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		ps := repo.participants[conv.ID]
		if len(ps) != 3 {
			t.Fatalf("participants = %d, want 3", len(ps))
		}
		for _, p := range ps {
			want := messaging.RoleMember
			if p.UserID == "alice" {
				want = messaging.RoleAdmin
			}
			if p.Role != want {
				t.Errorf("role for %s = %q, want %q", p.UserID, p.Role, want)
			}
		}
	})

	t.Run("requires a title", func(t *testing.T) {
		uc := NewCreateGroupConversationUseCase(newMemRepo(), nil, nil)
		if _, err := uc.Execute(ctx, CreateGroupConversationInput{Title: "   ", CreatorID: "alice"}); !errors.Is(err, messaging.ErrMissingTitle) {
			t.Fatalf("err = %v, want ErrMissingTitle", err)
		}
	})

	t.Run("no rollback on participant failure", func(t *testing.T) {
		repo := newMemRepo()
		repo.failAddParticipantFor = "carol"
		uc := NewCreateGroupConversationUseCase(repo, nil, nil)

		if _, err := uc.Execute(ctx, CreateGroupConversationInput{
			Title: "Crew", CreatorID: "alice", ParticipantIDs: []string{"bob", "carol"},
		}); !errors.Is(err, ErrPersistence) {
			t.Fatalf("err = %v, want ErrPersistence", err)
		}
		if len(repo.conversations) != 1 {
			t.Errorf("conversation row = %d, want 1 (create is not rolled back)", len(repo.conversations))
		}
	})

	t.Run("announcement notifies members except the creator", func(t *testing.T) {
		repo := newMemRepo()
		notifier := &recordingNotifier{}
		uc := NewCreateGroupConversationUseCase(repo, nil, notifier)

		_, err := uc.Execute(ctx, CreateGroupConversationInput{
			Title:          "Planting schedule",
			CreatorID:      "alice",
			ParticipantIDs: []string{"bob", "carol"},
			Type:           messaging.ConversationAnnouncement,
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if len(notifier.sent) != 2 {
			t.Fatalf("notifications = %d, want 2", len(notifier.sent))
		}
		for _, n := range notifier.sent {
			if n.UserID == "alice" {
				t.Error("creator was notified about their own announcement")
			}
			if n.Priority != notification.PriorityHigh {
				t.Errorf("priority = %q, want high", n.Priority)
			}
			if n.Category != "announcement" {
				t.Errorf("category = %q, want announcement", n.Category)
			}
		}
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and notifies other participants", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationGroup, "alice", "bob", "carol")
		notifier := &recordingNotifier{}
		uc := NewSendMessageUseCase(repo, nil, notifier)

		msg, err := uc.Execute(ctx, SendMessageInput{
			ConversationID: "c1", SenderID: "alice", Content: "Rain expected tomorrow", SenderDisplayName: "Alice",
		})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if msg.ID == "" {
			t.Error("message id not assigned")
		}
		if len(notifier.sent) != 2 {
			t.Fatalf("notifications = %d, want 2", len(notifier.sent))
		}
		for _, n := range notifier.sent {
			if n.UserID == "alice" {
				t.Error("sender was notified about their own message")
			}
			if n.Title != "Alice" {
				t.Errorf("title = %q, want Alice", n.Title)
			}
			if n.Message != "Rain expected tomorrow" {
				t.Errorf("preview = %q", n.Message)
			}
		}
	})

	t.Run("image preview replaces content", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
		notifier := &recordingNotifier{}
		uc := NewSendMessageUseCase(repo, nil, notifier)

		url := "https://example.com/field.jpg"
		if _, err := uc.Execute(ctx, SendMessageInput{
			ConversationID: "c1", SenderID: "alice", ContentType: messaging.ContentImage, AttachmentURL: &url,
		}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if len(notifier.sent) != 1 || notifier.sent[0].Message != "Sent you an image" {
			t.Fatalf("notifications = %+v, want one 'Sent you an image'", notifier.sent)
		}
	})

	t.Run("non-participant is rejected", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
		uc := NewSendMessageUseCase(repo, nil, nil)

		if _, err := uc.Execute(ctx, SendMessageInput{ConversationID: "c1", SenderID: "mallory", Content: "hi"}); !errors.Is(err, messaging.ErrNotParticipant) {
			t.Fatalf("err = %v, want ErrNotParticipant", err)
		}
		if len(repo.messages) != 0 {
			t.Errorf("messages = %d, want 0", len(repo.messages))
		}
	})

	t.Run("save failure surfaces, no notifications", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
		repo.failSaveMessage = true
		notifier := &recordingNotifier{}
		uc := NewSendMessageUseCase(repo, nil, notifier)

		if _, err := uc.Execute(ctx, SendMessageInput{ConversationID: "c1", SenderID: "alice", Content: "hi"}); !errors.Is(err, ErrPersistence) {
			t.Fatalf("err = %v, want ErrPersistence", err)
		}
		if len(notifier.sent) != 0 {
			t.Errorf("notifications = %d, want 0", len(notifier.sent))
		}
	})
}

func TestMarkConversationRead(t *testing.T) {
	ctx := context.Background()

	t.Run("advances watermark and zeroes unread", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
		send := NewSendMessageUseCase(repo, nil, nil)
		for i := 0; i < 3; i++ {
			if _, err := send.Execute(ctx, SendMessageInput{ConversationID: "c1", SenderID: "bob", Content: "update"}); err != nil {
				t.Fatalf("seed message: %v", err)
			}
		}
		if n, _ := repo.CountUnread(ctx, "alice"); n != 3 {
			t.Fatalf("unread before = %d, want 3", n)
		}

		uc := NewMarkConversationReadUseCase(repo, nil)
		if err := uc.Execute(ctx, MarkConversationReadInput{ConversationID: "c1", UserID: "alice"}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if n, _ := repo.CountUnread(ctx, "alice"); n != 0 {
			t.Errorf("unread after = %d, want 0", n)
		}
	})

	t.Run("non-participant is rejected", func(t *testing.T) {
		repo := newMemRepo()
		seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
		uc := NewMarkConversationReadUseCase(repo, nil)

		if err := uc.Execute(ctx, MarkConversationReadInput{ConversationID: "c1", UserID: "mallory"}); !errors.Is(err, messaging.ErrNotParticipant) {
			t.Fatalf("err = %v, want ErrNotParticipant", err)
		}
	})
}

func TestEditMessage(t *testing.T) {
	ctx := context.Background()

	repo := newMemRepo()
	seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
	send := NewSendMessageUseCase(repo, nil, nil)
	msg, err := send.Execute(ctx, SendMessageInput{ConversationID: "c1", SenderID: "alice", Content: "original"})
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}

	uc := NewEditMessageUseCase(repo, nil)

	t.Run("only the sender may edit", func(t *testing.T) {
		if _, err := uc.Execute(ctx, EditMessageInput{MessageID: msg.ID, UserID: "bob", Content: "forged"}); !errors.Is(err, messaging.ErrNotSender) {
			t.Fatalf("err = %v, want ErrNotSender", err)
		}
	})

	t.Run("sender edit flags the message", func(t *testing.T) {
		edited, err := uc.Execute(ctx, EditMessageInput{MessageID: msg.ID, UserID: "alice", Content: "  corrected  "})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if edited.Content != "corrected" {
			t.Errorf("content = %q, want corrected", edited.Content)
		}
		if !edited.IsEdited {
			t.Error("IsEdited not set")
		}
		stored, _ := repo.GetMessage(ctx, msg.ID)
		if stored.Content != "corrected" || !stored.IsEdited {
			t.Errorf("stored message not updated: %+v", stored)
		}
	})
}

func TestParticipantLifecycle(t *testing.T) {
	ctx := context.Background()

	repo := newMemRepo()
	seedConversation(repo, "c1", messaging.ConversationGroup, "alice", "bob")

	t.Run("add writes a system message", func(t *testing.T) {
		uc := NewAddParticipantUseCase(repo, nil)
		p, err := uc.Execute(ctx, AddParticipantInput{ConversationID: "c1", UserID: "carol", DisplayName: "Carol"})
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if p.Role != messaging.RoleMember {
			t.Errorf("role = %q, want member", p.Role)
		}
		last := repo.messages[len(repo.messages)-1]
		if last.ContentType != messaging.ContentSystem || last.Content != "Carol joined the conversation" {
			t.Errorf("system message = %+v", last)
		}
		if last.SenderID != nil {
			t.Error("system message has a sender")
		}
	})

	t.Run("remove soft-deletes the membership", func(t *testing.T) {
		uc := NewRemoveParticipantUseCase(repo, nil)
		if err := uc.Execute(ctx, RemoveParticipantInput{ConversationID: "c1", UserID: "carol", DisplayName: "Carol"}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		// The row survives with is_active=false.
		all, _ := repo.ListParticipants(ctx, "c1", false)
		found := false
		for _, p := range all {
			if p.UserID == "carol" {
				found = true
				if p.IsActive {
					t.Error("participant still active after removal")
				}
			}
		}
		if !found {
			t.Error("participant row deleted instead of deactivated")
		}
		last := repo.messages[len(repo.messages)-1]
		if last.Content != "Carol left the conversation" {
			t.Errorf("system message = %q", last.Content)
		}
	})

	t.Run("removing a non-member fails", func(t *testing.T) {
		uc := NewRemoveParticipantUseCase(repo, nil)
		if err := uc.Execute(ctx, RemoveParticipantInput{ConversationID: "c1", UserID: "mallory"}); !errors.Is(err, messaging.ErrNotParticipant) {
			t.Fatalf("err = %v, want ErrNotParticipant", err)
		}
	})
}

func TestListMessagesOrderedOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seedConversation(repo, "c1", messaging.ConversationDirect, "alice", "bob")
	send := NewSendMessageUseCase(repo, nil, nil)
	for _, content := range []string{"first", "second", "third"} {
		if _, err := send.Execute(ctx, SendMessageInput{ConversationID: "c1", SenderID: "alice", Content: content}); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	uc := NewListMessagesUseCase(repo)
	msgs, err := uc.Execute(ctx, ListMessagesInput{ConversationID: "c1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(msgs) != len(want) {
		t.Fatalf("messages = %d, want %d", len(msgs), len(want))
	}
	for i, m := range msgs {
		if m.Content != want[i] {
			t.Errorf("messages[%d] = %q, want %q", i, m.Content, want[i])
		}
	}
}

func TestJoinConversationGuard(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	seedConversation(repo, "c1", messaging.ConversationGroup, "alice", "bob")
	uc := NewJoinConversationUseCase(repo)

	if err := uc.Execute(ctx, JoinConversationInput{ConversationID: "c1", UserID: "alice"}); err != nil {
		t.Fatalf("member join: %v", err)
	}
	if err := uc.Execute(ctx, JoinConversationInput{ConversationID: "c1", UserID: "mallory"}); !errors.Is(err, messaging.ErrNotParticipant) {
		t.Fatalf("err = %v, want ErrNotParticipant", err)
	}
}
