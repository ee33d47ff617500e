package service

import (
	"context"
	"errors"
	"testing"
	"time"

	notification "agrimsg/internal/pkg/notification/domain"
)

type fakeNotificationRepo struct {
	created []notification.Notification
	failAll bool

	deleteCutoff time.Time
	deleted      int64
	deleteErr    error
}

func (f *fakeNotificationRepo) Create(_ context.Context, n notification.Notification) (string, error) {
	if f.failAll {
		return "", errors.New("store unavailable")
	}
	f.created = append(f.created, n)
	return "n1", nil
}

func (f *fakeNotificationRepo) DeleteReadOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleteCutoff = cutoff
	return f.deleted, f.deleteErr
}

func TestDirectNotifier_CreatesNotification(t *testing.T) {
	repo := &fakeNotificationRepo{}
	n := NewDirectNotifier(repo)

	n.Notify(context.Background(), notification.Notification{
		UserID:  "u1",
		Title:   "Maria Santos",
		Message: "Sent you an image",
	})

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	got := repo.created[0]
	if got.Category != "general" {
		t.Errorf("Category = %q, want default %q", got.Category, "general")
	}
	if got.Priority != notification.PriorityNormal {
		t.Errorf("Priority = %q, want normal", got.Priority)
	}
}

func TestDirectNotifier_SwallowsRepositoryFailure(t *testing.T) {
	repo := &fakeNotificationRepo{failAll: true}
	n := NewDirectNotifier(repo)

	// Must not panic or surface the error in any way.
	n.Notify(context.Background(), notification.Notification{UserID: "u1", Title: "t"})

	if len(repo.created) != 0 {
		t.Errorf("nothing should be recorded on failure, got %d", len(repo.created))
	}
}

func TestDirectNotifier_SkipsInvalid(t *testing.T) {
	repo := &fakeNotificationRepo{}
	n := NewDirectNotifier(repo)

	n.Notify(context.Background(), notification.Notification{Title: "no recipient"})

	if len(repo.created) != 0 {
		t.Errorf("invalid notification should be skipped, got %d creates", len(repo.created))
	}
}

func TestNewRetentionSweeper_RejectsBadSchedule(t *testing.T) {
	if _, err := NewRetentionSweeper(&fakeNotificationRepo{}, "not a cron expr", time.Hour); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if _, err := NewRetentionSweeper(&fakeNotificationRepo{}, "0 3 * * *", 0); err == nil {
		t.Fatal("expected error for non-positive max age")
	}
}

func TestRetentionSweeper_SweepOnce(t *testing.T) {
	repo := &fakeNotificationRepo{deleted: 4}
	s, err := NewRetentionSweeper(repo, "0 3 * * *", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewRetentionSweeper failed: %v", err)
	}

	before := time.Now().Add(-24 * time.Hour)
	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	after := time.Now().Add(-24 * time.Hour)

	if repo.deleteCutoff.Before(before) || repo.deleteCutoff.After(after) {
		t.Errorf("cutoff %v not within expected window [%v, %v]", repo.deleteCutoff, before, after)
	}
}

func TestRetentionSweeper_SweepOncePropagatesError(t *testing.T) {
	repo := &fakeNotificationRepo{deleteErr: errors.New("boom")}
	s, err := NewRetentionSweeper(repo, "* * * * *", time.Hour)
	if err != nil {
		t.Fatalf("NewRetentionSweeper failed: %v", err)
	}
	if err := s.SweepOnce(context.Background()); err == nil {
		t.Fatal("expected repository error to propagate from SweepOnce")
	}
}
