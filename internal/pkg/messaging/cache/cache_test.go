package cache

import (
	"context"
	"testing"
	"time"

	"agrimsg/internal/infrastructure/cache/port"
	messaging "agrimsg/internal/pkg/messaging/domain"
)

// memoryCache is a map-backed port.Cache for tests.
type memoryCache struct {
	data map[string]string
}

func newMemoryCache() *memoryCache { return &memoryCache{data: make(map[string]string)} }

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", port.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }
func (m *memoryCache) Close() error               { return nil }

func TestQueryCache_PreviewsRoundTrip(t *testing.T) {
	ctx := context.Background()
	qc := New(newMemoryCache())

	if _, ok := qc.GetPreviews(ctx, "u1"); ok {
		t.Fatal("expected miss before set")
	}

	title := "Harvest crew"
	previews := []messaging.ConversationPreview{{
		ConversationID: "c1",
		UserID:         "u1",
		Title:          &title,
		Type:           messaging.ConversationGroup,
		UnreadCount:    2,
	}}
	qc.SetPreviews(ctx, "u1", previews)

	got, ok := qc.GetPreviews(ctx, "u1")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if len(got) != 1 || got[0].ConversationID != "c1" || got[0].UnreadCount != 2 {
		t.Errorf("round-tripped previews = %+v", got)
	}
}

func TestQueryCache_UnreadRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	qc := New(newMemoryCache())

	qc.SetUnread(ctx, "u1", 7)
	if n, ok := qc.GetUnread(ctx, "u1"); !ok || n != 7 {
		t.Fatalf("GetUnread = (%d, %v), want (7, true)", n, ok)
	}

	qc.SetPreviews(ctx, "u1", nil)
	qc.InvalidateUsers(ctx, "u1", "")

	if _, ok := qc.GetUnread(ctx, "u1"); ok {
		t.Error("unread should be invalidated")
	}
	if _, ok := qc.GetPreviews(ctx, "u1"); ok {
		t.Error("previews should be invalidated")
	}
}

func TestQueryCache_NilIsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	var qc *QueryCache

	// All operations must be safe no-ops on a nil cache.
	qc.SetUnread(ctx, "u1", 1)
	qc.SetPreviews(ctx, "u1", nil)
	qc.InvalidateUsers(ctx, "u1")
	if _, ok := qc.GetUnread(ctx, "u1"); ok {
		t.Error("nil cache should always miss")
	}
	if _, ok := qc.GetPreviews(ctx, "u1"); ok {
		t.Error("nil cache should always miss")
	}
}
