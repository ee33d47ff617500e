// Package cache holds the read-side query cache for the messaging API:
// conversation previews and unread totals keyed per user, invalidated by
// every mutation that could have affected them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"agrimsg/internal/infrastructure/cache/port"
	messaging "agrimsg/internal/pkg/messaging/domain"
)

const defaultTTL = 30 * time.Second

// QueryCache caches read-model payloads. A nil *QueryCache is valid and
// behaves as an always-miss cache, so callers can run without Redis.
type QueryCache struct {
	store port.Cache
	ttl   time.Duration
}

func New(store port.Cache) *QueryCache {
	return &QueryCache{store: store, ttl: defaultTTL}
}

func previewsKey(userID string) string { return "msg:previews:" + userID }
func unreadKey(userID string) string   { return "msg:unread:" + userID }

// GetPreviews returns the cached preview list for a user, if present.
func (c *QueryCache) GetPreviews(ctx context.Context, userID string) ([]messaging.ConversationPreview, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}
	raw, err := c.store.Get(ctx, previewsKey(userID))
	if err != nil {
		if !errors.Is(err, port.ErrMiss) {
			log.Printf("cache: get previews for %s: %v", userID, err)
		}
		return nil, false
	}
	var previews []messaging.ConversationPreview
	if err := json.Unmarshal([]byte(raw), &previews); err != nil {
		return nil, false
	}
	return previews, true
}

// SetPreviews stores the preview list, best-effort.
func (c *QueryCache) SetPreviews(ctx context.Context, userID string, previews []messaging.ConversationPreview) {
	if c == nil || c.store == nil {
		return
	}
	b, err := json.Marshal(previews)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, previewsKey(userID), string(b), c.ttl); err != nil {
		log.Printf("cache: set previews for %s: %v", userID, err)
	}
}

// GetUnread returns the cached unread total for a user, if present.
func (c *QueryCache) GetUnread(ctx context.Context, userID string) (int, bool) {
	if c == nil || c.store == nil {
		return 0, false
	}
	raw, err := c.store.Get(ctx, unreadKey(userID))
	if err != nil {
		if !errors.Is(err, port.ErrMiss) {
			log.Printf("cache: get unread for %s: %v", userID, err)
		}
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetUnread stores the unread total, best-effort.
func (c *QueryCache) SetUnread(ctx context.Context, userID string, total int) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Set(ctx, unreadKey(userID), strconv.Itoa(total), c.ttl); err != nil {
		log.Printf("cache: set unread for %s: %v", userID, err)
	}
}

// InvalidateUsers drops preview and unread entries for the given users.
// Mutations call this with every participant they could have affected.
func (c *QueryCache) InvalidateUsers(ctx context.Context, userIDs ...string) {
	if c == nil || c.store == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(userIDs)*2)
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		keys = append(keys, previewsKey(id), unreadKey(id))
	}
	if len(keys) == 0 {
		return
	}
	if _, err := c.store.Del(ctx, keys...); err != nil {
		log.Printf("cache: invalidate %d keys: %v", len(keys), err)
	}
}
