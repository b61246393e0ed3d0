// Package topic holds the best-effort per-chat memory of the last
// recognized subject. The cache is bounded and in-memory only: losing it
// on restart reduces continuity, never correctness.
package topic

import (
	"sync"
	"time"

	"sinax/internal/domain"
)

// DefaultCapacity bounds the cache when the config leaves it unset.
const DefaultCapacity = 256

// Cache is a count-bounded map from chat ID to the last remembered topic.
// When full, the entry with the oldest SeenAt is evicted. A single mutex is
// enough: entries are tiny and lost updates under races are acceptable.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[int64]domain.Topic
}

func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[int64]domain.Topic, capacity),
	}
}

// Get returns the remembered topic for a chat, if any.
func (c *Cache) Get(chatID int64) (domain.Topic, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.entries[chatID]
	return t, ok
}

// Put remembers a topic for a chat, evicting the stalest entry at capacity.
func (c *Cache) Put(chatID int64, t domain.Topic) {
	if t.SeenAt.IsZero() {
		t.SeenAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[chatID]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[chatID] = t
}

// Len reports the number of remembered chats.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictOldestLocked() {
	var (
		oldestID int64
		oldestAt time.Time
		found    bool
	)
	for id, t := range c.entries {
		if !found || t.SeenAt.Before(oldestAt) {
			oldestID, oldestAt, found = id, t.SeenAt, true
		}
	}
	if found {
		delete(c.entries, oldestID)
	}
}
