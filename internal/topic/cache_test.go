package topic

import (
	"sync"
	"testing"
	"time"

	"sinax/internal/domain"
)

func TestCache_PutGet(t *testing.T) {
	c := NewCache(4)
	c.Put(1, domain.Topic{Subject: "saw blade", DimensionMM: 300})

	got, ok := c.Get(1)
	if !ok {
		t.Fatal("expected entry for chat 1")
	}
	if got.Subject != "saw blade" || got.DimensionMM != 300 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got.SeenAt.IsZero() {
		t.Fatal("SeenAt should be stamped on Put")
	}
}

func TestCache_Miss(t *testing.T) {
	c := NewCache(4)
	if _, ok := c.Get(42); ok {
		t.Fatal("expected miss for unknown chat")
	}
}

func TestCache_EvictsOldestAtCapacity(t *testing.T) {
	c := NewCache(2)
	base := time.Now()
	c.Put(1, domain.Topic{Subject: "old", SeenAt: base.Add(-2 * time.Hour)})
	c.Put(2, domain.Topic{Subject: "new", SeenAt: base.Add(-1 * time.Hour)})
	c.Put(3, domain.Topic{Subject: "newest", SeenAt: base})

	if _, ok := c.Get(1); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, ok := c.Get(2); !ok {
		t.Fatal("entry 2 should survive")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatal("entry 3 should be present")
	}
	if c.Len() != 2 {
		t.Fatalf("cache should hold 2 entries, got %d", c.Len())
	}
}

func TestCache_UpdateExistingDoesNotEvict(t *testing.T) {
	c := NewCache(2)
	c.Put(1, domain.Topic{Subject: "a"})
	c.Put(2, domain.Topic{Subject: "b"})
	c.Put(1, domain.Topic{Subject: "a2"})

	if c.Len() != 2 {
		t.Fatalf("updating an existing chat must not evict, len=%d", c.Len())
	}
	got, _ := c.Get(1)
	if got.Subject != "a2" {
		t.Fatalf("expected updated subject, got %q", got.Subject)
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := NewCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(id, domain.Topic{Subject: "s"})
				c.Get(id)
			}
		}(int64(i))
	}
	wg.Wait()
	if c.Len() != 8 {
		t.Fatalf("expected 8 entries, got %d", c.Len())
	}
}

func TestCache_InvalidCapacityFallsBackToDefault(t *testing.T) {
	c := NewCache(0)
	if c.capacity != DefaultCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultCapacity, c.capacity)
	}
}
