package cache

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	deleted [][]string
	err     error
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.deleted = append(f.deleted, keys)
	return f.err
}

func (f *fakeStore) CacheKey(parts ...string) string {
	key := "test:cache"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

func TestInvalidateDropsRegisteredKeys(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := NewCoordinator(store, nil)

	c.Invalidate(context.Background(), TopicInventory)

	if len(store.deleted) != 1 {
		t.Fatalf("expected one del call, got %d", len(store.deleted))
	}
	want := len(KeysFor(TopicInventory))
	if len(store.deleted[0]) != want {
		t.Fatalf("deleted %d keys, want %d", len(store.deleted[0]), want)
	}
}

func TestInvalidateDedupsAcrossTopics(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := NewCoordinator(store, nil)

	c.Invalidate(context.Background(), TopicOrder, TopicOrder, TopicInventory)

	if len(store.deleted) != 1 {
		t.Fatalf("expected one del call, got %d", len(store.deleted))
	}
	seen := map[string]bool{}
	for _, key := range store.deleted[0] {
		if seen[key] {
			t.Fatalf("duplicate key %s in eviction batch", key)
		}
		seen[key] = true
	}
}

func TestInvalidateSwallowsStoreErrors(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("connection refused")}
	c := NewCoordinator(store, nil)

	// Must not panic or propagate; staleness falls back to TTL.
	c.Invalidate(context.Background(), TopicOrder)

	if len(store.deleted) != 1 {
		t.Fatalf("expected del attempt despite error")
	}
}

func TestInvalidateNoTopicsNoCalls(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := NewCoordinator(store, nil)

	c.Invalidate(context.Background())

	if len(store.deleted) != 0 {
		t.Fatalf("expected no del calls, got %d", len(store.deleted))
	}
}

func TestKeysForUnknownTopic(t *testing.T) {
	t.Parallel()

	if keys := KeysFor(Topic("nonsense")); len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}
