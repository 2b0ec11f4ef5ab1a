package storage

import (
	"context"
	"testing"
)

func TestMemoryKV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = (ok=%v, err=%v), want absent", ok, err)
	}

	if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || string(v) != "v1" {
		t.Fatalf("Get = (%q, %v, %v), want (v1, true, nil)", v, ok, err)
	}

	// Returned slices are copies, not views into the store.
	v[0] = 'X'
	v2, _, _ := kv.Get(ctx, "k")
	if string(v2) != "v1" {
		t.Errorf("stored value mutated through returned slice: %q", v2)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "k"); ok {
		t.Error("key present after Delete")
	}
}

func TestMemoryKV_IncrVisibleThroughGet(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	for want := int64(1); want <= 3; want++ {
		got, err := kv.Incr(ctx, "gen")
		if err != nil || got != want {
			t.Fatalf("Incr = (%d, %v), want %d", got, err, want)
		}
	}

	// Counters live in the same keyspace as values, like Redis INCR.
	v, ok, err := kv.Get(ctx, "gen")
	if err != nil || !ok || string(v) != "3" {
		t.Fatalf("Get(gen) = (%q, %v, %v), want (3, true, nil)", v, ok, err)
	}
}
