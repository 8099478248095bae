package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return map[int64]string{55: "Italy"}, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "wyscout:areas", loader)
			if err != nil {
				t.Errorf("GetOrLoad failed: %v", err)
				return
			}
			if areas, _ := v.(map[int64]string); areas[55] != "Italy" {
				t.Errorf("unexpected loaded value: %v", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ServesCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "season-schedule", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "wyscout:season-fixtures:188268", loader); err != nil {
			t.Fatalf("GetOrLoad %d failed: %v", i, err)
		}
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return nil, fmt.Errorf("upstream unavailable")
	}

	for i := 0; i < 2; i++ {
		if _, err := store.GetOrLoad(context.Background(), "wyscout:areas", loader); err == nil {
			t.Fatalf("expected load error on call %d", i)
		}
	}

	if got := loads.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2 (errors must not be cached)", got)
	}
}

func TestStore_GetExpiredEntryIsMiss(t *testing.T) {
	t.Parallel()

	store := NewStore(10 * time.Millisecond)
	store.Set(context.Background(), "wyscout:areas", "stale")

	time.Sleep(25 * time.Millisecond)

	if _, ok := store.Get(context.Background(), "wyscout:areas"); ok {
		t.Fatalf("expected expired entry to be a miss")
	}
}
