package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 0)
	var calls atomic.Int32
	boom := errors.New("boom")

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error on retry, got %v", err)
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("loader called %d times, want 2", got)
	}
}

func TestStore_Get_ExpiresEntries(t *testing.T) {
	t.Parallel()

	store := NewStore(30*time.Millisecond, 0)
	store.Set(context.Background(), "k", "v")

	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatal("expected fresh entry to be present")
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("expected entry to expire")
	}
	if got := store.Len(); got != 0 {
		t.Fatalf("expected expired entry to be dropped, len=%d", got)
	}
}

func TestStore_Set_EvictsStalestAtCapacity(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 2)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	time.Sleep(2 * time.Millisecond)
	store.Set(ctx, "b", 2)
	time.Sleep(2 * time.Millisecond)
	store.Set(ctx, "c", 3)

	if got := store.Len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}
	if _, ok := store.Get(ctx, "a"); ok {
		t.Fatal("expected oldest entry to be evicted")
	}
	if _, ok := store.Get(ctx, "b"); !ok {
		t.Fatal("expected newer entry to survive")
	}
	if _, ok := store.Get(ctx, "c"); !ok {
		t.Fatal("expected newest entry to survive")
	}
}

func TestStore_Set_OverwriteDoesNotEvict(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute, 2)
	ctx := context.Background()

	store.Set(ctx, "a", 1)
	store.Set(ctx, "b", 2)
	store.Set(ctx, "a", 10)

	if got := store.Len(); got != 2 {
		t.Fatalf("len = %d, want 2", got)
	}
	if v, _ := store.Get(ctx, "a"); v != 10 {
		t.Fatalf("expected overwritten value, got %v", v)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
