package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

var errUnexpectedValue = errors.New("unexpected value")

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
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
			v, err := store.GetOrLoad(context.Background(), "round:9", loader)
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

func TestStore_GetOrLoadStale_FallsBackToLastGood(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	now := time.Date(2025, 11, 29, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	upstreamErr := errors.New("upstream down")

	value, stale, err := store.GetOrLoadStale(ctx, "round:12", func(context.Context) (any, error) {
		return "snapshot-1", nil
	})
	if err != nil || stale || value != "snapshot-1" {
		t.Fatalf("unexpected first load: value=%v stale=%v err=%v", value, stale, err)
	}

	now = now.Add(2 * time.Minute)
	value, stale, err = store.GetOrLoadStale(ctx, "round:12", func(context.Context) (any, error) {
		return nil, upstreamErr
	})
	if err != nil {
		t.Fatalf("expected stale fallback, got error %v", err)
	}
	if !stale || value != "snapshot-1" {
		t.Fatalf("expected stale snapshot-1, got value=%v stale=%v", value, stale)
	}

	_, _, err = store.GetOrLoadStale(ctx, "round:13", func(context.Context) (any, error) {
		return nil, upstreamErr
	})
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected upstream error without snapshot, got %v", err)
	}
}

func TestStore_LookupReportsFreshness(t *testing.T) {
	t.Parallel()

	store := NewStore(30 * time.Second)
	now := time.Date(2025, 11, 29, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Set(ctx, "k", 1)
	if e, ok := store.Lookup(ctx, "k"); !ok || !e.Fresh {
		t.Fatalf("expected fresh entry, got %+v ok=%v", e, ok)
	}

	now = now.Add(31 * time.Second)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expected Get miss after ttl")
	}
	if e, ok := store.Lookup(ctx, "k"); !ok || e.Fresh || e.Value != 1 {
		t.Fatalf("expected stale entry to stay readable, got %+v ok=%v", e, ok)
	}

}

func TestStore_ExpireKeepsLastValue(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "round", 9)

	store.Expire(ctx, "round")
	store.Expire(ctx, "missing")
	if _, ok := store.Get(ctx, "round"); ok {
		t.Fatalf("expected Get miss after expire")
	}
	if e, ok := store.Lookup(ctx, "round"); !ok || e.Fresh || e.Value != 9 {
		t.Fatalf("expected expired entry to stay readable, got %+v ok=%v", e, ok)
	}

	upstream := errors.New("provider offline")
	value, stale, err := store.GetOrLoadStale(ctx, "round", func(context.Context) (any, error) {
		return nil, upstream
	})
	if err != nil || !stale || value != 9 {
		t.Fatalf("expected stale 9 after failed reload, got %v stale=%v err=%v", value, stale, err)
	}

	value, stale, err = store.GetOrLoadStale(ctx, "round", func(context.Context) (any, error) {
		return 10, nil
	})
	if err != nil || stale || value != 10 {
		t.Fatalf("expected fresh reload, got %v stale=%v err=%v", value, stale, err)
	}
	if e, _ := store.Lookup(ctx, "round"); !e.Fresh {
		t.Fatalf("Set must clear the expired mark")
	}
}
