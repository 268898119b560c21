package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndlegal/citecheck/internal/model"
)

func resultWith(status model.Status) model.VerificationResult {
	return model.VerificationResult{
		Citation:  model.Citation{Kind: model.KindNDCase, Normalized: "2024 ND 156"},
		Status:    status,
		Source:    "fake",
		FetchedAt: time.Now().UTC(),
	}
}

func TestStore_Idempotence(t *testing.T) {
	store := NewStore(NewDiskCache(t.TempDir()))

	var calls int32
	produce := func(ctx context.Context) model.VerificationResult {
		atomic.AddInt32(&calls, 1)
		return resultWith(model.StatusVerified)
	}

	first := store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	second := store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)

	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
	if first.Status != model.StatusVerified || second.Status != model.StatusVerified {
		t.Errorf("unexpected statuses: %s, %s", first.Status, second.Status)
	}
}

func TestStore_SingleFlight(t *testing.T) {
	store := NewStore(NewDiskCache(t.TempDir()))

	var calls int32
	release := make(chan struct{})
	produce := func(ctx context.Context) model.VerificationResult {
		atomic.AddInt32(&calls, 1)
		<-release
		return resultWith(model.StatusVerified)
	}

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]model.VerificationResult, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
		}(i)
	}

	// Let all waiters pile up on the in-flight producer, then resolve it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("producer called %d times for %d concurrent callers, want 1", calls, waiters)
	}
	for i, res := range results {
		if res.Status != model.StatusVerified {
			t.Errorf("waiter %d got status %s, want verified", i, res.Status)
		}
	}
}

func TestStore_SourceErrorNotCached(t *testing.T) {
	store := NewStore(NewDiskCache(t.TempDir()))

	var calls int32
	produce := func(ctx context.Context) model.VerificationResult {
		atomic.AddInt32(&calls, 1)
		return resultWith(model.StatusSourceError)
	}

	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)

	if calls != 2 {
		t.Errorf("producer called %d times, want 2 (errors are always retried)", calls)
	}
}

func TestStore_NotFoundExpiresAndRequeries(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	clock := base
	disk := NewDiskCache(t.TempDir())
	disk.now = func() time.Time { return clock }
	store := NewStore(disk)

	var calls int32
	produce := func(ctx context.Context) model.VerificationResult {
		atomic.AddInt32(&calls, 1)
		return resultWith(model.StatusNotFound)
	}

	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	if calls != 1 {
		t.Fatalf("producer called %d times within retention window, want 1", calls)
	}

	clock = base.Add(25 * time.Hour)
	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	if calls != 2 {
		t.Errorf("producer called %d times after expiry, want 2", calls)
	}
}

func TestStore_VerifiedNeverRequeried(t *testing.T) {
	base := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	clock := base
	disk := NewDiskCache(t.TempDir())
	disk.now = func() time.Time { return clock }
	store := NewStore(disk)

	var calls int32
	produce := func(ctx context.Context) model.VerificationResult {
		atomic.AddInt32(&calls, 1)
		return resultWith(model.StatusVerified)
	}

	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)
	clock = base.Add(90 * 24 * time.Hour)
	store.GetOrResolve(context.Background(), "fake", "2024 ND 156", produce)

	if calls != 1 {
		t.Errorf("producer called %d times, want 1 (verified entries are permanent)", calls)
	}
}
