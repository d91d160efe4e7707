package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"
)

func TestNextStartsAtBase(t *testing.T) {
	seq := &Sequencer{Store: &MemoryStore{}, Base: 1000}
	n, err := seq.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if n != 1000 {
		t.Fatalf("expected first number 1000, got %d", n)
	}
}

func TestNextConcurrentAllocationsAreDistinct(t *testing.T) {
	seq := &Sequencer{Store: &MemoryStore{}, Base: 1000}

	const workers = 50
	results := make([]int64, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			n, err := seq.Next(context.Background())
			if err != nil {
				t.Errorf("next: %v", err)
				return
			}
			results[slot] = n
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, n := range results {
		want := int64(1000 + i)
		if n != want {
			t.Fatalf("expected contiguous numbers from 1000, slot %d got %d", i, n)
		}
	}
}

func TestNextResetsOnNewDay(t *testing.T) {
	current := time.Date(2026, 3, 14, 23, 50, 0, 0, time.UTC)
	seq := &Sequencer{
		Store: &MemoryStore{},
		Base:  1000,
		Now:   func() time.Time { return current },
	}

	ctx := context.Background()
	for i := 0; i < 51; i++ {
		if _, err := seq.Next(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	n, err := seq.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if n != 1051 {
		t.Fatalf("expected 1051 before rollover, got %d", n)
	}

	current = current.Add(time.Hour)
	n, err = seq.Next(ctx)
	if err != nil {
		t.Fatalf("next after rollover: %v", err)
	}
	if n != 1000 {
		t.Fatalf("expected reset to 1000 on the new day, got %d", n)
	}
}

func TestNextUsesBusinessTimezoneForDayKey(t *testing.T) {
	// 03:00 UTC is still the previous business day in a UTC-5 zone.
	loc := time.FixedZone("UTC-5", -5*60*60)
	current := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	store := &MemoryStore{}
	seq := &Sequencer{
		Store:    store,
		Base:     1000,
		Location: loc,
		Now:      func() time.Time { return current },
	}

	ctx := context.Background()
	if _, err := seq.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}
	if store.day != "2026-03-14" {
		t.Fatalf("expected business day 2026-03-14, got %s", store.day)
	}

	// Crossing UTC midnight alone must not reset the counter.
	current = time.Date(2026, 3, 15, 4, 0, 0, 0, time.UTC)
	n, err := seq.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if n != 1001 {
		t.Fatalf("expected 1001 within the same business day, got %d", n)
	}
}

func TestNextDefaultBase(t *testing.T) {
	seq := &Sequencer{Store: &MemoryStore{}}
	n, err := seq.Next(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if n != DefaultBase {
		t.Fatalf("expected default base %d, got %d", DefaultBase, n)
	}
}
