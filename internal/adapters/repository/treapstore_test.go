package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"testing"
)

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(1))

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	total, err := store.AddPoints(ctx, "user1", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 50 {
		t.Errorf("expected total 50, got %d", total)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "user1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Points != 50 || entry.UserID != "user1" {
		t.Errorf("unexpected entry %+v", entry)
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].UserID != "user1" {
		t.Errorf("unexpected top entries %+v", entries)
	}
}

func TestTreapStore_PointsAccumulate(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(2))

	for _, delta := range []int64{10, 20, 5} {
		if _, err := store.AddPoints(ctx, "user1", delta); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	entry, _ := store.Rank(ctx, "user1")
	if entry.Points != 35 {
		t.Errorf("expected 35 points, got %d", entry.Points)
	}

	total, _ := store.AddPoints(ctx, "user1", -100)
	if total != 0 {
		t.Errorf("expected total to floor at 0, got %d", total)
	}
	if store.Count(ctx) != 1 {
		t.Errorf("a user with a zero total stays ranked")
	}
}

func TestTreapStore_Ordering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(3))

	points := map[string]int64{"alice": 30, "bob": 50, "carol": 10, "dave": 50, "erin": 0}
	for id, p := range points {
		if _, err := store.AddPoints(ctx, id, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	entries, err := store.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.UserID)
	}
	want := []string{"bob", "dave", "alice", "carol", "erin"}
	if !slices.Equal(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d: expected rank %d, got %d", i, i+1, e.Rank)
		}
		r, _ := store.Rank(ctx, e.UserID)
		if r.Rank != e.Rank {
			t.Errorf("%s: Rank %d disagrees with TopN %d", e.UserID, r.Rank, e.Rank)
		}
	}
}

func TestTreapStore_RankMovesWithUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(4))

	_, _ = store.AddPoints(ctx, "a", 100)
	_, _ = store.AddPoints(ctx, "b", 50)
	if r, _ := store.Rank(ctx, "b"); r.Rank != 2 {
		t.Fatalf("expected b at 2, got %d", r.Rank)
	}

	_, _ = store.AddPoints(ctx, "b", 60)
	if r, _ := store.Rank(ctx, "b"); r.Rank != 1 || r.Points != 110 {
		t.Errorf("expected b at 1 with 110, got %+v", r)
	}
	if r, _ := store.Rank(ctx, "a"); r.Rank != 2 {
		t.Errorf("expected a at 2, got %d", r.Rank)
	}
	if store.Count(ctx) != 2 {
		t.Errorf("updates must not duplicate users")
	}
}

func TestTreapStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	if _, err := store.Rank(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	for _, n := range []int{0, -1} {
		if _, err := store.TopN(ctx, n); !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("TopN(%d): expected ErrInvalidLimit, got %v", n, err)
		}
	}
	if _, err := store.AddPoints(ctx, "", 5); !errors.Is(err, ErrInvalidUser) {
		t.Errorf("expected ErrInvalidUser, got %v", err)
	}
	entries, err := store.TopN(ctx, 3)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %v %v", entries, err)
	}
}

func TestTreapStore_InitialPoints(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithInitialPoints(map[string]int64{"a": 5, "b": 15, "": 40, "c": 0}))

	if store.Count(ctx) != 2 {
		t.Fatalf("expected 2 preloaded users, got %d", store.Count(ctx))
	}
	if r, _ := store.Rank(ctx, "b"); r.Rank != 1 {
		t.Errorf("expected b first, got %d", r.Rank)
	}
}

func TestTreapStore_RankCorrectnessUnderStress(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(WithSeed(5))
	rng := rand.New(rand.NewPCG(7, 11))

	const numUsers = 1000
	totals := make(map[string]int64, numUsers)
	for i := 0; i < 5*numUsers; i++ {
		id := fmt.Sprintf("user_%d", rng.IntN(numUsers))
		delta := rng.Int64N(100)
		total, err := store.AddPoints(ctx, id, delta)
		if err != nil {
			t.Fatalf("AddPoints failed: %v", err)
		}
		totals[id] += delta
		if total != totals[id] {
			t.Fatalf("%s: expected total %d, got %d", id, totals[id], total)
		}
	}

	type row struct {
		id     string
		points int64
	}
	rows := make([]row, 0, len(totals))
	for id, p := range totals {
		rows = append(rows, row{id, p})
	}
	sort.Slice(rows, func(i, j int) bool { return less(rows[i].points, rows[i].id, rows[j].points, rows[j].id) })

	for i, r := range rows {
		entry, err := store.Rank(ctx, r.id)
		if err != nil {
			t.Fatalf("Rank(%s) failed: %v", r.id, err)
		}
		if entry.Rank != i+1 {
			t.Errorf("%s: expected rank %d, got %d", r.id, i+1, entry.Rank)
		}
	}

	for _, limit := range []int{1, 10, 100, len(rows), len(rows) + 50} {
		entries, err := store.TopN(ctx, limit)
		if err != nil {
			t.Fatalf("TopN(%d) failed: %v", limit, err)
		}
		if len(entries) != min(limit, len(rows)) {
			t.Errorf("TopN(%d) returned %d entries", limit, len(entries))
		}
		for i, e := range entries {
			if e.UserID != rows[i].id || e.Points != rows[i].points {
				t.Errorf("TopN(%d) entry %d: expected %v, got %+v", limit, i, rows[i], e)
				break
			}
		}
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore()

	const goroutines = 16
	const perGoroutine = 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				id := fmt.Sprintf("user_%d", i%50)
				if _, err := store.AddPoints(ctx, id, 1); err != nil {
					t.Errorf("AddPoints failed: %v", err)
					return
				}
				if g%2 == 0 {
					_, _ = store.TopN(ctx, 5)
					_, _ = store.Rank(ctx, id)
				}
			}
		}(g)
	}
	wg.Wait()

	if store.Count(ctx) != 50 {
		t.Errorf("expected 50 users, got %d", store.Count(ctx))
	}
	entries, _ := store.TopN(ctx, 50)
	var sum int64
	for _, e := range entries {
		sum += e.Points
	}
	if sum != goroutines*perGoroutine {
		t.Errorf("expected %d points in total, got %d", goroutines*perGoroutine, sum)
	}
}
