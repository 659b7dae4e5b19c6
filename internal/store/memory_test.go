package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gamesoul/gamesoul/internal/models"
)

func TestInMemoryAffinityStore_Contract(t *testing.T) {
	runAffinityStoreContract(t, func(t *testing.T) AffinityStore {
		return NewInMemoryAffinityStore()
	})
}

func TestInMemoryAffinityStore_TouchesLastActivity(t *testing.T) {
	s := NewInMemoryAffinityStore()
	ctx := context.Background()

	first := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	s.nowFunc = func() time.Time { return first }
	mustEnsureUser(t, s, "alice")

	s.nowFunc = func() time.Time { return later }
	mustEnsureUser(t, s, "alice")

	u, err := s.GetUser(ctx, "alice")
	if err != nil || u == nil {
		t.Fatalf("GetUser() = %v, %v", u, err)
	}
	if !u.RegisteredAt.Equal(first) {
		t.Errorf("RegisteredAt = %v, want %v", u.RegisteredAt, first)
	}
	if !u.LastActivityAt.Equal(later) {
		t.Errorf("LastActivityAt = %v, want %v", u.LastActivityAt, later)
	}
}

func TestInMemoryAffinityStore_PlayWeight(t *testing.T) {
	s := NewInMemoryAffinityStore()
	mustEnsureUser(t, s, "alice")
	mustEnsureItem(t, s, "g1")
	mustPlay(t, s, "alice", "g1", false)

	play := s.plays[playKey{user: "alice", item: "g1"}]
	if play.Weight != -0.5 {
		t.Errorf("Weight = %v, want -0.5", play.Weight)
	}
	if play.PlayedAt.IsZero() {
		t.Error("PlayedAt not set")
	}
}

func TestInMemoryAffinityStore_Concurrency(t *testing.T) {
	s := NewInMemoryAffinityStore()
	ctx := context.Background()
	mustEnsureItem(t, s, "shared")
	if err := s.SetItemResonance(ctx, "shared", models.EmotionJoyful, 0.5); err != nil {
		t.Fatalf("SetItemResonance() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", n)
			if _, err := s.EnsureUser(ctx, id); err != nil {
				t.Errorf("EnsureUser() error = %v", err)
				return
			}
			if err := s.UpsertPlayed(ctx, models.Play{UserID: id, ItemID: "shared", Liked: true}); err != nil {
				t.Errorf("UpsertPlayed() error = %v", err)
			}
			if _, err := s.TopItemsForEmotion(ctx, models.EmotionJoyful, 5); err != nil {
				t.Errorf("TopItemsForEmotion() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Users != 20 || stats.Plays != 20 {
		t.Errorf("Stats() = %+v, want 20 users and 20 plays", stats)
	}
}
