package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/gamesoul/gamesoul/internal/models"
)

// storeFactory builds a fresh, empty store for one subtest.
type storeFactory func(t *testing.T) AffinityStore

// runAffinityStoreContract exercises behavior every adapter must share.
func runAffinityStoreContract(t *testing.T, newStore storeFactory) {
	t.Run("EnsureUser", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.EnsureUser(ctx, "alice")
		if err != nil {
			t.Fatalf("EnsureUser() error = %v", err)
		}
		if !created {
			t.Error("EnsureUser() first call created = false, want true")
		}

		created, err = s.EnsureUser(ctx, "alice")
		if err != nil {
			t.Fatalf("EnsureUser() error = %v", err)
		}
		if created {
			t.Error("EnsureUser() second call created = true, want false")
		}

		u, err := s.GetUser(ctx, "alice")
		if err != nil || u == nil {
			t.Fatalf("GetUser() = %v, %v", u, err)
		}
		if u.Status != "active" {
			t.Errorf("Status = %q, want active", u.Status)
		}
		if u.RegisteredAt.IsZero() || u.LastActivityAt.IsZero() {
			t.Error("timestamps not set")
		}

		if _, err := s.EnsureUser(ctx, ""); !errors.Is(err, models.ErrValidation) {
			t.Errorf("EnsureUser(\"\") error = %v, want ErrValidation", err)
		}
	})

	t.Run("SaveUser merges fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.SaveUser(ctx, models.User{ID: "bob", DominantEmotion: models.EmotionSocial, TimePreference: "short"}); err != nil {
			t.Fatalf("SaveUser() error = %v", err)
		}
		if err := s.SaveUser(ctx, models.User{ID: "bob", TimePreference: "long"}); err != nil {
			t.Fatalf("SaveUser() error = %v", err)
		}

		u, err := s.GetUser(ctx, "bob")
		if err != nil || u == nil {
			t.Fatalf("GetUser() = %v, %v", u, err)
		}
		if u.DominantEmotion != models.EmotionSocial {
			t.Errorf("DominantEmotion = %q, want social", u.DominantEmotion)
		}
		if u.TimePreference != "long" {
			t.Errorf("TimePreference = %q, want long", u.TimePreference)
		}
		if u.Status != "active" {
			t.Errorf("Status = %q, want active", u.Status)
		}

		missing, err := s.GetUser(ctx, "nobody")
		if err != nil {
			t.Fatalf("GetUser() error = %v", err)
		}
		if missing != nil {
			t.Errorf("GetUser(nobody) = %v, want nil", missing)
		}
	})

	t.Run("EnsureItem creates placeholder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.EnsureItem(ctx, "g1")
		if err != nil || !created {
			t.Fatalf("EnsureItem() = %v, %v", created, err)
		}
		created, err = s.EnsureItem(ctx, "g1")
		if err != nil || created {
			t.Fatalf("EnsureItem() second call = %v, %v", created, err)
		}

		item, err := s.GetItem(ctx, "g1")
		if err != nil || item == nil {
			t.Fatalf("GetItem() = %v, %v", item, err)
		}
		if item.Name != "g1" {
			t.Errorf("Name = %q, want g1", item.Name)
		}
		if item.Description != "Automatically created item" {
			t.Errorf("Description = %q", item.Description)
		}
	})

	t.Run("SaveItem keeps characteristics", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		item := models.Item{ID: "g1", Name: "Dark Keep", Description: "Hard", Characteristics: []string{"combat", "difficult"}}
		if err := s.SaveItem(ctx, item); err != nil {
			t.Fatalf("SaveItem() error = %v", err)
		}
		got, err := s.GetItem(ctx, "g1")
		if err != nil || got == nil {
			t.Fatalf("GetItem() = %v, %v", got, err)
		}
		if !reflect.DeepEqual(got.Characteristics, item.Characteristics) {
			t.Errorf("Characteristics = %v, want %v", got.Characteristics, item.Characteristics)
		}
		if got.Name != "Dark Keep" {
			t.Errorf("Name = %q", got.Name)
		}
	})

	t.Run("edge writes require endpoints", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")

		err := s.UpsertPlayed(ctx, models.Play{UserID: "alice", ItemID: "missing", Liked: true})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("UpsertPlayed() error = %v, want ErrNotFound", err)
		}
		err = s.UpsertSimilarity(ctx, models.Similarity{UserID: "alice", OtherID: "ghost", Score: 0.2})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("UpsertSimilarity() error = %v, want ErrNotFound", err)
		}
		err = s.SetEmotionalState(ctx, "ghost", models.EmotionalState{Emotion: models.EmotionJoyful, Intensity: 0.5})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("SetEmotionalState() error = %v, want ErrNotFound", err)
		}
		err = s.SetItemResonance(ctx, "missing", models.EmotionJoyful, 0.5)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("SetItemResonance() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("rejects invalid edges", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")

		tests := []struct {
			name string
			err  error
		}{
			{"self similarity", s.UpsertSimilarity(ctx, models.Similarity{UserID: "alice", OtherID: "alice", Score: 1})},
			{"intensity above one", s.UpsertResonance(ctx, "alice", models.EmotionSocial, 1.5)},
			{"negative intensity", s.UpsertResonance(ctx, "alice", models.EmotionSocial, -0.1)},
			{"unknown emotion", s.UpsertResonance(ctx, "alice", models.Emotion("bored"), 0.5)},
			{"unknown emotion node", s.SaveEmotion(ctx, models.Emotion("bored"), "")},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if !errors.Is(tt.err, models.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", tt.err)
				}
			})
		}
	})

	t.Run("emotional state replaces previous", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")

		state, err := s.FindEmotionalState(ctx, "alice")
		if err != nil || state != nil {
			t.Fatalf("FindEmotionalState() = %v, %v, want nil", state, err)
		}

		mustSetState(t, s, "alice", models.EmotionJoyful, 0.7)
		mustSetState(t, s, "alice", models.EmotionCreative, 0.4)

		state, err = s.FindEmotionalState(ctx, "alice")
		if err != nil || state == nil {
			t.Fatalf("FindEmotionalState() = %v, %v", state, err)
		}
		if state.Emotion != models.EmotionCreative || state.Intensity != 0.4 {
			t.Errorf("state = %+v, want creative/0.4", state)
		}

		stats, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.EmotionalStates != 1 {
			t.Errorf("EmotionalStates = %d, want 1", stats.EmotionalStates)
		}
	})

	t.Run("played is last write wins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")
		mustEnsureItem(t, s, "g1")

		mustPlay(t, s, "alice", "g1", true)
		mustPlay(t, s, "alice", "g1", false)

		stats, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.Plays != 1 {
			t.Errorf("Plays = %d, want 1", stats.Plays)
		}

		// The disliked play no longer counts as a shared like.
		mustEnsureUser(t, s, "bob")
		mustPlay(t, s, "bob", "g1", true)
		shared, err := s.UsersWithSharedLikedItems(ctx, "alice", 1)
		if err != nil {
			t.Fatalf("UsersWithSharedLikedItems() error = %v", err)
		}
		if len(shared) != 0 {
			t.Errorf("shared = %v, want none", shared)
		}
	})

	t.Run("TopItemsForEmotion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustSaveItem(t, s, models.Item{ID: "a", Name: "A"})
		mustSaveItem(t, s, models.Item{ID: "b", Name: "B", Characteristics: []string{"combat"}})
		mustSaveItem(t, s, models.Item{ID: "c", Name: "C"})
		mustSaveItem(t, s, models.Item{ID: "d", Name: "D"})
		mustResonate(t, s, "a", models.EmotionRelaxing, 0.5)
		mustResonate(t, s, "b", models.EmotionRelaxing, 0.9)
		mustResonate(t, s, "c", models.EmotionRelaxing, 0.5)
		mustResonate(t, s, "d", models.EmotionSocial, 1.0)

		tests := []struct {
			name    string
			k       int
			exclude []string
			want    []string
		}{
			{"all ordered with id tie-break", 0, nil, []string{"b", "a", "c"}},
			{"limited", 2, nil, []string{"b", "a"}},
			{"dealbreaker excluded", 5, []string{"combat"}, []string{"a", "c"}},
			{"unrelated dealbreaker", 5, []string{"horror"}, []string{"b", "a", "c"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.TopItemsForEmotion(ctx, models.EmotionRelaxing, tt.k, tt.exclude...)
				if err != nil {
					t.Fatalf("TopItemsForEmotion() error = %v", err)
				}
				if ids := scoredIDs(got); !reflect.DeepEqual(ids, tt.want) {
					t.Errorf("TopItemsForEmotion() = %v, want %v", ids, tt.want)
				}
			})
		}

		got, err := s.TopItemsForEmotion(ctx, models.EmotionRelaxing, 1)
		if err != nil {
			t.Fatalf("TopItemsForEmotion() error = %v", err)
		}
		if len(got) != 1 || got[0].Score != 0.9 || !reflect.DeepEqual(got[0].Item.Characteristics, []string{"combat"}) {
			t.Errorf("top item = %+v, want b with score 0.9 and characteristics", got)
		}
	})

	t.Run("TopItemsResonatingWithUserState", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")
		mustSaveItem(t, s, models.Item{ID: "a", Name: "A"})
		mustSaveItem(t, s, models.Item{ID: "b", Name: "B"})
		mustResonate(t, s, "a", models.EmotionJoyful, 0.6)
		mustResonate(t, s, "b", models.EmotionJoyful, 0.8)

		got, err := s.TopItemsResonatingWithUserState(ctx, "alice", 5)
		if err != nil {
			t.Fatalf("TopItemsResonatingWithUserState() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("without state got %v, want empty", scoredIDs(got))
		}

		mustSetState(t, s, "alice", models.EmotionJoyful, 0.7)
		got, err = s.TopItemsResonatingWithUserState(ctx, "alice", 5)
		if err != nil {
			t.Fatalf("TopItemsResonatingWithUserState() error = %v", err)
		}
		if ids := scoredIDs(got); !reflect.DeepEqual(ids, []string{"b", "a"}) {
			t.Errorf("TopItemsResonatingWithUserState() = %v, want [b a]", ids)
		}
	})

	t.Run("TopItemEmotion", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureItem(t, s, "g1")
		mustEnsureItem(t, s, "g2")

		_, ok, err := s.TopItemEmotion(ctx, "g1")
		if err != nil || ok {
			t.Fatalf("TopItemEmotion() without data = %v, %v", ok, err)
		}

		mustResonate(t, s, "g1", models.EmotionCompetitive, 0.8)
		mustResonate(t, s, "g1", models.EmotionSocial, 0.8)
		mustResonate(t, s, "g1", models.EmotionRelaxing, 0.3)
		got, ok, err := s.TopItemEmotion(ctx, "g1")
		if err != nil || !ok {
			t.Fatalf("TopItemEmotion() = %v, %v", ok, err)
		}
		if got != models.EmotionSocial {
			t.Errorf("TopItemEmotion() = %q, want social (canonical tie-break)", got)
		}
	})

	t.Run("shared likes and social ranking", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, u := range []string{"alice", "bob", "carol", "dave"} {
			mustEnsureUser(t, s, u)
		}
		for _, g := range []string{"g1", "g2", "g3", "g4", "g5"} {
			mustEnsureItem(t, s, g)
		}
		mustPlay(t, s, "alice", "g1", true)
		mustPlay(t, s, "alice", "g2", true)
		mustPlay(t, s, "bob", "g2", true)
		mustPlay(t, s, "bob", "g1", true)
		mustPlay(t, s, "bob", "g3", true)
		mustPlay(t, s, "bob", "g4", true)
		mustPlay(t, s, "carol", "g2", true)
		mustPlay(t, s, "carol", "g4", true)
		mustPlay(t, s, "carol", "g5", false)
		mustPlay(t, s, "dave", "g1", false)

		shared, err := s.UsersWithSharedLikedItems(ctx, "alice", 1)
		if err != nil {
			t.Fatalf("UsersWithSharedLikedItems() error = %v", err)
		}
		want := []models.SharedLikes{
			{UserID: "alice", OtherID: "bob", SharedCount: 2, SharedItemIDs: []string{"g1", "g2"}},
			{UserID: "alice", OtherID: "carol", SharedCount: 1, SharedItemIDs: []string{"g2"}},
		}
		if !reflect.DeepEqual(shared, want) {
			t.Errorf("UsersWithSharedLikedItems() = %+v, want %+v", shared, want)
		}

		shared, err = s.UsersWithSharedLikedItems(ctx, "alice", 2)
		if err != nil {
			t.Fatalf("UsersWithSharedLikedItems() error = %v", err)
		}
		if len(shared) != 1 || shared[0].OtherID != "bob" {
			t.Errorf("minShared=2 got %+v, want only bob", shared)
		}

		mustSimilar(t, s, "alice", "bob", 0.4)
		mustSimilar(t, s, "alice", "carol", 0.2)

		sims, err := s.SimilarUsers(ctx, "alice")
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if len(sims) != 2 || sims[0].OtherID != "bob" || sims[1].OtherID != "carol" {
			t.Errorf("SimilarUsers() = %+v, want bob then carol", sims)
		}
		if !reflect.DeepEqual(sims[0].SharedItemIDs, []string{"g1", "g2"}) {
			t.Errorf("SharedItemIDs = %v", sims[0].SharedItemIDs)
		}

		items, err := s.ItemsLikedBySimilarUsers(ctx, "alice", 5)
		if err != nil {
			t.Fatalf("ItemsLikedBySimilarUsers() error = %v", err)
		}
		// g4 liked by bob and carol, g3 by bob only; g1, g2 already played; g5 disliked.
		if ids := scoredIDs(items); !reflect.DeepEqual(ids, []string{"g4", "g3"}) {
			t.Errorf("ItemsLikedBySimilarUsers() = %v, want [g4 g3]", ids)
		}
		if items[0].Score != 2 || items[1].Score != 1 {
			t.Errorf("scores = %v, %v, want 2, 1", items[0].Score, items[1].Score)
		}

		none, err := s.ItemsLikedBySimilarUsers(ctx, "dave", 5)
		if err != nil {
			t.Fatalf("ItemsLikedBySimilarUsers() error = %v", err)
		}
		if len(none) != 0 {
			t.Errorf("user without similarities got %v", scoredIDs(none))
		}
	})

	t.Run("similarity upsert is keyed by pair", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")
		mustEnsureUser(t, s, "bob")

		mustSimilar(t, s, "alice", "bob", 0.2)
		mustSimilar(t, s, "alice", "bob", 0.6)

		sims, err := s.SimilarUsers(ctx, "alice")
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if len(sims) != 1 || sims[0].Score != 0.6 {
			t.Errorf("SimilarUsers() = %+v, want one edge with score 0.6", sims)
		}
		reverse, err := s.SimilarUsers(ctx, "bob")
		if err != nil {
			t.Fatalf("SimilarUsers() error = %v", err)
		}
		if len(reverse) != 0 {
			t.Errorf("edges are directed, got %+v for bob", reverse)
		}
	})

	t.Run("SaveUser keeps status when empty", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.SaveUser(ctx, models.User{ID: "seed", Status: "seed"}); err != nil {
			t.Fatalf("SaveUser() error = %v", err)
		}
		if err := s.SaveUser(ctx, models.User{ID: "seed", DominantEmotion: models.EmotionRelaxing}); err != nil {
			t.Fatalf("SaveUser() error = %v", err)
		}
		u, err := s.GetUser(ctx, "seed")
		if err != nil || u == nil {
			t.Fatalf("GetUser() = %v, %v", u, err)
		}
		if u.Status != "seed" {
			t.Errorf("Status = %q, want seed", u.Status)
		}
	})

	t.Run("UserResonances", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")

		empty, err := s.UserResonances(ctx, "alice")
		if err != nil {
			t.Fatalf("UserResonances() error = %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("UserResonances() = %+v, want none", empty)
		}

		writes := []struct {
			emotion   models.Emotion
			intensity float64
		}{
			{models.EmotionRelaxing, 0.4},
			{models.EmotionJoyful, 0.4},
			{models.EmotionCompetitive, 0.2},
			{models.EmotionCompetitive, 0.9},
		}
		for _, w := range writes {
			if err := s.UpsertResonance(ctx, "alice", w.emotion, w.intensity); err != nil {
				t.Fatalf("UpsertResonance(%s) error = %v", w.emotion, err)
			}
		}

		got, err := s.UserResonances(ctx, "alice")
		if err != nil {
			t.Fatalf("UserResonances() error = %v", err)
		}
		want := []models.Resonance{
			{Emotion: models.EmotionCompetitive, Intensity: 0.9},
			{Emotion: models.EmotionRelaxing, Intensity: 0.4},
			{Emotion: models.EmotionJoyful, Intensity: 0.4},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("UserResonances() = %+v, want %+v", got, want)
		}

		unknown, err := s.UserResonances(ctx, "nobody")
		if err != nil {
			t.Fatalf("UserResonances(nobody) error = %v", err)
		}
		if len(unknown) != 0 {
			t.Errorf("UserResonances(nobody) = %+v, want none", unknown)
		}
	})

	t.Run("Characteristics", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		empty, err := s.Characteristics(ctx)
		if err != nil {
			t.Fatalf("Characteristics() error = %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("Characteristics() = %v, want none", empty)
		}

		mustSaveItem(t, s, models.Item{ID: "g1", Name: "One", Characteristics: []string{"story", "combat"}})
		mustSaveItem(t, s, models.Item{ID: "g2", Name: "Two", Characteristics: []string{"combat", "puzzle"}})
		mustEnsureItem(t, s, "g3")

		got, err := s.Characteristics(ctx)
		if err != nil {
			t.Fatalf("Characteristics() error = %v", err)
		}
		want := []string{"combat", "puzzle", "story"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Characteristics() = %v, want %v", got, want)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		mustEnsureUser(t, s, "alice")
		mustEnsureUser(t, s, "bob")
		mustEnsureItem(t, s, "g1")
		if err := s.SaveEmotion(ctx, models.EmotionJoyful, "Fun"); err != nil {
			t.Fatalf("SaveEmotion() error = %v", err)
		}
		if err := s.SaveEmotion(ctx, models.EmotionJoyful, "Fun again"); err != nil {
			t.Fatalf("SaveEmotion() error = %v", err)
		}
		mustResonate(t, s, "g1", models.EmotionJoyful, 0.9)
		if err := s.UpsertResonance(ctx, "alice", models.EmotionJoyful, 0.5); err != nil {
			t.Fatalf("UpsertResonance() error = %v", err)
		}
		if err := s.UpsertResonance(ctx, "alice", models.EmotionJoyful, 0.6); err != nil {
			t.Fatalf("UpsertResonance() error = %v", err)
		}
		mustPlay(t, s, "alice", "g1", true)
		mustSimilar(t, s, "alice", "bob", 0.2)

		stats, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		want := models.Stats{Users: 2, Items: 1, Emotions: 1, ItemResonances: 1, UserResonances: 1, Plays: 1, Similarities: 1}
		if stats != want {
			t.Errorf("Stats() = %+v, want %+v", stats, want)
		}
	})
}

// Helper functions

func mustEnsureUser(t *testing.T, s AffinityStore, id string) {
	t.Helper()
	if _, err := s.EnsureUser(context.Background(), id); err != nil {
		t.Fatalf("EnsureUser(%s) error = %v", id, err)
	}
}

func mustEnsureItem(t *testing.T, s AffinityStore, id string) {
	t.Helper()
	if _, err := s.EnsureItem(context.Background(), id); err != nil {
		t.Fatalf("EnsureItem(%s) error = %v", id, err)
	}
}

func mustSaveItem(t *testing.T, s AffinityStore, item models.Item) {
	t.Helper()
	if err := s.SaveItem(context.Background(), item); err != nil {
		t.Fatalf("SaveItem(%s) error = %v", item.ID, err)
	}
}

func mustResonate(t *testing.T, s AffinityStore, itemID string, e models.Emotion, intensity float64) {
	t.Helper()
	if err := s.SetItemResonance(context.Background(), itemID, e, intensity); err != nil {
		t.Fatalf("SetItemResonance(%s, %s) error = %v", itemID, e, err)
	}
}

func mustSetState(t *testing.T, s AffinityStore, userID string, e models.Emotion, intensity float64) {
	t.Helper()
	state := models.EmotionalState{Emotion: e, Intensity: intensity, Provenance: models.SourceTypeQuestionnaire}
	if err := s.SetEmotionalState(context.Background(), userID, state); err != nil {
		t.Fatalf("SetEmotionalState(%s) error = %v", userID, err)
	}
}

func mustPlay(t *testing.T, s AffinityStore, userID, itemID string, liked bool) {
	t.Helper()
	if err := s.UpsertPlayed(context.Background(), models.Play{UserID: userID, ItemID: itemID, Liked: liked}); err != nil {
		t.Fatalf("UpsertPlayed(%s, %s) error = %v", userID, itemID, err)
	}
}

func mustSimilar(t *testing.T, s AffinityStore, userID, otherID string, score float64) {
	t.Helper()
	ctx := context.Background()
	var shared []string
	if likes, err := s.UsersWithSharedLikedItems(ctx, userID, 1); err == nil {
		for _, l := range likes {
			if l.OtherID == otherID {
				shared = l.SharedItemIDs
			}
		}
	}
	sim := models.Similarity{
		UserID:        userID,
		OtherID:       otherID,
		Score:         score,
		SharedCount:   len(shared),
		SharedItemIDs: shared,
		Provenance:    models.SourceTypeNatural,
	}
	if err := s.UpsertSimilarity(ctx, sim); err != nil {
		t.Fatalf("UpsertSimilarity(%s, %s) error = %v", userID, otherID, err)
	}
}

func scoredIDs(items []models.ScoredItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Item.ID)
	}
	return ids
}
