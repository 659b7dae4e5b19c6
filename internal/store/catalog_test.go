package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	if len(cat.Items) == 0 {
		t.Fatal("default catalog has no items")
	}

	seeds := make(map[string]bool)
	for _, seed := range cat.SeedUsers {
		seeds[seed.ID] = true
	}
	for _, id := range constants.DefaultSeedUsers {
		if !seeds[id] {
			t.Errorf("default seed user %s missing from catalog", id)
		}
	}

	// Every emotion should be reachable by at least one item.
	covered := make(map[string]bool)
	for _, item := range cat.Items {
		for name := range item.Resonances {
			covered[name] = true
		}
	}
	for _, e := range models.Emotions {
		if !covered[string(e)] {
			t.Errorf("no catalog item resonates with %s", e)
		}
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing id", "items:\n  - name: Nameless\n"},
		{"duplicate id", "items:\n  - id: a\n  - id: a\n"},
		{"unknown emotion", "items:\n  - id: a\n    resonances: {bored: 0.5}\n"},
		{"intensity out of range", "items:\n  - id: a\n    resonances: {joyful: 1.5}\n"},
		{"seed likes unknown item", "items:\n  - id: a\nseed_users:\n  - id: s\n    likes: [b]\n"},
		{"seed unknown emotion", "items:\n  - id: a\nseed_users:\n  - id: s\n    state: {emotion: angry, intensity: 0.5}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("ParseCatalog() error = %v, want ErrValidation", err)
			}
		})
	}

	if _, err := ParseCatalog([]byte("items: [")); err == nil {
		t.Error("ParseCatalog() with malformed YAML succeeded")
	}
}

func TestLoadCatalog_Idempotent(t *testing.T) {
	s := NewInMemoryAffinityStore()
	ctx := context.Background()
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	first, err := LoadCatalog(ctx, s, cat)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	before, _ := s.Stats(ctx)

	second, err := LoadCatalog(ctx, s, cat)
	if err != nil {
		t.Fatalf("second LoadCatalog() error = %v", err)
	}
	after, _ := s.Stats(ctx)

	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
	if before != after {
		t.Errorf("stats changed on reload: %+v -> %+v", before, after)
	}
	if after.Emotions != len(models.Emotions) {
		t.Errorf("Emotions = %d, want %d", after.Emotions, len(models.Emotions))
	}
	if after.Items != len(cat.Items) {
		t.Errorf("Items = %d, want %d", after.Items, len(cat.Items))
	}
}

func TestLoadCatalog_SeedUsers(t *testing.T) {
	s := NewInMemoryAffinityStore()
	ctx := context.Background()
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}
	if _, err := LoadCatalog(ctx, s, cat); err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	u, err := s.GetUser(ctx, "seed_relaxed")
	if err != nil || u == nil {
		t.Fatalf("GetUser(seed_relaxed) = %v, %v", u, err)
	}
	if u.Status != constants.UserStatusSeed {
		t.Errorf("Status = %q, want seed", u.Status)
	}

	state, err := s.FindEmotionalState(ctx, "seed_adventurer")
	if err != nil || state == nil {
		t.Fatalf("FindEmotionalState(seed_adventurer) = %v, %v", state, err)
	}
	if state.Emotion != models.EmotionChallenging || state.Provenance != models.SourceTypeSeed {
		t.Errorf("state = %+v, want challenging from seed", state)
	}

	items, err := s.TopItemsForEmotion(ctx, models.EmotionChallenging, 3, "difficult")
	if err != nil {
		t.Fatalf("TopItemsForEmotion() error = %v", err)
	}
	for _, it := range items {
		if it.Item.HasAny([]string{"difficult"}) {
			t.Errorf("dealbreaker item %s returned", it.Item.ID)
		}
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := "items:\n  - id: tetris\n    name: Tetris\n    resonances: {relaxing: 0.5, challenging: 0.5}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cat, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	s := NewInMemoryAffinityStore()
	res, err := LoadCatalog(context.Background(), s, cat)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if res.Items != 1 || res.Resonances != 2 || res.SeedUsers != 0 {
		t.Errorf("LoadCatalog() = %+v", res)
	}

	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadCatalogFile() on missing file succeeded")
	}
}
