package recommend

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/store"
)

// fixture builds a small graph:
//
//	alice feels relaxing; relaxing items r1 (0.9) r2 (0.7) r3 (0.5, combat)
//	alice is similar to bob and carol; both liked s1, bob liked s2 and r1
func fixture(t *testing.T) *store.InMemoryAffinityStore {
	t.Helper()
	s := store.NewInMemoryAffinityStore()
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	items := []models.Item{
		{ID: "r1", Name: "Relax One"},
		{ID: "r2", Name: "Relax Two"},
		{ID: "r3", Name: "Relax Three", Characteristics: []string{"combat"}},
		{ID: "s1", Name: "Social One"},
		{ID: "s2", Name: "Social Two", Characteristics: []string{"combat"}},
	}
	for _, it := range items {
		must(s.SaveItem(ctx, it))
	}
	must(s.SetItemResonance(ctx, "r1", models.EmotionRelaxing, 0.9))
	must(s.SetItemResonance(ctx, "r2", models.EmotionRelaxing, 0.7))
	must(s.SetItemResonance(ctx, "r3", models.EmotionRelaxing, 0.5))
	must(s.SetItemResonance(ctx, "s1", models.EmotionSocial, 0.8))

	for _, u := range []string{"alice", "bob", "carol", "dave"} {
		_, err := s.EnsureUser(ctx, u)
		must(err)
	}
	must(s.SetEmotionalState(ctx, "alice", models.EmotionalState{Emotion: models.EmotionRelaxing, Intensity: 0.8}))
	for _, p := range []models.Play{
		{UserID: "bob", ItemID: "s1", Liked: true},
		{UserID: "bob", ItemID: "s2", Liked: true},
		{UserID: "bob", ItemID: "r1", Liked: true},
		{UserID: "carol", ItemID: "s1", Liked: true},
	} {
		must(s.UpsertPlayed(ctx, p))
	}
	must(s.UpsertSimilarity(ctx, models.Similarity{UserID: "alice", OtherID: "bob", Score: 0.2, Provenance: models.SourceTypeNatural}))
	must(s.UpsertSimilarity(ctx, models.Similarity{UserID: "alice", OtherID: "carol", Score: 0.4, Provenance: models.SourceTypeSeed}))
	return s
}

func ids(recs []models.Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ItemID)
	}
	return out
}

func TestEmotional(t *testing.T) {
	g := NewGenerator(fixture(t))
	ctx := context.Background()

	recs, err := g.Emotional(ctx, "alice")
	if err != nil {
		t.Fatalf("Emotional() error = %v", err)
	}
	if got := strings.Join(ids(recs), ","); got != "r1,r2,r3" {
		t.Errorf("Emotional() = %s, want r1,r2,r3", got)
	}
	if recs[0].Score != 0.9 || recs[0].Name != "Relax One" {
		t.Errorf("first = %+v", recs[0])
	}
	if len(recs[0].Reasons) != 1 || recs[0].Reasons[0] != "resonates with your emotion: relaxing" {
		t.Errorf("Reasons = %v", recs[0].Reasons)
	}

	recs, err = g.Emotional(ctx, "alice", "combat")
	if err != nil {
		t.Fatalf("Emotional() error = %v", err)
	}
	if got := strings.Join(ids(recs), ","); got != "r1,r2" {
		t.Errorf("Emotional() with dealbreaker = %s, want r1,r2", got)
	}
}

func TestEmotional_NoState(t *testing.T) {
	g := NewGenerator(fixture(t))

	recs, err := g.Emotional(context.Background(), "dave")
	if err != nil {
		t.Fatalf("Emotional() error = %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Emotional() = %#v, want empty list", recs)
	}
}

func TestByEmotion(t *testing.T) {
	g := NewGenerator(fixture(t))
	ctx := context.Background()

	recs, err := g.ByEmotion(ctx, models.EmotionSocial)
	if err != nil {
		t.Fatalf("ByEmotion() error = %v", err)
	}
	if len(recs) != 1 || recs[0].ItemID != "s1" {
		t.Fatalf("ByEmotion() = %v, want [s1]", ids(recs))
	}
	if recs[0].Reasons[0] != "good for when you feel: social" {
		t.Errorf("reason = %q", recs[0].Reasons[0])
	}

	recs, err = g.ByEmotion(ctx, models.Emotion("angry"))
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("ByEmotion(angry) error = %v, want ErrValidation", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("ByEmotion(angry) = %#v, want empty list", recs)
	}
}

func TestSocial(t *testing.T) {
	g := NewGenerator(fixture(t))
	ctx := context.Background()

	recs, err := g.Social(ctx, "alice")
	if err != nil {
		t.Fatalf("Social() error = %v", err)
	}
	// s1 liked by bob and carol; r1 and s2 by bob only.
	if got := strings.Join(ids(recs), ","); got != "s1,r1,s2" {
		t.Errorf("Social() = %s, want s1,r1,s2", got)
	}
	if math.Abs(recs[0].Score-0.4) > 1e-9 || math.Abs(recs[1].Score-0.2) > 1e-9 {
		t.Errorf("scores = %v, %v, want 0.4, 0.2", recs[0].Score, recs[1].Score)
	}
	if recs[0].Reasons[0] != "users like you also played this" {
		t.Errorf("reason = %q", recs[0].Reasons[0])
	}

	recs, err = g.Social(ctx, "alice", "combat")
	if err != nil {
		t.Fatalf("Social() error = %v", err)
	}
	if got := strings.Join(ids(recs), ","); got != "s1,r1" {
		t.Errorf("Social() with dealbreaker = %s, want s1,r1", got)
	}
}

func TestMixed(t *testing.T) {
	g := NewGenerator(fixture(t))

	recs, err := g.Mixed(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Mixed() error = %v", err)
	}
	if len(recs) > 5 {
		t.Errorf("len = %d, want <= 5", len(recs))
	}
	seen := make(map[string]bool)
	for i, r := range recs {
		if seen[r.ItemID] {
			t.Errorf("duplicate item %s", r.ItemID)
		}
		seen[r.ItemID] = true
		if i > 0 && r.Score > recs[i-1].Score {
			t.Errorf("not sorted at %d", i)
		}
	}
	// r1 appears in both lists; the emotional entry (0.9) outranks the social one (0.2).
	if recs[0].ItemID != "r1" || recs[0].Score != 0.9 {
		t.Errorf("first = %+v, want r1 at 0.9", recs[0])
	}
	if got := strings.Join(ids(recs), ","); got != "r1,r2,r3,s1,s2" {
		t.Errorf("Mixed() = %s, want r1,r2,r3,s1,s2", got)
	}
}

func TestWithLimit(t *testing.T) {
	g := NewGenerator(fixture(t), WithLimit(2))
	if g.Limit() != 2 {
		t.Fatalf("Limit() = %d, want 2", g.Limit())
	}

	recs, err := g.Mixed(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Mixed() error = %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("len = %d, want 2", len(recs))
	}
}

func TestValidation(t *testing.T) {
	g := NewGenerator(store.NewInMemoryAffinityStore())
	ctx := context.Background()

	calls := map[string]func() ([]models.Recommendation, error){
		"emotional": func() ([]models.Recommendation, error) { return g.Emotional(ctx, "") },
		"social":    func() ([]models.Recommendation, error) { return g.Social(ctx, "") },
		"mixed":     func() ([]models.Recommendation, error) { return g.Mixed(ctx, "") },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			recs, err := call()
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if recs == nil || len(recs) != 0 {
				t.Errorf("recs = %#v, want empty list", recs)
			}
		})
	}
}

// brokenSocialStore fails the social lookup with a store error.
type brokenSocialStore struct {
	*store.InMemoryAffinityStore
}

func (b brokenSocialStore) ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error) {
	return nil, models.NewStoreError("items liked by similar users", errors.New("timeout"))
}

func TestMixed_FailureYieldsEmpty(t *testing.T) {
	g := NewGenerator(brokenSocialStore{fixture(t)})

	recs, err := g.Mixed(context.Background(), "alice")
	if !errors.Is(err, models.ErrStore) {
		t.Errorf("Mixed() error = %v, want ErrStore", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Mixed() = %v, want empty list (never partial)", ids(recs))
	}
}

func TestStrategy_Valid(t *testing.T) {
	for _, s := range []Strategy{StrategyEmotional, StrategyByEmotion, StrategySocial, StrategyMixed} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Strategy("random").Valid() {
		t.Error("random should not be valid")
	}
}
