package feedback

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/similarity"
	"github.com/gamesoul/gamesoul/internal/store"
)

func newIngestor(t *testing.T, s store.AffinityStore, admission float64) *Ingestor {
	t.Helper()
	policy := similarity.DefaultPolicy()
	policy.SeedAdmission = admission
	sim := similarity.NewEngine(s, policy, similarity.WithRand(rand.New(rand.NewSource(1))))
	return NewIngestor(s, sim, nil)
}

func intPtr(v int) *int { return &v }

func TestSubmission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantErr bool
	}{
		{"valid", Submission{UserID: "u1", ItemID: "celeste", Liked: true}, false},
		{"valid rating", Submission{UserID: "u1", ItemID: "celeste", Rating: intPtr(5)}, false},
		{"missing user", Submission{ItemID: "celeste"}, true},
		{"missing item", Submission{UserID: "u1"}, true},
		{"blank item", Submission{UserID: "u1", ItemID: "  "}, true},
		{"rating too low", Submission{UserID: "u1", ItemID: "celeste", Rating: intPtr(0)}, true},
		{"rating too high", Submission{UserID: "u1", ItemID: "celeste", Rating: intPtr(6)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sub.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSubmit_CreatesPlaceholderItemAndDefaultState(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	in := newIngestor(t, s, 0)
	ctx := context.Background()

	res, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "unknown_game", Liked: true})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.UserCreated || !res.ItemCreated {
		t.Errorf("Submit() = %+v, want user and item created", res)
	}
	if res.StateAssigned == nil || *res.StateAssigned != models.Emotion(constants.AutoStateEmotion) {
		t.Fatalf("StateAssigned = %v, want %s", res.StateAssigned, constants.AutoStateEmotion)
	}

	item, err := s.GetItem(ctx, "unknown_game")
	if err != nil || item == nil {
		t.Fatalf("GetItem() = %v, %v", item, err)
	}
	if item.Name != "unknown_game" || item.Description != constants.PlaceholderItemDescription {
		t.Errorf("placeholder item = %+v", item)
	}

	state, err := s.FindEmotionalState(ctx, "u1")
	if err != nil || state == nil {
		t.Fatalf("FindEmotionalState() = %v, %v", state, err)
	}
	if state.Intensity != constants.AutoStateIntensity {
		t.Errorf("Intensity = %v, want %v", state.Intensity, constants.AutoStateIntensity)
	}
	if state.Provenance != models.SourceTypeAutoGenerated {
		t.Errorf("Provenance = %q, want auto-generated", state.Provenance)
	}
}

func TestSubmit_StateFromItemResonance(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	ctx := context.Background()
	if _, err := s.EnsureItem(ctx, "dark_souls"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetItemResonance(ctx, "dark_souls", models.EmotionChallenging, 0.95); err != nil {
		t.Fatal(err)
	}
	if err := s.SetItemResonance(ctx, "dark_souls", models.EmotionMelancholic, 0.6); err != nil {
		t.Fatal(err)
	}

	in := newIngestor(t, s, 0)
	res, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "dark_souls", Liked: false, Rating: intPtr(2)})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.ItemCreated {
		t.Error("ItemCreated = true for existing item")
	}
	if res.StateAssigned == nil || *res.StateAssigned != models.EmotionChallenging {
		t.Errorf("StateAssigned = %v, want challenging", res.StateAssigned)
	}
}

func TestSubmit_KeepsExistingState(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	ctx := context.Background()
	if _, err := s.EnsureUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	existing := models.EmotionalState{Emotion: models.EmotionCreative, Intensity: 0.5, Provenance: models.SourceTypeQuestionnaire}
	if err := s.SetEmotionalState(ctx, "u1", existing); err != nil {
		t.Fatal(err)
	}

	in := newIngestor(t, s, 0)
	res, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "minecraft", Liked: true})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.StateAssigned != nil {
		t.Errorf("StateAssigned = %v, want nil", *res.StateAssigned)
	}
	state, err := s.FindEmotionalState(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if state.Emotion != models.EmotionCreative || state.Provenance != models.SourceTypeQuestionnaire {
		t.Errorf("state = %+v, want unchanged questionnaire state", state)
	}
}

func TestSubmit_RecomputesSimilarity(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	in := newIngestor(t, s, 0)
	ctx := context.Background()

	if _, err := in.Submit(ctx, Submission{UserID: "u2", ItemID: "celeste", Liked: true}); err != nil {
		t.Fatal(err)
	}
	res, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "celeste", Liked: true})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Similarity.Natural != 1 {
		t.Fatalf("Similarity = %+v, want one natural edge", res.Similarity)
	}
	sims, err := s.SimilarUsers(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sims) != 1 || sims[0].OtherID != "u2" {
		t.Errorf("SimilarUsers() = %+v, want u2", sims)
	}
}

func TestSubmit_SeedBootstrapRecordsTriggerItem(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	ctx := context.Background()
	for _, seed := range constants.DefaultSeedUsers {
		if _, err := s.EnsureUser(ctx, seed); err != nil {
			t.Fatal(err)
		}
	}

	in := newIngestor(t, s, 1)
	res, err := in.Submit(ctx, Submission{UserID: "newcomer", ItemID: "gris", Liked: true})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Similarity.Seeded != len(constants.DefaultSeedUsers) {
		t.Fatalf("Seeded = %d, want %d", res.Similarity.Seeded, len(constants.DefaultSeedUsers))
	}
	for _, edge := range res.Similarity.Edges {
		if len(edge.SharedItemIDs) != 1 || edge.SharedItemIDs[0] != "gris" {
			t.Errorf("seed edge shared items = %v, want [gris]", edge.SharedItemIDs)
		}
	}
}

func TestSubmit_DislikeDoesNotLink(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	in := newIngestor(t, s, 0)
	ctx := context.Background()

	if _, err := in.Submit(ctx, Submission{UserID: "u2", ItemID: "rocket_league", Liked: true}); err != nil {
		t.Fatal(err)
	}
	res, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "rocket_league", Liked: false})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Similarity.Natural != 0 {
		t.Errorf("Natural = %d, want 0 for a dislike", res.Similarity.Natural)
	}
}

func TestSubmit_ValidationLeavesStoreUntouched(t *testing.T) {
	s := store.NewInMemoryAffinityStore()
	in := newIngestor(t, s, 0)
	ctx := context.Background()

	_, err := in.Submit(ctx, Submission{UserID: "u1", ItemID: "celeste", Rating: intPtr(9)})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Submit() error = %v, want ErrValidation", err)
	}
	user, err := s.GetUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Errorf("GetUser() = %+v, want nil after rejected feedback", user)
	}
}
