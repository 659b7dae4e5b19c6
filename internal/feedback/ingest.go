// Package feedback records what users thought of the games they played and
// keeps the affinity graph consistent afterwards.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/metrics"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/sanitize"
	"github.com/gamesoul/gamesoul/internal/similarity"
	"github.com/gamesoul/gamesoul/internal/store"
)

// Submission is one piece of feedback.
type Submission struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
	Liked  bool   `json:"liked"`
	Rating *int   `json:"rating,omitempty"`
}

// Result reports the side effects of a submission.
type Result struct {
	UserID        string            `json:"user_id"`
	ItemID        string            `json:"item_id"`
	UserCreated   bool              `json:"user_created"`
	ItemCreated   bool              `json:"item_created"`
	StateAssigned *models.Emotion   `json:"state_assigned,omitempty"`
	Similarity    similarity.Result `json:"similarity"`
}

// Ingestor applies feedback to the store.
type Ingestor struct {
	store      store.AffinityStore
	similarity *similarity.Engine
	logger     *slog.Logger
	nowFunc    func() time.Time
}

// NewIngestor creates an ingestor. sim recomputes similarity after each play.
func NewIngestor(s store.AffinityStore, sim *similarity.Engine, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Ingestor{
		store:      s,
		similarity: sim,
		logger:     logger,
		nowFunc:    time.Now,
	}
}

// Validate sanitizes ids and checks the rating range.
func (sub Submission) Validate() (Submission, error) {
	userID, err := sanitize.ValidateID("user", sub.UserID)
	if err != nil {
		return sub, err
	}
	itemID, err := sanitize.ValidateID("item", sub.ItemID)
	if err != nil {
		return sub, err
	}
	if sub.Rating != nil && (*sub.Rating < constants.MinRating || *sub.Rating > constants.MaxRating) {
		return sub, fmt.Errorf("%w: rating must be between %d and %d, got %d",
			models.ErrValidation, constants.MinRating, constants.MaxRating, *sub.Rating)
	}
	sub.UserID = userID
	sub.ItemID = itemID
	return sub, nil
}

// Submit records the play, gives a user without an emotional state one
// derived from the item, and recomputes the user's similarity.
//
// Steps run in order and are not rolled back; the first failure is returned
// together with the side effects already applied.
func (in *Ingestor) Submit(ctx context.Context, sub Submission) (Result, error) {
	sub, err := sub.Validate()
	if err != nil {
		return Result{}, err
	}
	result := Result{UserID: sub.UserID, ItemID: sub.ItemID}

	result.UserCreated, err = in.store.EnsureUser(ctx, sub.UserID)
	if err != nil {
		return result, fmt.Errorf("ensuring user %s: %w", sub.UserID, err)
	}
	result.ItemCreated, err = in.store.EnsureItem(ctx, sub.ItemID)
	if err != nil {
		return result, fmt.Errorf("ensuring item %s: %w", sub.ItemID, err)
	}
	if result.ItemCreated {
		in.logger.Info("created placeholder item", "item", sub.ItemID)
	}

	play := models.Play{
		UserID:   sub.UserID,
		ItemID:   sub.ItemID,
		Liked:    sub.Liked,
		Rating:   sub.Rating,
		Weight:   models.PlayWeight(sub.Liked),
		PlayedAt: in.nowFunc(),
	}
	if err := in.store.UpsertPlayed(ctx, play); err != nil {
		return result, fmt.Errorf("recording play: %w", err)
	}
	metrics.RecordFeedback(sub.Liked)

	assigned, err := in.ensureEmotionalState(ctx, sub.UserID, sub.ItemID)
	if err != nil {
		return result, err
	}
	result.StateAssigned = assigned

	if in.similarity != nil {
		result.Similarity, err = in.similarity.Recompute(ctx, sub.UserID, sub.ItemID)
		if err != nil {
			return result, fmt.Errorf("recomputing similarity: %w", err)
		}
	}

	in.logger.Debug("feedback recorded",
		"user", sub.UserID, "item", sub.ItemID, "liked", sub.Liked,
		"natural", result.Similarity.Natural, "seeded", result.Similarity.Seeded)
	return result, nil
}

// ensureEmotionalState derives a state from the item when the user has none.
// Returns the assigned emotion, or nil when the user already had a state.
func (in *Ingestor) ensureEmotionalState(ctx context.Context, userID, itemID string) (*models.Emotion, error) {
	state, err := in.store.FindEmotionalState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("finding emotional state: %w", err)
	}
	if state != nil {
		return nil, nil
	}

	emotion, ok, err := in.store.TopItemEmotion(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("finding item emotion: %w", err)
	}
	if !ok {
		emotion = models.Emotion(constants.AutoStateEmotion)
	}

	newState := models.EmotionalState{
		Emotion:    emotion,
		Intensity:  constants.AutoStateIntensity,
		Provenance: models.SourceTypeAutoGenerated,
		UpdatedAt:  in.nowFunc(),
	}
	if err := in.store.SetEmotionalState(ctx, userID, newState); err != nil {
		return nil, fmt.Errorf("assigning emotional state: %w", err)
	}
	in.logger.Info("assigned emotional state from feedback", "user", userID, "emotion", emotion)
	return &emotion, nil
}
