// Package similarity links users who like the same items, and bootstraps
// cold-start users onto seed users so social recommendations stay available.
package similarity

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/metrics"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/store"
)

// Policy holds the tunable similarity constants.
type Policy struct {
	// MinShared is the minimum number of commonly liked items (T).
	MinShared int
	// Scale converts a shared count into a similarity score (C).
	Scale float64
	// SeedSimilarity is the fixed score of a bootstrap edge.
	SeedSimilarity float64
	// SeedAdmission is the probability of linking each candidate seed (p).
	SeedAdmission float64
	// SeedUsers is the bootstrap pool.
	SeedUsers []string
	// RandSeed seeds the admission filter. Zero means time based.
	RandSeed int64
}

// DefaultPolicy returns the documented default policy.
func DefaultPolicy() Policy {
	return Policy{
		MinShared:      constants.DefaultMinSharedItems,
		Scale:          constants.DefaultSimilarityScale,
		SeedSimilarity: constants.DefaultSeedSimilarity,
		SeedAdmission:  constants.DefaultSeedAdmission,
		SeedUsers:      append([]string(nil), constants.DefaultSeedUsers...),
	}
}

// Validate checks that policy values are usable.
func (p Policy) Validate() error {
	if p.MinShared < 1 {
		return fmt.Errorf("%w: min_shared must be >= 1, got %d", models.ErrValidation, p.MinShared)
	}
	if p.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %f", models.ErrValidation, p.Scale)
	}
	if p.SeedSimilarity < 0 || p.SeedSimilarity > 1 {
		return fmt.Errorf("%w: seed_similarity must be in [0, 1], got %f", models.ErrValidation, p.SeedSimilarity)
	}
	if p.SeedAdmission < 0 || p.SeedAdmission > 1 {
		return fmt.Errorf("%w: seed_admission must be in [0, 1], got %f", models.ErrValidation, p.SeedAdmission)
	}
	return nil
}

// Score returns the similarity for sharedCount common likes.
func (p Policy) Score(sharedCount int) float64 {
	return float64(sharedCount) * p.Scale
}

// Result reports the edges written by one recomputation.
type Result struct {
	Natural int                 `json:"natural"`
	Seeded  int                 `json:"seeded"`
	Edges   []models.Similarity `json:"edges,omitempty"`
}

// Engine recomputes SimilarTo edges for a user.
type Engine struct {
	store     store.AffinityStore
	policy    Policy
	logger    *slog.Logger
	decisions *logging.DecisionLogger

	mu      sync.Mutex // guards rng
	rng     *rand.Rand
	nowFunc func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDecisionLogger sets the decision trace logger.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(e *Engine) { e.decisions = dl }
}

// WithRand replaces the admission filter's random source.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine creates a similarity engine over s.
func NewEngine(s store.AffinityStore, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		policy:  policy,
		logger:  logging.Discard(),
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := policy.RandSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	return e
}

// Policy returns the engine's policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Recompute upserts natural similarity edges for userID from shared likes.
// When none qualify, it links the user to admitted seed users instead.
// triggerItems are recorded as the shared items of seed edges.
//
// Store errors are returned as is; edges written before the failure stay.
func (e *Engine) Recompute(ctx context.Context, userID string, triggerItems ...string) (Result, error) {
	var result Result
	if userID == "" {
		return result, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	pairs, err := e.store.UsersWithSharedLikedItems(ctx, userID, e.policy.MinShared)
	if err != nil {
		return result, fmt.Errorf("finding users with shared likes: %w", err)
	}

	now := e.nowFunc()
	for _, pair := range pairs {
		shared := pair.SharedItemIDs
		if len(shared) > constants.MaxSharedItemSample {
			shared = shared[:constants.MaxSharedItemSample]
		}
		sim := models.Similarity{
			UserID:        userID,
			OtherID:       pair.OtherID,
			Score:         e.policy.Score(pair.SharedCount),
			SharedCount:   pair.SharedCount,
			SharedItemIDs: shared,
			Provenance:    models.SourceTypeNatural,
			UpdatedAt:     now,
		}
		if err := e.store.UpsertSimilarity(ctx, sim); err != nil {
			e.record(userID, result)
			return result, fmt.Errorf("upserting similarity %s->%s: %w", userID, pair.OtherID, err)
		}
		result.Natural++
		result.Edges = append(result.Edges, sim)
	}

	if result.Natural == 0 {
		if err := e.bootstrap(ctx, userID, triggerItems, &result); err != nil {
			e.record(userID, result)
			return result, err
		}
	}

	e.record(userID, result)
	return result, nil
}

// bootstrap links userID to admitted seed users it is not yet linked to.
func (e *Engine) bootstrap(ctx context.Context, userID string, triggerItems []string, result *Result) error {
	existing, err := e.store.SimilarUsers(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing similar users: %w", err)
	}
	linked := make(map[string]bool, len(existing))
	for _, sim := range existing {
		linked[sim.OtherID] = true
	}

	shared := append([]string(nil), triggerItems...)
	if len(shared) > constants.MaxSharedItemSample {
		shared = shared[:constants.MaxSharedItemSample]
	}
	now := e.nowFunc()

	for _, seedID := range e.policy.SeedUsers {
		if seedID == userID || linked[seedID] {
			continue
		}
		seed, err := e.store.GetUser(ctx, seedID)
		if err != nil {
			return fmt.Errorf("looking up seed user %s: %w", seedID, err)
		}
		if seed == nil {
			e.logger.Debug("seed user missing from store", "seed", seedID)
			continue
		}
		if !e.admit() {
			continue
		}

		sim := models.Similarity{
			UserID:        userID,
			OtherID:       seedID,
			Score:         e.policy.SeedSimilarity,
			SharedCount:   1,
			SharedItemIDs: shared,
			Provenance:    models.SourceTypeSeed,
			UpdatedAt:     now,
		}
		if err := e.store.UpsertSimilarity(ctx, sim); err != nil {
			return fmt.Errorf("upserting seed similarity %s->%s: %w", userID, seedID, err)
		}
		result.Seeded++
		result.Edges = append(result.Edges, sim)
	}
	return nil
}

// admit draws from the admission filter.
func (e *Engine) admit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64() < e.policy.SeedAdmission
}

func (e *Engine) record(userID string, result Result) {
	metrics.RecordSimilarityEdges(string(models.SourceTypeNatural), result.Natural)
	metrics.RecordSimilarityEdges(string(models.SourceTypeSeed), result.Seeded)

	e.logger.Debug("similarity recomputed", "user", userID, "natural", result.Natural, "seeded", result.Seeded)
	e.decisions.Log(map[string]any{
		"event":   "similarity_recompute",
		"user":    userID,
		"natural": result.Natural,
		"seeded":  result.Seeded,
	})
}
