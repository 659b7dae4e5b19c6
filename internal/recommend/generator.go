// Package recommend produces ranked game recommendations from the affinity
// graph: by the user's emotional state, by an explicit emotion, from similar
// users, or a mix of emotional and social signals.
package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/ranking"
	"github.com/gamesoul/gamesoul/internal/store"
)

// Strategy names a recommendation entry point.
type Strategy string

const (
	StrategyEmotional Strategy = "emotional"
	StrategyByEmotion Strategy = "emotion"
	StrategySocial    Strategy = "social"
	StrategyMixed     Strategy = "mixed"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyEmotional, StrategyByEmotion, StrategySocial, StrategyMixed:
		return true
	}
	return false
}

// Generator builds recommendation lists. Every method returns an empty,
// non-nil list alongside any error; lists are never partial.
type Generator struct {
	store       store.AffinityStore
	limit       int
	socialScale float64
	logger      *slog.Logger
	decisions   *logging.DecisionLogger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLimit sets the maximum list length.
func WithLimit(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.limit = n
		}
	}
}

// WithSocialScale sets the score per similar user who liked an item.
func WithSocialScale(scale float64) Option {
	return func(g *Generator) {
		if scale > 0 {
			g.socialScale = scale
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithDecisionLogger sets the decision trace logger.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(g *Generator) { g.decisions = dl }
}

// NewGenerator creates a generator reading from s.
func NewGenerator(s store.AffinityStore, opts ...Option) *Generator {
	g := &Generator{
		store:       s,
		limit:       constants.RecommendationLimit,
		socialScale: constants.DefaultSimilarityScale,
		logger:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit returns the maximum list length.
func (g *Generator) Limit() int {
	return g.limit
}

// Emotional recommends items resonating with the user's current emotional
// state. A user without a state gets an empty list.
func (g *Generator) Emotional(ctx context.Context, userID string, dealbreakers ...string) ([]models.Recommendation, error) {
	if userID == "" {
		return empty(), fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	state, err := g.store.FindEmotionalState(ctx, userID)
	if err != nil {
		return empty(), fmt.Errorf("finding emotional state of %s: %w", userID, err)
	}
	if state == nil {
		g.trace(StrategyEmotional, userID, 0, 0)
		return empty(), nil
	}

	items, err := g.store.TopItemsResonatingWithUserState(ctx, userID, g.limit, dealbreakers...)
	if err != nil {
		return empty(), fmt.Errorf("ranking items for %s: %w", userID, err)
	}

	reason := fmt.Sprintf(constants.ReasonEmotionalState, state.Emotion)
	recs := toRecommendations(items, 1, reason)
	g.trace(StrategyEmotional, userID, len(items), len(recs))
	return recs, nil
}

// ByEmotion recommends the items resonating most with emotion.
func (g *Generator) ByEmotion(ctx context.Context, emotion models.Emotion, dealbreakers ...string) ([]models.Recommendation, error) {
	if !emotion.Valid() {
		return empty(), fmt.Errorf("%w: unknown emotion %q", models.ErrValidation, emotion)
	}

	items, err := g.store.TopItemsForEmotion(ctx, emotion, g.limit, dealbreakers...)
	if err != nil {
		return empty(), fmt.Errorf("ranking items for emotion %s: %w", emotion, err)
	}

	reason := fmt.Sprintf(constants.ReasonByEmotion, emotion)
	recs := toRecommendations(items, 1, reason)
	g.trace(StrategyByEmotion, string(emotion), len(items), len(recs))
	return recs, nil
}

// Social recommends items liked by users similar to userID. The score is the
// number of similar users who liked the item times the social scale.
func (g *Generator) Social(ctx context.Context, userID string, dealbreakers ...string) ([]models.Recommendation, error) {
	if userID == "" {
		return empty(), fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	// Fetch everything when filtering so dealbreakers don't shrink the list.
	k := g.limit
	if len(dealbreakers) > 0 {
		k = 0
	}
	items, err := g.store.ItemsLikedBySimilarUsers(ctx, userID, k)
	if err != nil {
		return empty(), fmt.Errorf("finding items liked by users similar to %s: %w", userID, err)
	}

	kept := items[:0:0]
	for _, it := range items {
		if !it.Item.HasAny(dealbreakers) {
			kept = append(kept, it)
		}
	}
	if len(kept) > g.limit {
		kept = kept[:g.limit]
	}

	recs := toRecommendations(kept, g.socialScale, constants.ReasonSocial)
	g.trace(StrategySocial, userID, len(items), len(recs))
	return recs, nil
}

// Mixed merges the emotional and social lists, collapses duplicate items
// and keeps the best scored. If either lookup fails the result is empty.
func (g *Generator) Mixed(ctx context.Context, userID string, dealbreakers ...string) ([]models.Recommendation, error) {
	if userID == "" {
		return empty(), fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	var emotional, social []models.Recommendation
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		emotional, err = g.Emotional(egCtx, userID, dealbreakers...)
		return err
	})
	eg.Go(func() error {
		var err error
		social, err = g.Social(egCtx, userID, dealbreakers...)
		return err
	})
	if err := eg.Wait(); err != nil {
		return empty(), err
	}

	recs := ranking.Merge(g.limit, emotional, social)
	g.trace(StrategyMixed, userID, len(emotional)+len(social), len(recs))
	return recs, nil
}

func (g *Generator) trace(strategy Strategy, subject string, candidates, served int) {
	g.logger.Debug("recommendations built", "strategy", strategy, "subject", subject, "candidates", candidates, "served", served)
	g.decisions.Log(map[string]any{
		"event":      "recommend",
		"strategy":   string(strategy),
		"subject":    subject,
		"candidates": candidates,
		"served":     served,
	})
}

func toRecommendations(items []models.ScoredItem, scale float64, reason string) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(items))
	for _, it := range items {
		recs = append(recs, models.Recommendation{
			ItemID:      it.Item.ID,
			Name:        it.Item.Name,
			Description: it.Item.Description,
			Score:       it.Score * scale,
			Reasons:     []string{reason},
		})
	}
	return recs
}

func empty() []models.Recommendation {
	return []models.Recommendation{}
}
