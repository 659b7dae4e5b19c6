// Package store defines the AffinityStore interface for storing and querying
// the affinity graph of users, items and emotions.
package store

import (
	"context"
	"sort"

	"github.com/gamesoul/gamesoul/internal/models"
)

// AffinityStore is the graph store consumed by the recommendation core.
// Every write is an idempotent upsert keyed as documented per method.
// Ranking queries order by score descending, then item id ascending.
type AffinityStore interface {
	// EnsureUser creates the user if missing (status active, registration
	// time set) and touches its last activity. Reports whether it was created.
	EnsureUser(ctx context.Context, id string) (bool, error)
	// SaveUser merges the non-empty profile fields of user, creating it if needed.
	SaveUser(ctx context.Context, user models.User) error
	// GetUser returns nil when the user does not exist.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// EnsureItem creates a placeholder item if missing. Reports whether it was created.
	EnsureItem(ctx context.Context, id string) (bool, error)
	// SaveItem creates or replaces catalog data of an item.
	SaveItem(ctx context.Context, item models.Item) error
	// GetItem returns nil when the item does not exist.
	GetItem(ctx context.Context, id string) (*models.Item, error)

	// SaveEmotion upserts an emotion vocabulary node.
	SaveEmotion(ctx context.Context, emotion models.Emotion, description string) error
	// SetItemResonance upserts the curated item to emotion intensity.
	SetItemResonance(ctx context.Context, itemID string, emotion models.Emotion, intensity float64) error
	// TopItemEmotion returns the item's highest intensity emotion, if any.
	TopItemEmotion(ctx context.Context, itemID string) (models.Emotion, bool, error)

	// SetEmotionalState replaces the user's single emotional state edge.
	SetEmotionalState(ctx context.Context, userID string, state models.EmotionalState) error
	// FindEmotionalState returns nil when the user has no emotional state.
	FindEmotionalState(ctx context.Context, userID string) (*models.EmotionalState, error)
	// UpsertResonance upserts a user resonance edge keyed by (user, emotion).
	UpsertResonance(ctx context.Context, userID string, emotion models.Emotion, intensity float64) error
	// UserResonances returns the user's resonance edges, strongest first with
	// ties in canonical emotion order. Unknown users have none.
	UserResonances(ctx context.Context, userID string) ([]models.Resonance, error)

	// UpsertPlayed upserts a play edge keyed by (user, item). Weight is derived from Liked.
	UpsertPlayed(ctx context.Context, play models.Play) error
	// UpsertSimilarity upserts a similarity edge keyed by (user, other).
	UpsertSimilarity(ctx context.Context, sim models.Similarity) error
	// SimilarUsers returns the outgoing similarity edges of a user.
	SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error)

	// Characteristics returns the distinct item characteristics, sorted.
	Characteristics(ctx context.Context) ([]string, error)

	// TopItemsForEmotion ranks items by their resonance with emotion, skipping
	// items carrying any excluded characteristic.
	TopItemsForEmotion(ctx context.Context, emotion models.Emotion, k int, exclude ...string) ([]models.ScoredItem, error)
	// TopItemsResonatingWithUserState joins the user's emotional state with item resonance.
	TopItemsResonatingWithUserState(ctx context.Context, userID string, k int, exclude ...string) ([]models.ScoredItem, error)
	// ItemsLikedBySimilarUsers ranks items liked by users the given user is
	// similar to, by count of distinct such users, excluding items the user played.
	ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error)
	// UsersWithSharedLikedItems returns the users sharing at least minShared
	// liked items with userID.
	UsersWithSharedLikedItems(ctx context.Context, userID string, minShared int) ([]models.SharedLikes, error)

	// Stats returns node and edge counts.
	Stats(ctx context.Context) (models.Stats, error)

	Close() error
}

// sortResonances orders resonances strongest first, ties in canonical order.
func sortResonances(rs []models.Resonance) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Intensity != rs[j].Intensity {
			return rs[i].Intensity > rs[j].Intensity
		}
		return rs[i].Emotion.Rank() < rs[j].Emotion.Rank()
	})
}
