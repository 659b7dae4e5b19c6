package store

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gamesoul/gamesoul/internal/models"
)

// BreakerConfig configures the circuit breaker around a store.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32

	// OnStateChange is called with the breaker name and state names.
	OnStateChange func(name, from, to string)
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "affinity-store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerStore wraps an AffinityStore with a circuit breaker. Only store
// failures count against the breaker; validation and not-found errors pass through.
type BreakerStore struct {
	inner AffinityStore
	cb    *gobreaker.CircuitBreaker[interface{}]
}

// NewBreakerStore wraps inner with a circuit breaker.
func NewBreakerStore(inner AffinityStore, cfg BreakerConfig) *BreakerStore {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, models.ErrStore)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
			}
		},
	}
	return &BreakerStore{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// State returns the breaker state name for monitoring.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}

// Unwrap returns the wrapped store.
func (b *BreakerStore) Unwrap() AffinityStore {
	return b.inner
}

// guard runs fn through the breaker. An open breaker fails fast with a store error.
func guard[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, models.NewStoreError(op, err)
		}
		if res != nil {
			return res.(T), err
		}
		return zero, err
	}
	return res.(T), nil
}

// guardErr runs an error-only fn through the breaker.
func guardErr(b *BreakerStore, op string, fn func() error) error {
	_, err := guard(b, op, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (b *BreakerStore) EnsureUser(ctx context.Context, id string) (bool, error) {
	return guard(b, "ensure user", func() (bool, error) { return b.inner.EnsureUser(ctx, id) })
}

func (b *BreakerStore) SaveUser(ctx context.Context, user models.User) error {
	return guardErr(b, "save user", func() error { return b.inner.SaveUser(ctx, user) })
}

func (b *BreakerStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return guard(b, "get user", func() (*models.User, error) { return b.inner.GetUser(ctx, id) })
}

func (b *BreakerStore) EnsureItem(ctx context.Context, id string) (bool, error) {
	return guard(b, "ensure item", func() (bool, error) { return b.inner.EnsureItem(ctx, id) })
}

func (b *BreakerStore) SaveItem(ctx context.Context, item models.Item) error {
	return guardErr(b, "save item", func() error { return b.inner.SaveItem(ctx, item) })
}

func (b *BreakerStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	return guard(b, "get item", func() (*models.Item, error) { return b.inner.GetItem(ctx, id) })
}

func (b *BreakerStore) SaveEmotion(ctx context.Context, emotion models.Emotion, description string) error {
	return guardErr(b, "save emotion", func() error { return b.inner.SaveEmotion(ctx, emotion, description) })
}

func (b *BreakerStore) SetItemResonance(ctx context.Context, itemID string, emotion models.Emotion, intensity float64) error {
	return guardErr(b, "set item resonance", func() error {
		return b.inner.SetItemResonance(ctx, itemID, emotion, intensity)
	})
}

func (b *BreakerStore) TopItemEmotion(ctx context.Context, itemID string) (models.Emotion, bool, error) {
	type top struct {
		emotion models.Emotion
		ok      bool
	}
	res, err := guard(b, "top item emotion", func() (top, error) {
		e, ok, err := b.inner.TopItemEmotion(ctx, itemID)
		return top{emotion: e, ok: ok}, err
	})
	return res.emotion, res.ok, err
}

func (b *BreakerStore) SetEmotionalState(ctx context.Context, userID string, state models.EmotionalState) error {
	return guardErr(b, "set emotional state", func() error { return b.inner.SetEmotionalState(ctx, userID, state) })
}

func (b *BreakerStore) FindEmotionalState(ctx context.Context, userID string) (*models.EmotionalState, error) {
	return guard(b, "find emotional state", func() (*models.EmotionalState, error) {
		return b.inner.FindEmotionalState(ctx, userID)
	})
}

func (b *BreakerStore) UpsertResonance(ctx context.Context, userID string, emotion models.Emotion, intensity float64) error {
	return guardErr(b, "upsert resonance", func() error {
		return b.inner.UpsertResonance(ctx, userID, emotion, intensity)
	})
}

func (b *BreakerStore) UserResonances(ctx context.Context, userID string) ([]models.Resonance, error) {
	return guard(b, "user resonances", func() ([]models.Resonance, error) { return b.inner.UserResonances(ctx, userID) })
}

func (b *BreakerStore) Characteristics(ctx context.Context) ([]string, error) {
	return guard(b, "characteristics", func() ([]string, error) { return b.inner.Characteristics(ctx) })
}

func (b *BreakerStore) UpsertPlayed(ctx context.Context, play models.Play) error {
	return guardErr(b, "upsert played", func() error { return b.inner.UpsertPlayed(ctx, play) })
}

func (b *BreakerStore) UpsertSimilarity(ctx context.Context, sim models.Similarity) error {
	return guardErr(b, "upsert similarity", func() error { return b.inner.UpsertSimilarity(ctx, sim) })
}

func (b *BreakerStore) SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error) {
	return guard(b, "similar users", func() ([]models.Similarity, error) { return b.inner.SimilarUsers(ctx, userID) })
}

func (b *BreakerStore) TopItemsForEmotion(ctx context.Context, emotion models.Emotion, k int, exclude ...string) ([]models.ScoredItem, error) {
	return guard(b, "top items for emotion", func() ([]models.ScoredItem, error) {
		return b.inner.TopItemsForEmotion(ctx, emotion, k, exclude...)
	})
}

func (b *BreakerStore) TopItemsResonatingWithUserState(ctx context.Context, userID string, k int, exclude ...string) ([]models.ScoredItem, error) {
	return guard(b, "top items for user state", func() ([]models.ScoredItem, error) {
		return b.inner.TopItemsResonatingWithUserState(ctx, userID, k, exclude...)
	})
}

func (b *BreakerStore) ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error) {
	return guard(b, "items liked by similar users", func() ([]models.ScoredItem, error) {
		return b.inner.ItemsLikedBySimilarUsers(ctx, userID, k)
	})
}

func (b *BreakerStore) UsersWithSharedLikedItems(ctx context.Context, userID string, minShared int) ([]models.SharedLikes, error) {
	return guard(b, "users with shared likes", func() ([]models.SharedLikes, error) {
		return b.inner.UsersWithSharedLikedItems(ctx, userID, minShared)
	})
}

func (b *BreakerStore) Stats(ctx context.Context) (models.Stats, error) {
	return guard(b, "stats", func() (models.Stats, error) { return b.inner.Stats(ctx) })
}

// Close closes the wrapped store without going through the breaker.
func (b *BreakerStore) Close() error {
	return b.inner.Close()
}
