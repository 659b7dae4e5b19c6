package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
)

type playKey struct {
	user string
	item string
}

type pairKey struct {
	user  string
	other string
}

// InMemoryAffinityStore implements AffinityStore for testing and development.
type InMemoryAffinityStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	items         map[string]models.Item
	emotions      map[models.Emotion]string
	itemResonance map[string]map[models.Emotion]float64
	states        map[string]models.EmotionalState
	resonances    map[string]map[models.Emotion]float64
	plays         map[playKey]models.Play
	similarities  map[pairKey]models.Similarity
	nowFunc       func() time.Time
}

// NewInMemoryAffinityStore creates a new in-memory store.
func NewInMemoryAffinityStore() *InMemoryAffinityStore {
	return &InMemoryAffinityStore{
		users:         make(map[string]models.User),
		items:         make(map[string]models.Item),
		emotions:      make(map[models.Emotion]string),
		itemResonance: make(map[string]map[models.Emotion]float64),
		states:        make(map[string]models.EmotionalState),
		resonances:    make(map[string]map[models.Emotion]float64),
		plays:         make(map[playKey]models.Play),
		similarities:  make(map[pairKey]models.Similarity),
		nowFunc:       time.Now,
	}
}

// EnsureUser creates the user if missing and touches its last activity.
func (s *InMemoryAffinityStore) EnsureUser(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	u, exists := s.users[id]
	if !exists {
		u = models.User{ID: id, Status: constants.UserStatusActive, RegisteredAt: now}
	}
	u.LastActivityAt = now
	s.users[id] = u
	return !exists, nil
}

// SaveUser merges the non-empty fields of user into the stored user.
func (s *InMemoryAffinityStore) SaveUser(ctx context.Context, user models.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	u, exists := s.users[user.ID]
	if !exists {
		u = models.User{ID: user.ID, Status: constants.UserStatusActive, RegisteredAt: now}
	}
	if user.DominantEmotion != "" {
		u.DominantEmotion = user.DominantEmotion
	}
	if user.TimePreference != "" {
		u.TimePreference = user.TimePreference
	}
	if user.Status != "" {
		u.Status = user.Status
	}
	u.LastActivityAt = now
	s.users[user.ID] = u
	return nil
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (s *InMemoryAffinityStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.users[id]
	if !exists {
		return nil, nil
	}
	return &u, nil
}

// EnsureItem creates a placeholder item if missing.
func (s *InMemoryAffinityStore) EnsureItem(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return false, nil
	}
	s.items[id] = models.Item{ID: id, Name: id, Description: constants.PlaceholderItemDescription}
	return true, nil
}

// SaveItem creates or replaces an item.
func (s *InMemoryAffinityStore) SaveItem(ctx context.Context, item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.Characteristics = append([]string(nil), item.Characteristics...)
	s.items[item.ID] = item
	return nil
}

// GetItem retrieves an item by ID. Returns nil if not found.
func (s *InMemoryAffinityStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, nil
	}
	return &item, nil
}

// SaveEmotion upserts an emotion node.
func (s *InMemoryAffinityStore) SaveEmotion(ctx context.Context, emotion models.Emotion, description string) error {
	if !emotion.Valid() {
		return fmt.Errorf("%w: unknown emotion %q", models.ErrValidation, emotion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.emotions[emotion] = description
	return nil
}

// SetItemResonance upserts the resonance of an item with an emotion.
func (s *InMemoryAffinityStore) SetItemResonance(ctx context.Context, itemID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[itemID]; !exists {
		return fmt.Errorf("%w: item %s", models.ErrNotFound, itemID)
	}
	if s.itemResonance[itemID] == nil {
		s.itemResonance[itemID] = make(map[models.Emotion]float64)
	}
	s.itemResonance[itemID][emotion] = intensity
	return nil
}

// TopItemEmotion returns the item's highest intensity emotion.
func (s *InMemoryAffinityStore) TopItemEmotion(ctx context.Context, itemID string) (models.Emotion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best models.Emotion
	bestIntensity := -1.0
	for _, e := range models.Emotions {
		intensity, ok := s.itemResonance[itemID][e]
		if ok && intensity > bestIntensity {
			best, bestIntensity = e, intensity
		}
	}
	return best, bestIntensity >= 0, nil
}

// SetEmotionalState replaces the user's emotional state.
func (s *InMemoryAffinityStore) SetEmotionalState(ctx context.Context, userID string, state models.EmotionalState) error {
	if err := validateIntensity(state.Emotion, state.Intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = s.nowFunc()
	}
	s.states[userID] = state
	return nil
}

// FindEmotionalState returns the user's emotional state, or nil.
func (s *InMemoryAffinityStore) FindEmotionalState(ctx context.Context, userID string) (*models.EmotionalState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[userID]
	if !exists {
		return nil, nil
	}
	return &state, nil
}

// UpsertResonance upserts a user resonance edge.
func (s *InMemoryAffinityStore) UpsertResonance(ctx context.Context, userID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	if s.resonances[userID] == nil {
		s.resonances[userID] = make(map[models.Emotion]float64)
	}
	s.resonances[userID][emotion] = intensity
	return nil
}

// UserResonances returns the user's resonance edges, strongest first.
func (s *InMemoryAffinityStore) UserResonances(ctx context.Context, userID string) ([]models.Resonance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Resonance, 0, len(s.resonances[userID]))
	for e, intensity := range s.resonances[userID] {
		results = append(results, models.Resonance{Emotion: e, Intensity: intensity})
	}
	sortResonances(results)
	return results, nil
}

// Characteristics returns the distinct item characteristics, sorted.
func (s *InMemoryAffinityStore) Characteristics(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	results := make([]string, 0)
	for _, item := range s.items {
		for _, ch := range item.Characteristics {
			if !seen[ch] {
				seen[ch] = true
				results = append(results, ch)
			}
		}
	}
	sort.Strings(results)
	return results, nil
}

// UpsertPlayed upserts a play edge. Last write wins.
func (s *InMemoryAffinityStore) UpsertPlayed(ctx context.Context, play models.Play) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[play.UserID]; !exists {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, play.UserID)
	}
	if _, exists := s.items[play.ItemID]; !exists {
		return fmt.Errorf("%w: item %s", models.ErrNotFound, play.ItemID)
	}

	play.Weight = models.PlayWeight(play.Liked)
	if play.PlayedAt.IsZero() {
		play.PlayedAt = s.nowFunc()
	}
	s.plays[playKey{user: play.UserID, item: play.ItemID}] = play
	return nil
}

// UpsertSimilarity upserts a similarity edge.
func (s *InMemoryAffinityStore) UpsertSimilarity(ctx context.Context, sim models.Similarity) error {
	if sim.UserID == sim.OtherID {
		return fmt.Errorf("%w: self similarity for %s", models.ErrValidation, sim.UserID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range []string{sim.UserID, sim.OtherID} {
		if _, exists := s.users[id]; !exists {
			return fmt.Errorf("%w: user %s", models.ErrNotFound, id)
		}
	}
	if sim.UpdatedAt.IsZero() {
		sim.UpdatedAt = s.nowFunc()
	}
	sim.SharedItemIDs = append([]string(nil), sim.SharedItemIDs...)
	s.similarities[pairKey{user: sim.UserID, other: sim.OtherID}] = sim
	return nil
}

// SimilarUsers returns the outgoing similarity edges of a user, best first.
func (s *InMemoryAffinityStore) SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.Similarity, 0)
	for key, sim := range s.similarities {
		if key.user == userID {
			results = append(results, sim)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].OtherID < results[j].OtherID
	})
	return results, nil
}

// TopItemsForEmotion ranks items by resonance with emotion.
func (s *InMemoryAffinityStore) TopItemsForEmotion(ctx context.Context, emotion models.Emotion, k int, exclude ...string) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.topItemsForEmotionUnlocked(emotion, k, exclude), nil
}

func (s *InMemoryAffinityStore) topItemsForEmotionUnlocked(emotion models.Emotion, k int, exclude []string) []models.ScoredItem {
	results := make([]models.ScoredItem, 0)
	for itemID, byEmotion := range s.itemResonance {
		intensity, ok := byEmotion[emotion]
		if !ok {
			continue
		}
		item, exists := s.items[itemID]
		if !exists || item.HasAny(exclude) {
			continue
		}
		results = append(results, models.ScoredItem{Item: item, Score: intensity})
	}
	return rankScored(results, k)
}

// TopItemsResonatingWithUserState ranks items resonating with the user's state emotion.
func (s *InMemoryAffinityStore) TopItemsResonatingWithUserState(ctx context.Context, userID string, k int, exclude ...string) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[userID]
	if !exists {
		return []models.ScoredItem{}, nil
	}
	return s.topItemsForEmotionUnlocked(state.Emotion, k, exclude), nil
}

// ItemsLikedBySimilarUsers ranks items by how many similar users liked them.
func (s *InMemoryAffinityStore) ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	similar := make(map[string]bool)
	for key := range s.similarities {
		if key.user == userID {
			similar[key.other] = true
		}
	}

	counts := make(map[string]int)
	for key, play := range s.plays {
		if !play.Liked || !similar[key.user] {
			continue
		}
		if _, played := s.plays[playKey{user: userID, item: key.item}]; played {
			continue
		}
		counts[key.item]++
	}

	results := make([]models.ScoredItem, 0, len(counts))
	for itemID, n := range counts {
		item, exists := s.items[itemID]
		if !exists {
			continue
		}
		results = append(results, models.ScoredItem{Item: item, Score: float64(n)})
	}
	return rankScored(results, k), nil
}

// UsersWithSharedLikedItems returns users sharing at least minShared likes with userID.
func (s *InMemoryAffinityStore) UsersWithSharedLikedItems(ctx context.Context, userID string, minShared int) ([]models.SharedLikes, error) {
	if minShared < 1 {
		minShared = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	liked := make(map[string]bool)
	for key, play := range s.plays {
		if key.user == userID && play.Liked {
			liked[key.item] = true
		}
	}

	shared := make(map[string][]string)
	for key, play := range s.plays {
		if key.user == userID || !play.Liked || !liked[key.item] {
			continue
		}
		shared[key.user] = append(shared[key.user], key.item)
	}

	results := make([]models.SharedLikes, 0)
	for other, itemIDs := range shared {
		if len(itemIDs) < minShared {
			continue
		}
		sort.Strings(itemIDs)
		results = append(results, models.SharedLikes{
			UserID:        userID,
			OtherID:       other,
			SharedCount:   len(itemIDs),
			SharedItemIDs: itemIDs,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].OtherID < results[j].OtherID
	})
	return results, nil
}

// Stats returns node and edge counts.
func (s *InMemoryAffinityStore) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.Stats{
		Users:           len(s.users),
		Items:           len(s.items),
		Emotions:        len(s.emotions),
		EmotionalStates: len(s.states),
		Plays:           len(s.plays),
		Similarities:    len(s.similarities),
	}
	for _, byEmotion := range s.itemResonance {
		stats.ItemResonances += len(byEmotion)
	}
	for _, byEmotion := range s.resonances {
		stats.UserResonances += len(byEmotion)
	}
	return stats, nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryAffinityStore) Close() error {
	return nil
}

// validateIntensity checks an emotion edge before it is written.
func validateIntensity(emotion models.Emotion, intensity float64) error {
	if !emotion.Valid() {
		return fmt.Errorf("%w: unknown emotion %q", models.ErrValidation, emotion)
	}
	if intensity < 0 || intensity > 1 {
		return fmt.Errorf("%w: intensity must be in [0, 1], got %f", models.ErrValidation, intensity)
	}
	return nil
}

// rankScored sorts by score descending, item id ascending, and keeps the first k.
// A non-positive k keeps everything.
func rankScored(items []models.ScoredItem, k int) []models.ScoredItem {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Item.ID < items[j].Item.ID
	})
	if k > 0 && len(items) > k {
		items = items[:k]
	}
	return items
}
