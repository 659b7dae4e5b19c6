package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteAffinityStore implements AffinityStore using SQLite for persistence.
type SQLiteAffinityStore struct {
	mu      sync.RWMutex
	db      *sql.DB
	dbPath  string
	nowFunc func() time.Time
}

// NewSQLiteAffinityStore opens (or creates) the database at dbPath.
func NewSQLiteAffinityStore(dbPath string) (*SQLiteAffinityStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteAffinityStore{
		db:      db,
		dbPath:  dbPath,
		nowFunc: time.Now,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteAffinityStore) Path() string {
	return s.dbPath
}

func (s *SQLiteAffinityStore) now() string {
	return s.nowFunc().UTC().Format(time.RFC3339Nano)
}

// EnsureUser creates the user if missing and touches its last activity.
func (s *SQLiteAffinityStore) EnsureUser(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, status, registered_at, last_activity_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, constants.UserStatusActive, now, now)
	if err != nil {
		return false, models.NewStoreError("ensure user", err)
	}
	created, _ := res.RowsAffected()
	if created == 0 {
		if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_activity_at = ? WHERE id = ?`, now, id); err != nil {
			return false, models.NewStoreError("touch user", err)
		}
	}
	return created > 0, nil
}

// SaveUser merges the non-empty fields of user into the stored user.
func (s *SQLiteAffinityStore) SaveUser(ctx context.Context, user models.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	status := user.Status
	if status == "" {
		status = constants.UserStatusActive
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, dominant_emotion, time_preference, status, registered_at, last_activity_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			dominant_emotion = COALESCE(NULLIF(excluded.dominant_emotion, ''), users.dominant_emotion),
			time_preference = COALESCE(NULLIF(excluded.time_preference, ''), users.time_preference),
			status = CASE WHEN ? = '' THEN users.status ELSE excluded.status END,
			last_activity_at = excluded.last_activity_at
	`, user.ID, string(user.DominantEmotion), user.TimePreference, status, now, now, user.Status)
	if err != nil {
		return models.NewStoreError("save user", err)
	}
	return nil
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (s *SQLiteAffinityStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u models.User
	var dominant, timePref sql.NullString
	var registered, lastActivity string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dominant_emotion, time_preference, status, registered_at, last_activity_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &dominant, &timePref, &u.Status, &registered, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStoreError("get user", err)
	}
	u.DominantEmotion = models.Emotion(dominant.String)
	u.TimePreference = timePref.String
	u.RegisteredAt = parseTime(registered)
	u.LastActivityAt = parseTime(lastActivity)
	return &u, nil
}

// EnsureItem creates a placeholder item if missing.
func (s *SQLiteAffinityStore) EnsureItem(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, description) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, id, constants.PlaceholderItemDescription)
	if err != nil {
		return false, models.NewStoreError("ensure item", err)
	}
	created, _ := res.RowsAffected()
	return created > 0, nil
}

// SaveItem creates or replaces an item and its characteristics.
func (s *SQLiteAffinityStore) SaveItem(ctx context.Context, item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.NewStoreError("save item", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO items (id, name, description) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description
	`, item.ID, item.Name, item.Description); err != nil {
		return models.NewStoreError("save item", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_characteristics WHERE item_id = ?`, item.ID); err != nil {
		return models.NewStoreError("save item characteristics", err)
	}
	for _, ch := range item.Characteristics {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO item_characteristics (item_id, characteristic) VALUES (?, ?)
		`, item.ID, ch); err != nil {
			return models.NewStoreError("save item characteristics", err)
		}
	}

	return models.NewStoreError("save item", tx.Commit())
}

// GetItem retrieves an item by ID. Returns nil if not found.
func (s *SQLiteAffinityStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var item models.Item
	err := s.db.QueryRowContext(ctx, `SELECT id, name, description FROM items WHERE id = ?`, id).
		Scan(&item.ID, &item.Name, &item.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStoreError("get item", err)
	}

	chars, err := s.loadCharacteristics(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	item.Characteristics = chars[id]
	return &item, nil
}

// SaveEmotion upserts an emotion node.
func (s *SQLiteAffinityStore) SaveEmotion(ctx context.Context, emotion models.Emotion, description string) error {
	if !emotion.Valid() {
		return fmt.Errorf("%w: unknown emotion %q", models.ErrValidation, emotion)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emotions (name, description) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description
	`, string(emotion), description)
	return models.NewStoreError("save emotion", err)
}

// SetItemResonance upserts the resonance of an item with an emotion.
func (s *SQLiteAffinityStore) SetItemResonance(ctx context.Context, itemID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow(ctx, "items", itemID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO item_resonance (item_id, emotion, intensity) VALUES (?, ?, ?)
		ON CONFLICT(item_id, emotion) DO UPDATE SET intensity = excluded.intensity
	`, itemID, string(emotion), intensity)
	return models.NewStoreError("set item resonance", err)
}

// TopItemEmotion returns the item's highest intensity emotion.
func (s *SQLiteAffinityStore) TopItemEmotion(ctx context.Context, itemID string) (models.Emotion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT emotion, intensity FROM item_resonance WHERE item_id = ?
	`, itemID)
	if err != nil {
		return "", false, models.NewStoreError("top item emotion", err)
	}
	defer rows.Close()

	// Ties resolve in canonical emotion order, same as the in-memory store.
	var best models.Emotion
	bestIntensity := -1.0
	for rows.Next() {
		var name string
		var intensity float64
		if err := rows.Scan(&name, &intensity); err != nil {
			return "", false, models.NewStoreError("scan item resonance", err)
		}
		e := models.Emotion(name)
		if intensity > bestIntensity || (intensity == bestIntensity && e.Rank() < best.Rank()) {
			best, bestIntensity = e, intensity
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, models.NewStoreError("top item emotion", err)
	}
	return best, bestIntensity >= 0, nil
}

// SetEmotionalState replaces the user's emotional state.
func (s *SQLiteAffinityStore) SetEmotionalState(ctx context.Context, userID string, state models.EmotionalState) error {
	if err := validateIntensity(state.Emotion, state.Intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow(ctx, "users", userID); err != nil {
		return err
	}
	updated := s.now()
	if !state.UpdatedAt.IsZero() {
		updated = state.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emotional_states (user_id, emotion, intensity, provenance, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			emotion = excluded.emotion,
			intensity = excluded.intensity,
			provenance = excluded.provenance,
			updated_at = excluded.updated_at
	`, userID, string(state.Emotion), state.Intensity, string(state.Provenance), updated)
	return models.NewStoreError("set emotional state", err)
}

// FindEmotionalState returns the user's emotional state, or nil.
func (s *SQLiteAffinityStore) FindEmotionalState(ctx context.Context, userID string) (*models.EmotionalState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var state models.EmotionalState
	var emotion, provenance, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT emotion, intensity, provenance, updated_at FROM emotional_states WHERE user_id = ?
	`, userID).Scan(&emotion, &state.Intensity, &provenance, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewStoreError("find emotional state", err)
	}
	state.Emotion = models.Emotion(emotion)
	state.Provenance = models.SourceType(provenance)
	state.UpdatedAt = parseTime(updated)
	return &state, nil
}

// UpsertResonance upserts a user resonance edge.
func (s *SQLiteAffinityStore) UpsertResonance(ctx context.Context, userID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow(ctx, "users", userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_resonance (user_id, emotion, intensity, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, emotion) DO UPDATE SET
			intensity = excluded.intensity,
			updated_at = excluded.updated_at
	`, userID, string(emotion), intensity, s.now())
	return models.NewStoreError("upsert resonance", err)
}

// UserResonances returns the user's resonance edges, strongest first.
func (s *SQLiteAffinityStore) UserResonances(ctx context.Context, userID string) ([]models.Resonance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT emotion, intensity FROM user_resonance WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, models.NewStoreError("user resonances", err)
	}
	defer rows.Close()

	results := make([]models.Resonance, 0)
	for rows.Next() {
		var r models.Resonance
		var emotion string
		if err := rows.Scan(&emotion, &r.Intensity); err != nil {
			return nil, models.NewStoreError("scan user resonance", err)
		}
		r.Emotion = models.Emotion(emotion)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("user resonances", err)
	}
	sortResonances(results)
	return results, nil
}

// Characteristics returns the distinct item characteristics, sorted.
func (s *SQLiteAffinityStore) Characteristics(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT characteristic FROM item_characteristics ORDER BY characteristic
	`)
	if err != nil {
		return nil, models.NewStoreError("characteristics", err)
	}
	defer rows.Close()

	results := make([]string, 0)
	for rows.Next() {
		var ch string
		if err := rows.Scan(&ch); err != nil {
			return nil, models.NewStoreError("scan characteristic", err)
		}
		results = append(results, ch)
	}
	return results, models.NewStoreError("characteristics", rows.Err())
}

// UpsertPlayed upserts a play edge. Last write wins.
func (s *SQLiteAffinityStore) UpsertPlayed(ctx context.Context, play models.Play) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow(ctx, "users", play.UserID); err != nil {
		return err
	}
	if err := s.requireRow(ctx, "items", play.ItemID); err != nil {
		return err
	}

	playedAt := s.now()
	if !play.PlayedAt.IsZero() {
		playedAt = play.PlayedAt.UTC().Format(time.RFC3339Nano)
	}
	var rating sql.NullInt64
	if play.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*play.Rating), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plays (user_id, item_id, liked, rating, weight, played_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, item_id) DO UPDATE SET
			liked = excluded.liked,
			rating = excluded.rating,
			weight = excluded.weight,
			played_at = excluded.played_at
	`, play.UserID, play.ItemID, boolToInt(play.Liked), rating, models.PlayWeight(play.Liked), playedAt)
	return models.NewStoreError("upsert played", err)
}

// UpsertSimilarity upserts a similarity edge.
func (s *SQLiteAffinityStore) UpsertSimilarity(ctx context.Context, sim models.Similarity) error {
	if sim.UserID == sim.OtherID {
		return fmt.Errorf("%w: self similarity for %s", models.ErrValidation, sim.UserID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRow(ctx, "users", sim.UserID); err != nil {
		return err
	}
	if err := s.requireRow(ctx, "users", sim.OtherID); err != nil {
		return err
	}

	shared, err := json.Marshal(sim.SharedItemIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal shared items: %w", err)
	}
	updated := s.now()
	if !sim.UpdatedAt.IsZero() {
		updated = sim.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO similarities (user_id, other_id, score, shared_count, shared_item_ids, provenance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, other_id) DO UPDATE SET
			score = excluded.score,
			shared_count = excluded.shared_count,
			shared_item_ids = excluded.shared_item_ids,
			provenance = excluded.provenance,
			updated_at = excluded.updated_at
	`, sim.UserID, sim.OtherID, sim.Score, sim.SharedCount, string(shared), string(sim.Provenance), updated)
	return models.NewStoreError("upsert similarity", err)
}

// SimilarUsers returns the outgoing similarity edges of a user, best first.
func (s *SQLiteAffinityStore) SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, other_id, score, shared_count, shared_item_ids, provenance, updated_at
		FROM similarities WHERE user_id = ?
		ORDER BY score DESC, other_id ASC
	`, userID)
	if err != nil {
		return nil, models.NewStoreError("similar users", err)
	}
	defer rows.Close()

	results := make([]models.Similarity, 0)
	for rows.Next() {
		var sim models.Similarity
		var shared sql.NullString
		var provenance, updated string
		if err := rows.Scan(&sim.UserID, &sim.OtherID, &sim.Score, &sim.SharedCount, &shared, &provenance, &updated); err != nil {
			return nil, models.NewStoreError("scan similarity", err)
		}
		if shared.Valid && shared.String != "" {
			if err := json.Unmarshal([]byte(shared.String), &sim.SharedItemIDs); err != nil {
				return nil, models.NewStoreError("decode shared items", err)
			}
		}
		sim.Provenance = models.SourceType(provenance)
		sim.UpdatedAt = parseTime(updated)
		results = append(results, sim)
	}
	return results, models.NewStoreError("similar users", rows.Err())
}

// TopItemsForEmotion ranks items by resonance with emotion.
func (s *SQLiteAffinityStore) TopItemsForEmotion(ctx context.Context, emotion models.Emotion, k int, exclude ...string) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT i.id, i.name, i.description, r.intensity
		FROM item_resonance r
		JOIN items i ON i.id = r.item_id
		WHERE r.emotion = ?`
	args := []interface{}{string(emotion)}
	query, args = appendExclusion(query, args, exclude)
	query += ` ORDER BY r.intensity DESC, i.id ASC LIMIT ?`
	args = append(args, limitArg(k))

	return s.queryScored(ctx, "top items for emotion", query, args...)
}

// TopItemsResonatingWithUserState ranks items resonating with the user's state emotion.
func (s *SQLiteAffinityStore) TopItemsResonatingWithUserState(ctx context.Context, userID string, k int, exclude ...string) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT i.id, i.name, i.description, r.intensity
		FROM emotional_states st
		JOIN item_resonance r ON r.emotion = st.emotion
		JOIN items i ON i.id = r.item_id
		WHERE st.user_id = ?`
	args := []interface{}{userID}
	query, args = appendExclusion(query, args, exclude)
	query += ` ORDER BY r.intensity DESC, i.id ASC LIMIT ?`
	args = append(args, limitArg(k))

	return s.queryScored(ctx, "top items for user state", query, args...)
}

// ItemsLikedBySimilarUsers ranks items by how many similar users liked them.
func (s *SQLiteAffinityStore) ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryScored(ctx, "items liked by similar users", `
		SELECT i.id, i.name, i.description, COUNT(DISTINCT p.user_id) AS liked_by
		FROM similarities sim
		JOIN plays p ON p.user_id = sim.other_id AND p.liked = 1
		JOIN items i ON i.id = p.item_id
		WHERE sim.user_id = ?
		  AND NOT EXISTS (
		      SELECT 1 FROM plays mine WHERE mine.user_id = ? AND mine.item_id = p.item_id
		  )
		GROUP BY i.id, i.name, i.description
		ORDER BY liked_by DESC, i.id ASC
		LIMIT ?
	`, userID, userID, limitArg(k))
}

// UsersWithSharedLikedItems returns users sharing at least minShared likes with userID.
func (s *SQLiteAffinityStore) UsersWithSharedLikedItems(ctx context.Context, userID string, minShared int) ([]models.SharedLikes, error) {
	if minShared < 1 {
		minShared = 1
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT theirs.user_id, theirs.item_id
		FROM plays mine
		JOIN plays theirs ON theirs.item_id = mine.item_id
		WHERE mine.user_id = ? AND mine.liked = 1
		  AND theirs.liked = 1 AND theirs.user_id <> mine.user_id
		ORDER BY theirs.user_id, theirs.item_id
	`, userID)
	if err != nil {
		return nil, models.NewStoreError("users with shared likes", err)
	}
	defer rows.Close()

	shared := make(map[string][]string)
	for rows.Next() {
		var other, itemID string
		if err := rows.Scan(&other, &itemID); err != nil {
			return nil, models.NewStoreError("scan shared likes", err)
		}
		shared[other] = append(shared[other], itemID)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("users with shared likes", err)
	}

	results := make([]models.SharedLikes, 0, len(shared))
	for other, itemIDs := range shared {
		if len(itemIDs) < minShared {
			continue
		}
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
func (s *SQLiteAffinityStore) Stats(ctx context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.Stats
	counts := []struct {
		table string
		dest  *int
	}{
		{"users", &stats.Users},
		{"items", &stats.Items},
		{"emotions", &stats.Emotions},
		{"item_resonance", &stats.ItemResonances},
		{"user_resonance", &stats.UserResonances},
		{"emotional_states", &stats.EmotionalStates},
		{"plays", &stats.Plays},
		{"similarities", &stats.Similarities},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return models.Stats{}, models.NewStoreError("count "+c.table, err)
		}
	}
	return stats, nil
}

// Close closes the database.
func (s *SQLiteAffinityStore) Close() error {
	return s.db.Close()
}

// requireRow returns a not-found error when no row with id exists in table.
// Callers must hold the lock.
func (s *SQLiteAffinityStore) requireRow(ctx context.Context, table, id string) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id).Scan(&n); err != nil {
		return models.NewStoreError("lookup "+table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, strings.TrimSuffix(table, "s"), id)
	}
	return nil
}

// queryScored runs a query returning (id, name, description, score) rows and
// attaches item characteristics. Callers must hold the lock.
func (s *SQLiteAffinityStore) queryScored(ctx context.Context, op, query string, args ...interface{}) ([]models.ScoredItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, models.NewStoreError(op, err)
	}

	results := make([]models.ScoredItem, 0)
	var ids []string
	for rows.Next() {
		var si models.ScoredItem
		if err := rows.Scan(&si.Item.ID, &si.Item.Name, &si.Item.Description, &si.Score); err != nil {
			rows.Close()
			return nil, models.NewStoreError(op, err)
		}
		results = append(results, si)
		ids = append(ids, si.Item.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, models.NewStoreError(op, err)
	}
	rows.Close() // Close before nested queries to avoid connection pool exhaustion

	chars, err := s.loadCharacteristics(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Item.Characteristics = chars[results[i].Item.ID]
	}
	return results, nil
}

// loadCharacteristics returns characteristics keyed by item id. Callers must hold the lock.
func (s *SQLiteAffinityStore) loadCharacteristics(ctx context.Context, ids []string) (map[string][]string, error) {
	result := make(map[string][]string)
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT item_id, characteristic FROM item_characteristics
		WHERE item_id IN (`+placeholders(len(ids))+`)
		ORDER BY item_id, characteristic
	`, args...)
	if err != nil {
		return nil, models.NewStoreError("load characteristics", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, ch string
		if err := rows.Scan(&itemID, &ch); err != nil {
			return nil, models.NewStoreError("scan characteristic", err)
		}
		result[itemID] = append(result[itemID], ch)
	}
	return result, models.NewStoreError("load characteristics", rows.Err())
}

// Helper functions

// appendExclusion filters out items carrying any excluded characteristic.
func appendExclusion(query string, args []interface{}, exclude []string) (string, []interface{}) {
	if len(exclude) == 0 {
		return query, args
	}
	query += ` AND i.id NOT IN (SELECT item_id FROM item_characteristics WHERE characteristic IN (` + placeholders(len(exclude)) + `))`
	for _, ch := range exclude {
		args = append(args, ch)
	}
	return query, args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// limitArg maps a non-positive k to SQLite's "no limit".
func limitArg(k int) int {
	if k <= 0 {
		return -1
	}
	return k
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
