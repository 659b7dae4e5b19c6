package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
)

// Neo4jConfig holds connection settings for the Neo4j adapter.
type Neo4jConfig struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// Neo4jAffinityStore implements AffinityStore on a Neo4j graph.
//
// Graph layout:
//
//	(:User)-[:PLAYED {liked, rating, weight}]->(:Item)
//	(:User)-[:SIMILAR_TO {score, shared_count, shared_item_ids}]->(:User)
//	(:User)-[:FEELS {intensity, provenance}]->(:Emotion)
//	(:User)-[:RESONATES {intensity}]->(:Emotion)
//	(:Item)-[:EVOKES {intensity}]->(:Emotion)
type Neo4jAffinityStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *slog.Logger
	nowFunc  func() time.Time
}

// NewNeo4jAffinityStore connects to Neo4j and verifies connectivity.
func NewNeo4jAffinityStore(ctx context.Context, cfg Neo4jConfig, log *slog.Logger) (*Neo4jAffinityStore, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: neo4j uri is required", models.ErrValidation)
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}
	if log == nil {
		log = slog.Default()
	}

	auth := neo4j.BasicAuth(cfg.User, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.Timeout
	})
	if err != nil {
		return nil, models.NewStoreError("init neo4j driver", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, models.NewStoreError("verify neo4j connectivity", err)
	}

	s := &Neo4jAffinityStore{
		driver:   driver,
		database: cfg.Database,
		log:      log.With("store", "neo4j"),
		nowFunc:  time.Now,
	}
	s.ensureConstraints(ctx)
	return s, nil
}

// ensureConstraints creates uniqueness constraints. Failures are logged, not fatal.
func (s *Neo4jAffinityStore) ensureConstraints(ctx context.Context) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, stmt := range []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
		`CREATE CONSTRAINT item_id_unique IF NOT EXISTS FOR (i:Item) REQUIRE i.id IS UNIQUE`,
		`CREATE CONSTRAINT emotion_name_unique IF NOT EXISTS FOR (e:Emotion) REQUIRE e.name IS UNIQUE`,
	} {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			s.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (s *Neo4jAffinityStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

func (s *Neo4jAffinityStore) now() string {
	return s.nowFunc().UTC().Format(time.RFC3339Nano)
}

// write runs one statement in a write transaction and returns its summary.
func (s *Neo4jAffinityStore) write(ctx context.Context, op, cypher string, params map[string]any) (neo4j.ResultSummary, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	summary, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return nil, models.NewStoreError(op, err)
	}
	return summary.(neo4j.ResultSummary), nil
}

// read runs one statement in a read transaction and collects its records.
func (s *Neo4jAffinityStore) read(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, models.NewStoreError(op, err)
	}
	return records.([]*neo4j.Record), nil
}

// requireNode returns a not-found error when no node with the given label and id exists.
func (s *Neo4jAffinityStore) requireNode(ctx context.Context, label, id string) error {
	records, err := s.read(ctx, "lookup "+label, `MATCH (n:`+label+` {id: $id}) RETURN count(n) AS n`, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if len(records) == 0 || recordInt(records[0], "n") == 0 {
		return fmt.Errorf("%w: %s %s", models.ErrNotFound, labelNoun(label), id)
	}
	return nil
}

// EnsureUser creates the user if missing and touches its last activity.
func (s *Neo4jAffinityStore) EnsureUser(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}
	now := s.now()
	summary, err := s.write(ctx, "ensure user", `
MERGE (u:User {id: $id})
ON CREATE SET u.status = $status, u.registered_at = $now
SET u.last_activity_at = $now
`, map[string]any{"id": id, "status": constants.UserStatusActive, "now": now})
	if err != nil {
		return false, err
	}
	return summary.Counters().NodesCreated() > 0, nil
}

// SaveUser merges the non-empty fields of user into the stored user.
func (s *Neo4jAffinityStore) SaveUser(ctx context.Context, user models.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user ID is required", models.ErrValidation)
	}
	_, err := s.write(ctx, "save user", `
MERGE (u:User {id: $id})
ON CREATE SET u.status = $default_status, u.registered_at = $now
SET u.last_activity_at = $now,
    u.dominant_emotion = CASE WHEN $dominant = '' THEN u.dominant_emotion ELSE $dominant END,
    u.time_preference = CASE WHEN $time_preference = '' THEN u.time_preference ELSE $time_preference END,
    u.status = CASE WHEN $status = '' THEN u.status ELSE $status END
`, map[string]any{
		"id":              user.ID,
		"default_status":  constants.UserStatusActive,
		"now":             s.now(),
		"dominant":        string(user.DominantEmotion),
		"time_preference": user.TimePreference,
		"status":          user.Status,
	})
	return err
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (s *Neo4jAffinityStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	records, err := s.read(ctx, "get user", `
MATCH (u:User {id: $id})
RETURN u.id AS id, coalesce(u.dominant_emotion, '') AS dominant_emotion,
       coalesce(u.time_preference, '') AS time_preference, coalesce(u.status, '') AS status,
       coalesce(u.registered_at, '') AS registered_at, coalesce(u.last_activity_at, '') AS last_activity_at
`, map[string]any{"id": id})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	rec := records[0]
	return &models.User{
		ID:              recordString(rec, "id"),
		DominantEmotion: models.Emotion(recordString(rec, "dominant_emotion")),
		TimePreference:  recordString(rec, "time_preference"),
		Status:          recordString(rec, "status"),
		RegisteredAt:    parseTime(recordString(rec, "registered_at")),
		LastActivityAt:  parseTime(recordString(rec, "last_activity_at")),
	}, nil
}

// EnsureItem creates a placeholder item if missing.
func (s *Neo4jAffinityStore) EnsureItem(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}
	summary, err := s.write(ctx, "ensure item", `
MERGE (i:Item {id: $id})
ON CREATE SET i.name = $id, i.description = $description, i.characteristics = []
`, map[string]any{"id": id, "description": constants.PlaceholderItemDescription})
	if err != nil {
		return false, err
	}
	return summary.Counters().NodesCreated() > 0, nil
}

// SaveItem creates or replaces an item.
func (s *Neo4jAffinityStore) SaveItem(ctx context.Context, item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item ID is required", models.ErrValidation)
	}
	chars := item.Characteristics
	if chars == nil {
		chars = []string{}
	}
	_, err := s.write(ctx, "save item", `
MERGE (i:Item {id: $id})
SET i.name = $name, i.description = $description, i.characteristics = $characteristics
`, map[string]any{"id": item.ID, "name": item.Name, "description": item.Description, "characteristics": chars})
	return err
}

// GetItem retrieves an item by ID. Returns nil if not found.
func (s *Neo4jAffinityStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	records, err := s.read(ctx, "get item", `
MATCH (i:Item {id: $id})
RETURN `+itemProjection+`, 0.0 AS score
`, map[string]any{"id": id})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	item := recordItem(records[0])
	return &item, nil
}

// SaveEmotion upserts an emotion node.
func (s *Neo4jAffinityStore) SaveEmotion(ctx context.Context, emotion models.Emotion, description string) error {
	if !emotion.Valid() {
		return fmt.Errorf("%w: unknown emotion %q", models.ErrValidation, emotion)
	}
	_, err := s.write(ctx, "save emotion", `
MERGE (e:Emotion {name: $name})
SET e.description = $description
`, map[string]any{"name": string(emotion), "description": description})
	return err
}

// SetItemResonance upserts the resonance of an item with an emotion.
func (s *Neo4jAffinityStore) SetItemResonance(ctx context.Context, itemID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}
	if err := s.requireNode(ctx, "Item", itemID); err != nil {
		return err
	}
	_, err := s.write(ctx, "set item resonance", `
MATCH (i:Item {id: $item_id})
MERGE (e:Emotion {name: $emotion})
MERGE (i)-[r:EVOKES]->(e)
SET r.intensity = $intensity
`, map[string]any{"item_id": itemID, "emotion": string(emotion), "intensity": intensity})
	return err
}

// TopItemEmotion returns the item's highest intensity emotion.
func (s *Neo4jAffinityStore) TopItemEmotion(ctx context.Context, itemID string) (models.Emotion, bool, error) {
	records, err := s.read(ctx, "top item emotion", `
MATCH (:Item {id: $item_id})-[r:EVOKES]->(e:Emotion)
RETURN e.name AS emotion, r.intensity AS intensity
`, map[string]any{"item_id": itemID})
	if err != nil {
		return "", false, err
	}

	var best models.Emotion
	bestIntensity := -1.0
	for _, rec := range records {
		e := models.Emotion(recordString(rec, "emotion"))
		intensity := recordFloat(rec, "intensity")
		if intensity > bestIntensity || (intensity == bestIntensity && e.Rank() < best.Rank()) {
			best, bestIntensity = e, intensity
		}
	}
	return best, bestIntensity >= 0, nil
}

// setEmotionalStateCypher writes the user node before touching FEELS so the
// node write lock serializes concurrent replacements for one user.
const setEmotionalStateCypher = `
MATCH (u:User {id: $user_id})
SET u.state_updated_at = $updated_at
WITH u
OPTIONAL MATCH (u)-[old:FEELS]->()
DELETE old
WITH DISTINCT u
MERGE (e:Emotion {name: $emotion})
CREATE (u)-[:FEELS {intensity: $intensity, provenance: $provenance, updated_at: $updated_at}]->(e)
`

// SetEmotionalState replaces the user's emotional state.
func (s *Neo4jAffinityStore) SetEmotionalState(ctx context.Context, userID string, state models.EmotionalState) error {
	if err := validateIntensity(state.Emotion, state.Intensity); err != nil {
		return err
	}
	if err := s.requireNode(ctx, "User", userID); err != nil {
		return err
	}
	updated := s.now()
	if !state.UpdatedAt.IsZero() {
		updated = state.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.write(ctx, "set emotional state", setEmotionalStateCypher, map[string]any{
		"user_id":    userID,
		"emotion":    string(state.Emotion),
		"intensity":  state.Intensity,
		"provenance": string(state.Provenance),
		"updated_at": updated,
	})
	return err
}

// FindEmotionalState returns the user's emotional state, or nil.
func (s *Neo4jAffinityStore) FindEmotionalState(ctx context.Context, userID string) (*models.EmotionalState, error) {
	records, err := s.read(ctx, "find emotional state", `
MATCH (:User {id: $user_id})-[f:FEELS]->(e:Emotion)
RETURN e.name AS emotion, f.intensity AS intensity,
       coalesce(f.provenance, '') AS provenance, coalesce(f.updated_at, '') AS updated_at
LIMIT 1
`, map[string]any{"user_id": userID})
	if err != nil || len(records) == 0 {
		return nil, err
	}
	rec := records[0]
	return &models.EmotionalState{
		Emotion:    models.Emotion(recordString(rec, "emotion")),
		Intensity:  recordFloat(rec, "intensity"),
		Provenance: models.SourceType(recordString(rec, "provenance")),
		UpdatedAt:  parseTime(recordString(rec, "updated_at")),
	}, nil
}

// UpsertResonance upserts a user resonance edge.
func (s *Neo4jAffinityStore) UpsertResonance(ctx context.Context, userID string, emotion models.Emotion, intensity float64) error {
	if err := validateIntensity(emotion, intensity); err != nil {
		return err
	}
	if err := s.requireNode(ctx, "User", userID); err != nil {
		return err
	}
	_, err := s.write(ctx, "upsert resonance", `
MATCH (u:User {id: $user_id})
MERGE (e:Emotion {name: $emotion})
MERGE (u)-[r:RESONATES]->(e)
SET r.intensity = $intensity, r.updated_at = $now
`, map[string]any{"user_id": userID, "emotion": string(emotion), "intensity": intensity, "now": s.now()})
	return err
}

// UserResonances returns the user's resonance edges, strongest first.
func (s *Neo4jAffinityStore) UserResonances(ctx context.Context, userID string) ([]models.Resonance, error) {
	records, err := s.read(ctx, "user resonances", `
MATCH (:User {id: $user_id})-[r:RESONATES]->(e:Emotion)
RETURN e.name AS emotion, r.intensity AS intensity
`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}
	results := make([]models.Resonance, 0, len(records))
	for _, rec := range records {
		results = append(results, models.Resonance{
			Emotion:   models.Emotion(recordString(rec, "emotion")),
			Intensity: recordFloat(rec, "intensity"),
		})
	}
	sortResonances(results)
	return results, nil
}

// Characteristics returns the distinct item characteristics, sorted.
func (s *Neo4jAffinityStore) Characteristics(ctx context.Context) ([]string, error) {
	records, err := s.read(ctx, "characteristics", `
MATCH (i:Item)
UNWIND coalesce(i.characteristics, []) AS ch
RETURN DISTINCT ch
ORDER BY ch
`, nil)
	if err != nil {
		return nil, err
	}
	results := make([]string, 0, len(records))
	for _, rec := range records {
		results = append(results, recordString(rec, "ch"))
	}
	return results, nil
}

// UpsertPlayed upserts a play edge. Last write wins.
func (s *Neo4jAffinityStore) UpsertPlayed(ctx context.Context, play models.Play) error {
	if err := s.requireNode(ctx, "User", play.UserID); err != nil {
		return err
	}
	if err := s.requireNode(ctx, "Item", play.ItemID); err != nil {
		return err
	}
	playedAt := s.now()
	if !play.PlayedAt.IsZero() {
		playedAt = play.PlayedAt.UTC().Format(time.RFC3339Nano)
	}
	var rating any
	if play.Rating != nil {
		rating = int64(*play.Rating)
	}
	_, err := s.write(ctx, "upsert played", `
MATCH (u:User {id: $user_id})
MATCH (i:Item {id: $item_id})
MERGE (u)-[p:PLAYED]->(i)
SET p.liked = $liked, p.rating = $rating, p.weight = $weight, p.played_at = $played_at
`, map[string]any{
		"user_id":   play.UserID,
		"item_id":   play.ItemID,
		"liked":     play.Liked,
		"rating":    rating,
		"weight":    models.PlayWeight(play.Liked),
		"played_at": playedAt,
	})
	return err
}

// UpsertSimilarity upserts a similarity edge.
func (s *Neo4jAffinityStore) UpsertSimilarity(ctx context.Context, sim models.Similarity) error {
	if sim.UserID == sim.OtherID {
		return fmt.Errorf("%w: self similarity for %s", models.ErrValidation, sim.UserID)
	}
	if err := s.requireNode(ctx, "User", sim.UserID); err != nil {
		return err
	}
	if err := s.requireNode(ctx, "User", sim.OtherID); err != nil {
		return err
	}
	shared := sim.SharedItemIDs
	if shared == nil {
		shared = []string{}
	}
	updated := s.now()
	if !sim.UpdatedAt.IsZero() {
		updated = sim.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.write(ctx, "upsert similarity", `
MATCH (u:User {id: $user_id})
MATCH (o:User {id: $other_id})
MERGE (u)-[r:SIMILAR_TO]->(o)
SET r.score = $score, r.shared_count = $shared_count, r.shared_item_ids = $shared_item_ids,
    r.provenance = $provenance, r.updated_at = $updated_at
`, map[string]any{
		"user_id":         sim.UserID,
		"other_id":        sim.OtherID,
		"score":           sim.Score,
		"shared_count":    int64(sim.SharedCount),
		"shared_item_ids": shared,
		"provenance":      string(sim.Provenance),
		"updated_at":      updated,
	})
	return err
}

// SimilarUsers returns the outgoing similarity edges of a user, best first.
func (s *Neo4jAffinityStore) SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error) {
	records, err := s.read(ctx, "similar users", `
MATCH (:User {id: $user_id})-[r:SIMILAR_TO]->(o:User)
RETURN o.id AS other_id, r.score AS score, r.shared_count AS shared_count,
       coalesce(r.shared_item_ids, []) AS shared_item_ids,
       coalesce(r.provenance, '') AS provenance, coalesce(r.updated_at, '') AS updated_at
ORDER BY score DESC, other_id ASC
`, map[string]any{"user_id": userID})
	if err != nil {
		return nil, err
	}

	results := make([]models.Similarity, 0, len(records))
	for _, rec := range records {
		results = append(results, models.Similarity{
			UserID:        userID,
			OtherID:       recordString(rec, "other_id"),
			Score:         recordFloat(rec, "score"),
			SharedCount:   int(recordInt(rec, "shared_count")),
			SharedItemIDs: recordStrings(rec, "shared_item_ids"),
			Provenance:    models.SourceType(recordString(rec, "provenance")),
			UpdatedAt:     parseTime(recordString(rec, "updated_at")),
		})
	}
	return results, nil
}

const itemProjection = `i.id AS id, coalesce(i.name, i.id) AS name,
       coalesce(i.description, '') AS description,
       coalesce(i.characteristics, []) AS characteristics`

// TopItemsForEmotion ranks items by resonance with emotion.
func (s *Neo4jAffinityStore) TopItemsForEmotion(ctx context.Context, emotion models.Emotion, k int, exclude ...string) ([]models.ScoredItem, error) {
	records, err := s.read(ctx, "top items for emotion", `
MATCH (i:Item)-[r:EVOKES]->(:Emotion {name: $emotion})
WHERE NONE(c IN coalesce(i.characteristics, []) WHERE c IN $exclude)
RETURN `+itemProjection+`, r.intensity AS score
ORDER BY score DESC, id ASC
`+limitClause(k), map[string]any{"emotion": string(emotion), "exclude": excludeParam(exclude), "limit": int64(k)})
	if err != nil {
		return nil, err
	}
	return recordsToScored(records), nil
}

// TopItemsResonatingWithUserState ranks items resonating with the user's state emotion.
func (s *Neo4jAffinityStore) TopItemsResonatingWithUserState(ctx context.Context, userID string, k int, exclude ...string) ([]models.ScoredItem, error) {
	records, err := s.read(ctx, "top items for user state", `
MATCH (:User {id: $user_id})-[:FEELS]->(e:Emotion)<-[r:EVOKES]-(i:Item)
WHERE NONE(c IN coalesce(i.characteristics, []) WHERE c IN $exclude)
RETURN `+itemProjection+`, r.intensity AS score
ORDER BY score DESC, id ASC
`+limitClause(k), map[string]any{"user_id": userID, "exclude": excludeParam(exclude), "limit": int64(k)})
	if err != nil {
		return nil, err
	}
	return recordsToScored(records), nil
}

// ItemsLikedBySimilarUsers ranks items by how many similar users liked them.
func (s *Neo4jAffinityStore) ItemsLikedBySimilarUsers(ctx context.Context, userID string, k int) ([]models.ScoredItem, error) {
	records, err := s.read(ctx, "items liked by similar users", `
MATCH (u:User {id: $user_id})-[:SIMILAR_TO]->(o:User)-[p:PLAYED]->(i:Item)
WHERE p.liked = true AND NOT (u)-[:PLAYED]->(i)
WITH i, count(DISTINCT o) AS liked_by
RETURN `+itemProjection+`, toFloat(liked_by) AS score
ORDER BY score DESC, id ASC
`+limitClause(k), map[string]any{"user_id": userID, "limit": int64(k)})
	if err != nil {
		return nil, err
	}
	return recordsToScored(records), nil
}

// UsersWithSharedLikedItems returns users sharing at least minShared likes with userID.
func (s *Neo4jAffinityStore) UsersWithSharedLikedItems(ctx context.Context, userID string, minShared int) ([]models.SharedLikes, error) {
	if minShared < 1 {
		minShared = 1
	}
	records, err := s.read(ctx, "users with shared likes", `
MATCH (u:User {id: $user_id})-[mine:PLAYED]->(i:Item)<-[theirs:PLAYED]-(o:User)
WHERE mine.liked = true AND theirs.liked = true AND o.id <> u.id
WITH o, collect(DISTINCT i.id) AS shared
WHERE size(shared) >= $min_shared
RETURN o.id AS other_id, shared
ORDER BY other_id ASC
`, map[string]any{"user_id": userID, "min_shared": int64(minShared)})
	if err != nil {
		return nil, err
	}

	results := make([]models.SharedLikes, 0, len(records))
	for _, rec := range records {
		shared := recordStrings(rec, "shared")
		sort.Strings(shared)
		results = append(results, models.SharedLikes{
			UserID:        userID,
			OtherID:       recordString(rec, "other_id"),
			SharedCount:   len(shared),
			SharedItemIDs: shared,
		})
	}
	return results, nil
}

// Stats returns node and edge counts.
func (s *Neo4jAffinityStore) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	counts := []struct {
		pattern string
		dest    *int
	}{
		{`MATCH (x:User) RETURN count(x) AS n`, &stats.Users},
		{`MATCH (x:Item) RETURN count(x) AS n`, &stats.Items},
		{`MATCH (x:Emotion) RETURN count(x) AS n`, &stats.Emotions},
		{`MATCH ()-[x:EVOKES]->() RETURN count(x) AS n`, &stats.ItemResonances},
		{`MATCH ()-[x:RESONATES]->() RETURN count(x) AS n`, &stats.UserResonances},
		{`MATCH ()-[x:FEELS]->() RETURN count(x) AS n`, &stats.EmotionalStates},
		{`MATCH ()-[x:PLAYED]->() RETURN count(x) AS n`, &stats.Plays},
		{`MATCH ()-[x:SIMILAR_TO]->() RETURN count(x) AS n`, &stats.Similarities},
	}
	for _, c := range counts {
		records, err := s.read(ctx, "stats", c.pattern, nil)
		if err != nil {
			return models.Stats{}, err
		}
		if len(records) > 0 {
			*c.dest = int(recordInt(records[0], "n"))
		}
	}
	return stats, nil
}

// Close closes the driver.
func (s *Neo4jAffinityStore) Close() error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(context.Background())
}

// Helper functions

func limitClause(k int) string {
	if k <= 0 {
		return ""
	}
	return "LIMIT $limit"
}

func excludeParam(exclude []string) []string {
	if exclude == nil {
		return []string{}
	}
	return exclude
}

func labelNoun(label string) string {
	switch label {
	case "User":
		return "user"
	case "Item":
		return "item"
	default:
		return label
	}
}

func recordsToScored(records []*neo4j.Record) []models.ScoredItem {
	results := make([]models.ScoredItem, 0, len(records))
	for _, rec := range records {
		results = append(results, models.ScoredItem{
			Item:  recordItem(rec),
			Score: recordFloat(rec, "score"),
		})
	}
	return results
}

func recordItem(rec *neo4j.Record) models.Item {
	return models.Item{
		ID:              recordString(rec, "id"),
		Name:            recordString(rec, "name"),
		Description:     recordString(rec, "description"),
		Characteristics: recordStrings(rec, "characteristics"),
	}
}

func recordString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func recordFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func recordInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func recordStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	list, _ := v.([]any)
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
