package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/gamesoul/gamesoul/internal/models"
)

func TestNewNeo4jAffinityStore_RequiresURI(t *testing.T) {
	_, err := NewNeo4jAffinityStore(context.Background(), Neo4jConfig{}, nil)
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("NewNeo4jAffinityStore() error = %v, want ErrValidation", err)
	}
}

func TestLimitClause(t *testing.T) {
	if got := limitClause(0); got != "" {
		t.Errorf("limitClause(0) = %q, want empty", got)
	}
	if got := limitClause(5); got != "LIMIT $limit" {
		t.Errorf("limitClause(5) = %q", got)
	}
}

func TestRecordConversions(t *testing.T) {
	rec := &neo4j.Record{
		Keys:   []string{"id", "name", "description", "characteristics", "score", "n"},
		Values: []any{"g1", "Game", "desc", []any{"combat", "difficult"}, int64(2), float64(3)},
	}

	item := recordItem(rec)
	want := models.Item{ID: "g1", Name: "Game", Description: "desc", Characteristics: []string{"combat", "difficult"}}
	if !reflect.DeepEqual(item, want) {
		t.Errorf("recordItem() = %+v, want %+v", item, want)
	}
	if got := recordFloat(rec, "score"); got != 2 {
		t.Errorf("recordFloat(int64) = %v, want 2", got)
	}
	if got := recordInt(rec, "n"); got != 3 {
		t.Errorf("recordInt(float64) = %v, want 3", got)
	}
	if got := recordString(rec, "missing"); got != "" {
		t.Errorf("recordString(missing) = %q, want empty", got)
	}
	if got := recordStrings(rec, "missing"); got != nil {
		t.Errorf("recordStrings(missing) = %v, want nil", got)
	}
}

func TestExcludeParam(t *testing.T) {
	if got := excludeParam(nil); got == nil || len(got) != 0 {
		t.Errorf("excludeParam(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestSetEmotionalStateCypher_LocksUserFirst(t *testing.T) {
	lock := strings.Index(setEmotionalStateCypher, "SET u.state_updated_at")
	match := strings.Index(setEmotionalStateCypher, "OPTIONAL MATCH (u)-[old:FEELS]")
	if lock < 0 || match < 0 {
		t.Fatalf("unexpected cypher:\n%s", setEmotionalStateCypher)
	}
	if lock > match {
		t.Error("user node must be written before existing FEELS edges are read")
	}
}

// newLiveNeo4jStore connects to the server named by GAMESOUL_TEST_NEO4J_URI.
func newLiveNeo4jStore(t *testing.T) *Neo4jAffinityStore {
	t.Helper()
	uri := os.Getenv("GAMESOUL_TEST_NEO4J_URI")
	if uri == "" {
		t.Skip("GAMESOUL_TEST_NEO4J_URI not set")
	}
	s, err := NewNeo4jAffinityStore(context.Background(), Neo4jConfig{
		URI:      uri,
		User:     os.Getenv("GAMESOUL_TEST_NEO4J_USER"),
		Password: os.Getenv("GAMESOUL_TEST_NEO4J_PASSWORD"),
	}, nil)
	if err != nil {
		t.Fatalf("NewNeo4jAffinityStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNeo4jAffinityStore_ConcurrentEmotionalState(t *testing.T) {
	s := newLiveNeo4jStore(t)
	ctx := context.Background()
	userID := fmt.Sprintf("concurrent-state-%d", os.Getpid())
	mustEnsureUser(t, s, userID)
	t.Cleanup(func() {
		s.write(context.Background(), "cleanup", `MATCH (u:User {id: $id}) DETACH DELETE u`, map[string]any{"id": userID})
	})

	before, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(models.Emotions))
	for _, e := range models.Emotions {
		wg.Add(1)
		go func(e models.Emotion) {
			defer wg.Done()
			errs <- s.SetEmotionalState(ctx, userID, models.EmotionalState{
				Emotion:    e,
				Intensity:  0.5,
				Provenance: models.SourceTypeQuestionnaire,
			})
		}(e)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SetEmotionalState() error = %v", err)
		}
	}

	after, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if got := after.EmotionalStates - before.EmotionalStates; got != 1 {
		t.Errorf("FEELS edges added = %d, want 1", got)
	}
}
