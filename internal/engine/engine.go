// Package engine wires the profile builder, affinity store, similarity
// engine, recommendation generator and feedback ingestor into the
// operations exposed by the CLI and the MCP server.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/feedback"
	"github.com/gamesoul/gamesoul/internal/logging"
	"github.com/gamesoul/gamesoul/internal/metrics"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/profile"
	"github.com/gamesoul/gamesoul/internal/recommend"
	"github.com/gamesoul/gamesoul/internal/sanitize"
	"github.com/gamesoul/gamesoul/internal/similarity"
	"github.com/gamesoul/gamesoul/internal/store"
)

// Engine is the application facade over one affinity store.
type Engine struct {
	store      store.AffinityStore
	builder    *profile.Builder
	similarity *similarity.Engine
	generator  *recommend.Generator
	feedback   *feedback.Ingestor
	logger     *slog.Logger
	nowFunc    func() time.Time
}

type options struct {
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	policy    similarity.Policy
	limit     int
	rng       *rand.Rand
	rules     profile.RuleTable
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDecisionLogger records recommendation and similarity decisions.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(o *options) { o.decisions = dl }
}

// WithPolicy overrides the similarity policy.
func WithPolicy(p similarity.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithLimit overrides the recommendation list length.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithRand sets the random source of seed admission.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithRules replaces the questionnaire rule table.
func WithRules(rules profile.RuleTable) Option {
	return func(o *options) { o.rules = rules }
}

// New creates an Engine over s.
func New(s store.AffinityStore, opts ...Option) (*Engine, error) {
	o := options{
		policy: similarity.DefaultPolicy(),
		limit:  constants.RecommendationLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	if err := o.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid similarity policy: %w", err)
	}

	simOpts := []similarity.Option{
		similarity.WithLogger(o.logger),
		similarity.WithDecisionLogger(o.decisions),
	}
	if o.rng != nil {
		simOpts = append(simOpts, similarity.WithRand(o.rng))
	}
	sim := similarity.NewEngine(s, o.policy, simOpts...)

	gen := recommend.NewGenerator(s,
		recommend.WithLimit(o.limit),
		recommend.WithSocialScale(o.policy.Scale),
		recommend.WithLogger(o.logger),
		recommend.WithDecisionLogger(o.decisions),
	)

	return &Engine{
		store:      s,
		builder:    profile.NewBuilder(o.rules),
		similarity: sim,
		generator:  gen,
		feedback:   feedback.NewIngestor(s, sim, o.logger),
		logger:     o.logger,
		nowFunc:    time.Now,
	}, nil
}

// Store returns the underlying affinity store.
func (e *Engine) Store() store.AffinityStore {
	return e.store
}

// QuestionnaireResult is the answer to a questionnaire submission.
type QuestionnaireResult struct {
	Profile         models.Profile          `json:"profile"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

// SubmitQuestionnaire builds the user's profile from answers, persists it
// and returns recommendations for the resulting emotional state.
// Persistence failures are returned; recommendation failures degrade to an
// empty list.
func (e *Engine) SubmitQuestionnaire(ctx context.Context, userID string, answers map[string]string, dealbreakers []string) (QuestionnaireResult, error) {
	userID, err := sanitize.ValidateID("user", userID)
	if err != nil {
		return QuestionnaireResult{}, err
	}

	p := e.builder.Build(answers)
	p.UserID = userID
	if err := e.persistProfile(ctx, p); err != nil {
		return QuestionnaireResult{Profile: p, Recommendations: []models.Recommendation{}}, err
	}

	recs := e.serve(ctx, recommend.StrategyEmotional, func() ([]models.Recommendation, error) {
		return e.generator.Emotional(ctx, userID, sanitize.Characteristics(dealbreakers)...)
	})
	return QuestionnaireResult{Profile: p, Recommendations: recs}, nil
}

func (e *Engine) persistProfile(ctx context.Context, p models.Profile) error {
	if _, err := e.store.EnsureUser(ctx, p.UserID); err != nil {
		return fmt.Errorf("ensuring user %s: %w", p.UserID, err)
	}
	user := models.User{
		ID:              p.UserID,
		DominantEmotion: p.DominantEmotion,
		TimePreference:  p.TimePreference,
	}
	if err := e.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("saving profile of %s: %w", p.UserID, err)
	}

	intensity := constants.EmptyProfileIntensity
	if len(p.EmotionWeights) > 0 {
		intensity = p.EmotionWeights[p.DominantEmotion]
	}
	state := models.EmotionalState{
		Emotion:    p.DominantEmotion,
		Intensity:  intensity,
		Provenance: models.SourceTypeQuestionnaire,
		UpdatedAt:  e.nowFunc(),
	}
	if err := e.store.SetEmotionalState(ctx, p.UserID, state); err != nil {
		return fmt.Errorf("setting emotional state of %s: %w", p.UserID, err)
	}

	for _, emotion := range models.Emotions {
		w := p.EmotionWeights[emotion]
		if w <= constants.ResonanceThreshold {
			continue
		}
		if err := e.store.UpsertResonance(ctx, p.UserID, emotion, w); err != nil {
			return fmt.Errorf("saving resonance %s of %s: %w", emotion, p.UserID, err)
		}
	}
	return nil
}

// Request selects a recommendation strategy.
type Request struct {
	Mode         recommend.Strategy `json:"mode"`
	UserID       string             `json:"user_id,omitempty"`
	Emotion      string             `json:"emotion,omitempty"`
	Dealbreakers []string           `json:"dealbreakers,omitempty"`
}

// Validate normalizes the request and rejects malformed ones.
func (r Request) Validate() (Request, error) {
	if r.Mode == "" {
		r.Mode = recommend.StrategyEmotional
	}
	if !r.Mode.Valid() {
		return r, fmt.Errorf("%w: unknown recommendation mode %q", models.ErrValidation, r.Mode)
	}
	if r.Mode == recommend.StrategyByEmotion {
		emotion, err := models.ParseEmotion(r.Emotion)
		if err != nil {
			return r, err
		}
		r.Emotion = string(emotion)
	} else {
		userID, err := sanitize.ValidateID("user", r.UserID)
		if err != nil {
			return r, err
		}
		r.UserID = userID
	}
	r.Dealbreakers = sanitize.Characteristics(r.Dealbreakers)
	return r, nil
}

// Recommend serves a recommendation request. Malformed requests return a
// validation error. Lookup failures are logged and counted and yield an
// empty list with a nil error.
func (e *Engine) Recommend(ctx context.Context, req Request) ([]models.Recommendation, error) {
	req, err := req.Validate()
	if err != nil {
		return []models.Recommendation{}, err
	}

	return e.serve(ctx, req.Mode, func() ([]models.Recommendation, error) {
		switch req.Mode {
		case recommend.StrategyByEmotion:
			return e.generator.ByEmotion(ctx, models.Emotion(req.Emotion), req.Dealbreakers...)
		case recommend.StrategySocial:
			return e.generator.Social(ctx, req.UserID, req.Dealbreakers...)
		case recommend.StrategyMixed:
			return e.generator.Mixed(ctx, req.UserID, req.Dealbreakers...)
		default:
			return e.generator.Emotional(ctx, req.UserID, req.Dealbreakers...)
		}
	}), nil
}

// serve runs fn on the resilient read path.
func (e *Engine) serve(ctx context.Context, strategy recommend.Strategy, fn func() ([]models.Recommendation, error)) []models.Recommendation {
	start := e.nowFunc()
	recs, err := fn()
	if err != nil {
		metrics.RecordRecommendationFailure(string(strategy))
		level := slog.LevelWarn
		if errors.Is(err, context.Canceled) {
			level = slog.LevelDebug
		}
		e.logger.Log(ctx, level, "recommendation lookup failed", "strategy", strategy, "error", err)
		return []models.Recommendation{}
	}
	metrics.RecordRecommendation(string(strategy), len(recs), e.nowFunc().Sub(start))
	return recs
}

// SubmitFeedback records feedback and updates derived state.
func (e *Engine) SubmitFeedback(ctx context.Context, sub feedback.Submission) (feedback.Result, error) {
	return e.feedback.Submit(ctx, sub)
}

// RecomputeSimilarity refreshes the similarity edges of a user.
func (e *Engine) RecomputeSimilarity(ctx context.Context, userID string) (similarity.Result, error) {
	userID, err := sanitize.ValidateID("user", userID)
	if err != nil {
		return similarity.Result{}, err
	}
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return similarity.Result{}, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	if user == nil {
		return similarity.Result{}, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	return e.similarity.Recompute(ctx, userID)
}

// SimilarUsers lists the similarity edges of a user.
func (e *Engine) SimilarUsers(ctx context.Context, userID string) ([]models.Similarity, error) {
	userID, err := sanitize.ValidateID("user", userID)
	if err != nil {
		return nil, err
	}
	return e.store.SimilarUsers(ctx, userID)
}

// Diagnosis summarizes the store for operators.
type Diagnosis struct {
	Stats        models.Stats `json:"stats"`
	MissingSeeds []string     `json:"missing_seeds,omitempty"`
}

// Diagnose reports graph counts and seed users missing from the store.
func (e *Engine) Diagnose(ctx context.Context) (Diagnosis, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return Diagnosis{}, fmt.Errorf("collecting stats: %w", err)
	}
	d := Diagnosis{Stats: stats}
	for _, seedID := range e.similarity.Policy().SeedUsers {
		u, err := e.store.GetUser(ctx, seedID)
		if err != nil {
			return d, fmt.Errorf("looking up seed user %s: %w", seedID, err)
		}
		if u == nil {
			d.MissingSeeds = append(d.MissingSeeds, seedID)
		}
	}
	return d, nil
}

// EmotionInfo describes one vocabulary entry.
type EmotionInfo struct {
	Name        models.Emotion `json:"name"`
	Description string         `json:"description"`
}

// Emotions returns the emotion vocabulary in canonical order.
func (e *Engine) Emotions() []EmotionInfo {
	return Vocabulary()
}

// Vocabulary lists every emotion with its description in canonical order.
func Vocabulary() []EmotionInfo {
	out := make([]EmotionInfo, 0, len(models.Emotions))
	for _, em := range models.Emotions {
		out = append(out, EmotionInfo{Name: em, Description: em.Description()})
	}
	return out
}

// Questions returns the questionnaire catalog.
func (e *Engine) Questions() []profile.Question {
	return profile.Questionnaire
}

// QuestionnaireCatalog is the questionnaire plus the characteristics that
// can be named as dealbreakers.
type QuestionnaireCatalog struct {
	Questions       []profile.Question `json:"questions"`
	Characteristics []string           `json:"characteristics"`
}

// Questionnaire returns the questions and the item characteristics present
// in the store.
func (e *Engine) Questionnaire(ctx context.Context) (QuestionnaireCatalog, error) {
	chars, err := e.store.Characteristics(ctx)
	if err != nil {
		return QuestionnaireCatalog{Questions: profile.Questionnaire, Characteristics: []string{}}, fmt.Errorf("listing characteristics: %w", err)
	}
	return QuestionnaireCatalog{Questions: profile.Questionnaire, Characteristics: chars}, nil
}

// UserProfile is the persisted view of a user.
type UserProfile struct {
	User           models.User            `json:"user"`
	EmotionalState *models.EmotionalState `json:"emotional_state,omitempty"`
	Resonances     []models.Resonance     `json:"resonances"`
}

// Profile reads back a user's stored profile, emotional state and
// resonances.
func (e *Engine) Profile(ctx context.Context, userID string) (UserProfile, error) {
	userID, err := sanitize.ValidateID("user", userID)
	if err != nil {
		return UserProfile{}, err
	}
	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	if user == nil {
		return UserProfile{}, fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}
	state, err := e.store.FindEmotionalState(ctx, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("reading emotional state of %s: %w", userID, err)
	}
	resonances, err := e.store.UserResonances(ctx, userID)
	if err != nil {
		return UserProfile{}, fmt.Errorf("reading resonances of %s: %w", userID, err)
	}
	return UserProfile{User: *user, EmotionalState: state, Resonances: resonances}, nil
}

// LoadCatalog loads reference data into the store.
func (e *Engine) LoadCatalog(ctx context.Context, cat *store.Catalog) (store.CatalogResult, error) {
	return store.LoadCatalog(ctx, e.store, cat)
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}
