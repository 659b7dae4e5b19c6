package mcp

import (
	"github.com/gamesoul/gamesoul/internal/engine"
	"github.com/gamesoul/gamesoul/internal/models"
	"github.com/gamesoul/gamesoul/internal/profile"
)

// QuestionnaireInput defines the input for gamesoul_questionnaire tool.
type QuestionnaireInput struct {
	UserID       string            `json:"user_id" jsonschema:"Player identifier"`
	Answers      map[string]string `json:"answers" jsonschema:"Answers keyed by question id, values are option ids (see gamesoul_questions)"`
	Dealbreakers []string          `json:"dealbreakers,omitempty" jsonschema:"Game characteristics to exclude, e.g. combat or multiplayer"`
}

// QuestionnaireOutput defines the output for gamesoul_questionnaire tool.
type QuestionnaireOutput struct {
	Profile         models.Profile          `json:"profile" jsonschema:"Emotional profile built from the answers"`
	Recommendations []models.Recommendation `json:"recommendations" jsonschema:"Games matching the profile's dominant emotion"`
}

// QuestionsInput defines the input for gamesoul_questions tool.
type QuestionsInput struct{}

// QuestionsOutput defines the output for gamesoul_questions tool.
type QuestionsOutput struct {
	Questions       []profile.Question `json:"questions" jsonschema:"Questionnaire with the option ids accepted as answers"`
	Characteristics []string           `json:"characteristics" jsonschema:"Game characteristics accepted as dealbreakers"`
}

// RecommendInput defines the input for gamesoul_recommend tool.
type RecommendInput struct {
	Mode         string   `json:"mode,omitempty" jsonschema:"Strategy: emotional (default), emotion, social or mixed"`
	UserID       string   `json:"user_id,omitempty" jsonschema:"Player identifier, required except for mode emotion"`
	Emotion      string   `json:"emotion,omitempty" jsonschema:"Emotion to recommend for, required for mode emotion"`
	Dealbreakers []string `json:"dealbreakers,omitempty" jsonschema:"Game characteristics to exclude"`
}

// RecommendOutput defines the output for gamesoul_recommend tool.
type RecommendOutput struct {
	Mode            string                  `json:"mode"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Count           int                     `json:"count"`
}

// FeedbackInput defines the input for gamesoul_feedback tool.
type FeedbackInput struct {
	UserID string `json:"user_id" jsonschema:"Player identifier"`
	ItemID string `json:"item_id" jsonschema:"Game identifier; unknown games are created as placeholders"`
	Liked  bool   `json:"liked" jsonschema:"Whether the player liked the game"`
	Rating *int   `json:"rating,omitempty" jsonschema:"Optional rating from 1 to 5"`
}

// FeedbackOutput defines the output for gamesoul_feedback tool.
type FeedbackOutput struct {
	ItemCreated   bool   `json:"item_created"`
	StateAssigned string `json:"state_assigned,omitempty" jsonschema:"Emotional state assigned to a player who had none"`
	NaturalEdges  int    `json:"natural_edges" jsonschema:"Similarity edges to players with shared likes"`
	SeedEdges     int    `json:"seed_edges" jsonschema:"Bootstrap similarity edges to seed players"`
	Message       string `json:"message"`
}

// EmotionsInput defines the input for gamesoul_emotions tool.
type EmotionsInput struct{}

// EmotionsOutput defines the output for gamesoul_emotions tool.
type EmotionsOutput struct {
	Emotions []engine.EmotionInfo `json:"emotions"`
}

// ProfileInput defines the input for gamesoul_profile tool.
type ProfileInput struct {
	UserID string `json:"user_id" jsonschema:"Player identifier"`
}

// ProfileOutput defines the output for gamesoul_profile tool.
type ProfileOutput struct {
	User           models.User            `json:"user"`
	EmotionalState *models.EmotionalState `json:"emotional_state,omitempty" jsonschema:"Current emotional state, absent until one is assigned"`
	Resonances     []models.Resonance     `json:"resonances" jsonschema:"Emotions the player also resonates with, strongest first"`
}
