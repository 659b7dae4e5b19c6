// Package profile turns questionnaire answers into an emotional profile.
//
// The questionnaire is plain data: every (question, answer) pair maps to a
// list of emotion contributions. The builder only sums, normalizes and picks
// the dominant emotion, so the table can be extended without touching it.
package profile

import "github.com/gamesoul/gamesoul/internal/models"

// Contribution adds Weight to Emotion when an answer is selected.
type Contribution struct {
	Emotion models.Emotion `json:"emotion" yaml:"emotion"`
	Weight  float64        `json:"weight" yaml:"weight"`
}

// Option is one selectable answer of a question.
type Option struct {
	ID            string         `json:"id" yaml:"id"`
	Label         string         `json:"label" yaml:"label"`
	Contributions []Contribution `json:"contributions,omitempty" yaml:"contributions,omitempty"`
}

// Question is a questionnaire entry.
type Question struct {
	ID      string   `json:"id" yaml:"id"`
	Text    string   `json:"text" yaml:"text"`
	Options []Option `json:"options" yaml:"options"`
}

func c(e models.Emotion, w float64) Contribution {
	return Contribution{Emotion: e, Weight: w}
}

// Questionnaire is the default question set.
var Questionnaire = []Question{
	{
		ID:   "experience_type",
		Text: "What kind of experience are you looking for right now?",
		Options: []Option{
			{ID: "relax", Label: "Relax", Contributions: []Contribution{c(models.EmotionRelaxing, 0.9), c(models.EmotionContemplative, 0.4)}},
			{ID: "excitement", Label: "Feel excitement", Contributions: []Contribution{c(models.EmotionChallenging, 0.7), c(models.EmotionJoyful, 0.6)}},
			{ID: "challenge", Label: "Challenge myself", Contributions: []Contribution{c(models.EmotionChallenging, 0.9), c(models.EmotionCompetitive, 0.5)}},
			{ID: "exploration", Label: "Explore something new", Contributions: []Contribution{c(models.EmotionExploratory, 0.9), c(models.EmotionCreative, 0.4)}},
			{ID: "connection", Label: "Connect with others", Contributions: []Contribution{c(models.EmotionSocial, 0.9), c(models.EmotionJoyful, 0.3)}},
		},
	},
	{
		ID:   "time_available",
		Text: "How much time do you have to play?",
		Options: []Option{
			{ID: "very_short", Label: "Less than 30 minutes"},
			{ID: "short", Label: "Between 30 minutes and 1 hour"},
			{ID: "medium", Label: "Between 1 and 3 hours"},
			{ID: "long", Label: "Between 3 and 8 hours"},
			{ID: "very_long", Label: "More than 8 hours"},
		},
	},
	{
		ID:   "mood",
		Text: "How would you describe your current mood?",
		Options: []Option{
			{ID: "energetic", Label: "Energetic", Contributions: []Contribution{c(models.EmotionJoyful, 0.7), c(models.EmotionChallenging, 0.6), c(models.EmotionCompetitive, 0.5)}},
			{ID: "calm", Label: "Calm", Contributions: []Contribution{c(models.EmotionRelaxing, 0.8), c(models.EmotionContemplative, 0.6)}},
			{ID: "bored", Label: "Bored", Contributions: []Contribution{c(models.EmotionExploratory, 0.7), c(models.EmotionChallenging, 0.5)}},
			{ID: "nostalgic", Label: "Nostalgic", Contributions: []Contribution{c(models.EmotionMelancholic, 0.8), c(models.EmotionContemplative, 0.6)}},
			{ID: "curious", Label: "Curious", Contributions: []Contribution{c(models.EmotionExploratory, 0.9), c(models.EmotionCreative, 0.5)}},
			{ID: "stressed", Label: "Stressed", Contributions: []Contribution{c(models.EmotionRelaxing, 0.8), c(models.EmotionSocial, 0.4)}},
		},
	},
	{
		ID:   "preferred_activity",
		Text: "If you had to pick an activity right now, which would it be?",
		Options: []Option{
			{ID: "puzzle", Label: "Solve a puzzle", Contributions: []Contribution{c(models.EmotionChallenging, 0.7), c(models.EmotionContemplative, 0.5)}},
			{ID: "story", Label: "Tell a story", Contributions: []Contribution{c(models.EmotionCreative, 0.8), c(models.EmotionSocial, 0.6)}},
			{ID: "build", Label: "Build something", Contributions: []Contribution{c(models.EmotionCreative, 0.9), c(models.EmotionRelaxing, 0.4)}},
			{ID: "compete", Label: "Compete", Contributions: []Contribution{c(models.EmotionCompetitive, 0.9), c(models.EmotionChallenging, 0.7)}},
			{ID: "discover", Label: "Discover a new place", Contributions: []Contribution{c(models.EmotionExploratory, 0.9), c(models.EmotionJoyful, 0.4)}},
		},
	},
	{
		ID:   "emotional_goal",
		Text: "What would you like to feel after playing?",
		Options: []Option{
			{ID: "satisfaction", Label: "Satisfaction from beating a challenge", Contributions: []Contribution{c(models.EmotionChallenging, 0.9), c(models.EmotionCompetitive, 0.6)}},
			{ID: "calm", Label: "Calm and peace", Contributions: []Contribution{c(models.EmotionRelaxing, 0.9), c(models.EmotionContemplative, 0.6)}},
			{ID: "wonder", Label: "Wonder and curiosity", Contributions: []Contribution{c(models.EmotionExploratory, 0.8), c(models.EmotionContemplative, 0.5)}},
			{ID: "fun", Label: "Fun and joy", Contributions: []Contribution{c(models.EmotionJoyful, 0.9), c(models.EmotionSocial, 0.6)}},
			{ID: "connection", Label: "Connection with a story or characters", Contributions: []Contribution{c(models.EmotionMelancholic, 0.6), c(models.EmotionContemplative, 0.8)}},
		},
	},
}

// RuleKey identifies a (question, answer) pair.
type RuleKey struct {
	Question string
	Answer   string
}

// RuleTable maps answers to the emotion contributions they produce.
type RuleTable map[RuleKey][]Contribution

// NewRuleTable flattens a question set into a rule table.
func NewRuleTable(questions []Question) RuleTable {
	table := make(RuleTable)
	for _, q := range questions {
		for _, opt := range q.Options {
			if len(opt.Contributions) == 0 {
				continue
			}
			key := RuleKey{Question: q.ID, Answer: opt.ID}
			table[key] = append(table[key], opt.Contributions...)
		}
	}
	return table
}

// DefaultRules returns the rule table for the default questionnaire.
func DefaultRules() RuleTable {
	return NewRuleTable(Questionnaire)
}
