package profile

import (
	"sort"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
)

// Builder computes emotional profiles from questionnaire answers.
// It is a pure function of its rule table and input.
type Builder struct {
	rules RuleTable
}

// NewBuilder creates a builder over the given rule table.
// A nil table uses DefaultRules.
func NewBuilder(rules RuleTable) *Builder {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Builder{rules: rules}
}

// Build maps answers (question id -> answer id) to a normalized profile.
// Unmapped pairs are ignored. Weights sum to 1 when any answer maps to an
// emotion; otherwise the weight map is empty and the dominant emotion falls
// back to the default.
func (b *Builder) Build(answers map[string]string) models.Profile {
	weights := make(map[models.Emotion]float64)

	// Sorted iteration keeps floating point sums reproducible.
	questions := make([]string, 0, len(answers))
	for q := range answers {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	for _, q := range questions {
		for _, contrib := range b.rules[RuleKey{Question: q, Answer: answers[q]}] {
			weights[contrib.Emotion] += contrib.Weight
		}
	}

	Normalize(weights)

	timePref := constants.DefaultTimePreference
	if v, ok := answers[constants.TimeAvailableQuestion]; ok && v != "" {
		timePref = v
	}

	return models.Profile{
		DominantEmotion: Dominant(weights),
		TimePreference:  timePref,
		EmotionWeights:  weights,
	}
}

// Normalize divides every weight by the total in place.
// A zero total leaves the map untouched.
func Normalize(weights map[models.Emotion]float64) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return
	}
	for e, w := range weights {
		weights[e] = w / total
	}
}

// Dominant returns the highest weighted emotion. Ties go to the emotion
// that comes first in canonical order; an empty map yields the default.
func Dominant(weights map[models.Emotion]float64) models.Emotion {
	best := models.Emotion(constants.DefaultDominantEmotion)
	bestWeight := 0.0
	found := false
	for _, e := range models.Emotions {
		w, ok := weights[e]
		if !ok {
			continue
		}
		if !found || w > bestWeight {
			best, bestWeight, found = e, w, true
		}
	}
	return best
}

// Build computes a profile with the default rule table.
func Build(answers map[string]string) models.Profile {
	return NewBuilder(nil).Build(answers)
}
