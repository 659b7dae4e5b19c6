package models

import (
	"fmt"
	"strings"
)

// Emotion is a member of the closed emotion vocabulary.
type Emotion string

const (
	EmotionRelaxing      Emotion = "relaxing"
	EmotionChallenging   Emotion = "challenging"
	EmotionExploratory   Emotion = "exploratory"
	EmotionSocial        Emotion = "social"
	EmotionCreative      Emotion = "creative"
	EmotionContemplative Emotion = "contemplative"
	EmotionJoyful        Emotion = "joyful"
	EmotionMelancholic   Emotion = "melancholic"
	EmotionCompetitive   Emotion = "competitive"
)

// Emotions lists the vocabulary in canonical order. Tie-breaks between
// equally weighted emotions follow this order.
var Emotions = []Emotion{
	EmotionRelaxing,
	EmotionChallenging,
	EmotionExploratory,
	EmotionSocial,
	EmotionCreative,
	EmotionContemplative,
	EmotionJoyful,
	EmotionMelancholic,
	EmotionCompetitive,
}

var emotionDescriptions = map[Emotion]string{
	EmotionRelaxing:      "Calm experiences without stress",
	EmotionChallenging:   "Experiences that test your skills",
	EmotionExploratory:   "Discovery and curiosity",
	EmotionSocial:        "Connecting with other people",
	EmotionCreative:      "Expression and building things",
	EmotionContemplative: "Reflective, thoughtful experiences",
	EmotionJoyful:        "Fun and positive experiences",
	EmotionMelancholic:   "Moving and nostalgic experiences",
	EmotionCompetitive:   "Competition and self-improvement",
}

// Valid reports whether e belongs to the vocabulary.
func (e Emotion) Valid() bool {
	_, ok := emotionDescriptions[e]
	return ok
}

// Description returns the human description of the emotion.
func (e Emotion) Description() string {
	return emotionDescriptions[e]
}

// String returns the string representation of the emotion.
func (e Emotion) String() string {
	return string(e)
}

// Rank returns the position of e in canonical order, or -1 if unknown.
func (e Emotion) Rank() int {
	for i, known := range Emotions {
		if known == e {
			return i
		}
	}
	return -1
}

// ParseEmotion normalizes s and checks it against the vocabulary.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: unknown emotion %q", ErrValidation, s)
	}
	return e, nil
}
