package models

import "time"

// User is a person receiving recommendations.
type User struct {
	ID              string    `json:"id" yaml:"id"`
	DominantEmotion Emotion   `json:"dominant_emotion,omitempty" yaml:"dominant_emotion,omitempty"`
	TimePreference  string    `json:"time_preference,omitempty" yaml:"time_preference,omitempty"`
	Status          string    `json:"status,omitempty" yaml:"status,omitempty"`
	RegisteredAt    time.Time `json:"registered_at" yaml:"registered_at"`
	LastActivityAt  time.Time `json:"last_activity_at" yaml:"last_activity_at"`
}

// Item is a recommendable game.
type Item struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	Characteristics []string `json:"characteristics,omitempty" yaml:"characteristics,omitempty"`
}

// HasAny reports whether the item carries any of the given characteristics.
func (i Item) HasAny(characteristics []string) bool {
	for _, want := range characteristics {
		for _, have := range i.Characteristics {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Profile is the emotional profile computed from questionnaire answers.
type Profile struct {
	UserID          string              `json:"user_id,omitempty"`
	DominantEmotion Emotion             `json:"dominant_emotion"`
	TimePreference  string              `json:"time_preference"`
	EmotionWeights  map[Emotion]float64 `json:"emotion_weights"`
}

// Recommendation is a ranked item suggestion with human readable reasons.
type Recommendation struct {
	ItemID      string   `json:"item_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons"`
}
