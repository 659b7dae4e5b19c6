package models

import (
	"time"

	"github.com/gamesoul/gamesoul/internal/constants"
)

// EmotionalState is the user's current dominant emotion. A user has at most one.
type EmotionalState struct {
	Emotion    Emotion    `json:"emotion"`
	Intensity  float64    `json:"intensity"`
	Provenance SourceType `json:"provenance"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Resonance is a user's "also resonates with" association to an emotion.
// Keyed by (user, emotion).
type Resonance struct {
	Emotion   Emotion `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

// Play records feedback of a user on an item. Keyed by (UserID, ItemID).
type Play struct {
	UserID   string    `json:"user_id"`
	ItemID   string    `json:"item_id"`
	Liked    bool      `json:"liked"`
	Rating   *int      `json:"rating,omitempty"`
	Weight   float64   `json:"weight"`
	PlayedAt time.Time `json:"played_at"`
}

// Similarity is a directed user to user affinity. Keyed by (UserID, OtherID).
type Similarity struct {
	UserID        string     `json:"user_id"`
	OtherID       string     `json:"other_id"`
	Score         float64    `json:"score"`
	SharedCount   int        `json:"shared_count"`
	SharedItemIDs []string   `json:"shared_item_ids,omitempty"`
	Provenance    SourceType `json:"provenance"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SharedLikes describes two users who both liked SharedCount items.
type SharedLikes struct {
	UserID        string   `json:"user_id"`
	OtherID       string   `json:"other_id"`
	SharedCount   int      `json:"shared_count"`
	SharedItemIDs []string `json:"shared_item_ids"`
}

// ScoredItem is an item with a store-computed ranking score.
type ScoredItem struct {
	Item  Item    `json:"item"`
	Score float64 `json:"score"`
}

// Stats summarizes the affinity graph for diagnostics.
type Stats struct {
	Users           int `json:"users"`
	Items           int `json:"items"`
	Emotions        int `json:"emotions"`
	ItemResonances  int `json:"item_resonances"`
	UserResonances  int `json:"user_resonances"`
	EmotionalStates int `json:"emotional_states"`
	Plays           int `json:"plays"`
	Similarities    int `json:"similarities"`
}

// PlayWeight returns the edge weight derived from a liked flag.
func PlayWeight(liked bool) float64 {
	if liked {
		return constants.LikedWeight
	}
	return constants.DislikedWeight
}
