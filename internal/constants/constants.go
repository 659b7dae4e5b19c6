// Package constants provides named constants used throughout the gamesoul codebase.
// This centralizes policy values for better maintainability and documentation.
package constants

// Questionnaire defaults
const (
	// DefaultDominantEmotion is used when no answer maps to a known emotion.
	DefaultDominantEmotion = "relaxing"

	// DefaultTimePreference is used when the time_available answer is missing.
	DefaultTimePreference = "medium"

	// TimeAvailableQuestion is the questionnaire key carrying the time preference.
	TimeAvailableQuestion = "time_available"

	// ResonanceThreshold is the minimum normalized weight for an emotion to be
	// persisted as an additional resonance edge of the user.
	ResonanceThreshold = 0.1

	// EmptyProfileIntensity is the emotional state intensity used when the
	// profile carries no weight for its dominant emotion.
	EmptyProfileIntensity = 1.0
)

// Similarity policy defaults. All of these can be overridden through config.
const (
	// DefaultMinSharedItems is the minimum number of commonly liked items for
	// two users to be linked by a natural similarity edge.
	DefaultMinSharedItems = 1

	// DefaultSimilarityScale converts a shared item count into a similarity score.
	// Social recommendation scores use the same factor per similar user.
	DefaultSimilarityScale = 0.2

	// DefaultSeedSimilarity is the fixed score of a bootstrap edge to a seed user.
	DefaultSeedSimilarity = 0.4

	// DefaultSeedAdmission is the probability of linking a candidate seed user.
	DefaultSeedAdmission = 0.3

	// MaxSharedItemSample bounds the shared item id list kept on a similarity edge.
	MaxSharedItemSample = 10
)

// DefaultSeedUsers is the pool of bootstrap users used for cold-start similarity.
var DefaultSeedUsers = []string{"seed_relaxed", "seed_adventurer"}

// Feedback ingestion constants
const (
	// AutoStateEmotion is assigned when feedback arrives for a user with no
	// emotional state and the item has no resonance data.
	AutoStateEmotion = "joyful"

	// AutoStateIntensity is the intensity of an automatically derived emotional state.
	AutoStateIntensity = 0.7

	// LikedWeight and DislikedWeight are the play edge weights derived from feedback.
	LikedWeight    = 1.0
	DislikedWeight = -0.5

	// MinRating and MaxRating bound the optional feedback rating.
	MinRating = 1
	MaxRating = 5

	// PlaceholderItemDescription describes items created lazily by feedback.
	PlaceholderItemDescription = "Automatically created item"
)

// Recommendation constants
const (
	// RecommendationLimit caps every recommendation list.
	RecommendationLimit = 5
)

// Recommendation reason templates.
const (
	ReasonEmotionalState = "resonates with your emotion: %s"
	ReasonByEmotion      = "good for when you feel: %s"
	ReasonSocial         = "users like you also played this"
)

// User status values.
const (
	UserStatusActive = "active"
	UserStatusSeed   = "seed"
)
