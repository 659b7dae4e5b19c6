package store

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gamesoul/gamesoul/internal/constants"
	"github.com/gamesoul/gamesoul/internal/models"
)

//go:embed catalog/default.yaml
var defaultCatalog []byte

// Catalog is the reference data loaded into a store: items with their
// emotional resonance and the seed users used for cold-start similarity.
type Catalog struct {
	Items     []CatalogItem `yaml:"items"`
	SeedUsers []SeedUser    `yaml:"seed_users"`
}

// CatalogItem is an item plus its curated resonance intensities.
type CatalogItem struct {
	ID              string             `yaml:"id"`
	Name            string             `yaml:"name"`
	Description     string             `yaml:"description"`
	Characteristics []string           `yaml:"characteristics"`
	Resonances      map[string]float64 `yaml:"resonances"`
}

// SeedUser is a synthetic user with liked items and an emotional state.
type SeedUser struct {
	ID    string    `yaml:"id"`
	Likes []string  `yaml:"likes"`
	State SeedState `yaml:"state"`
}

// SeedState is the emotional state assigned to a seed user.
type SeedState struct {
	Emotion   string  `yaml:"emotion"`
	Intensity float64 `yaml:"intensity"`
}

// CatalogResult reports what LoadCatalog wrote.
type CatalogResult struct {
	Emotions   int `json:"emotions"`
	Items      int `json:"items"`
	Resonances int `json:"resonances"`
	SeedUsers  int `json:"seed_users"`
	SeedLikes  int `json:"seed_likes"`
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalogFile reads and parses a catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks ids, emotion names and intensities.
func (c *Catalog) Validate() error {
	items := make(map[string]bool, len(c.Items))
	for i, item := range c.Items {
		if item.ID == "" {
			return fmt.Errorf("%w: catalog item %d has no id", models.ErrValidation, i)
		}
		if items[item.ID] {
			return fmt.Errorf("%w: duplicate catalog item %s", models.ErrValidation, item.ID)
		}
		items[item.ID] = true
		for name, intensity := range item.Resonances {
			if _, err := models.ParseEmotion(name); err != nil {
				return fmt.Errorf("item %s: %w", item.ID, err)
			}
			if intensity < 0 || intensity > 1 {
				return fmt.Errorf("%w: item %s resonance %s must be in [0, 1]", models.ErrValidation, item.ID, name)
			}
		}
	}
	for _, seed := range c.SeedUsers {
		if seed.ID == "" {
			return fmt.Errorf("%w: seed user has no id", models.ErrValidation)
		}
		for _, itemID := range seed.Likes {
			if !items[itemID] {
				return fmt.Errorf("%w: seed user %s likes unknown item %s", models.ErrValidation, seed.ID, itemID)
			}
		}
		if seed.State.Emotion != "" {
			if _, err := models.ParseEmotion(seed.State.Emotion); err != nil {
				return fmt.Errorf("seed user %s: %w", seed.ID, err)
			}
		}
	}
	return nil
}

// LoadCatalog writes the emotion vocabulary and the catalog into s.
// Every write is an upsert, so loading twice leaves the store unchanged.
func LoadCatalog(ctx context.Context, s AffinityStore, cat *Catalog) (CatalogResult, error) {
	var result CatalogResult

	for _, e := range models.Emotions {
		if err := s.SaveEmotion(ctx, e, e.Description()); err != nil {
			return result, fmt.Errorf("loading emotion %s: %w", e, err)
		}
		result.Emotions++
	}

	for _, ci := range cat.Items {
		item := models.Item{
			ID:              ci.ID,
			Name:            ci.Name,
			Description:     ci.Description,
			Characteristics: ci.Characteristics,
		}
		if item.Name == "" {
			item.Name = ci.ID
		}
		if err := s.SaveItem(ctx, item); err != nil {
			return result, fmt.Errorf("loading item %s: %w", ci.ID, err)
		}
		result.Items++

		names := make([]string, 0, len(ci.Resonances))
		for name := range ci.Resonances {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			e, _ := models.ParseEmotion(name)
			if err := s.SetItemResonance(ctx, ci.ID, e, ci.Resonances[name]); err != nil {
				return result, fmt.Errorf("loading resonance %s/%s: %w", ci.ID, name, err)
			}
			result.Resonances++
		}
	}

	for _, seed := range cat.SeedUsers {
		if err := s.SaveUser(ctx, models.User{ID: seed.ID, Status: constants.UserStatusSeed}); err != nil {
			return result, fmt.Errorf("loading seed user %s: %w", seed.ID, err)
		}
		result.SeedUsers++

		for _, itemID := range seed.Likes {
			play := models.Play{UserID: seed.ID, ItemID: itemID, Liked: true}
			if err := s.UpsertPlayed(ctx, play); err != nil {
				return result, fmt.Errorf("loading seed like %s/%s: %w", seed.ID, itemID, err)
			}
			result.SeedLikes++
		}

		if seed.State.Emotion != "" {
			e, _ := models.ParseEmotion(seed.State.Emotion)
			state := models.EmotionalState{Emotion: e, Intensity: seed.State.Intensity, Provenance: models.SourceTypeSeed}
			if err := s.SetEmotionalState(ctx, seed.ID, state); err != nil {
				return result, fmt.Errorf("loading seed state %s: %w", seed.ID, err)
			}
		}
	}

	return result, nil
}
