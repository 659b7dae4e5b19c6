package models

// SourceType indicates where a derived edge came from
type SourceType string

const (
	SourceTypeQuestionnaire SourceType = "questionnaire"  // Computed from questionnaire answers
	SourceTypeAutoGenerated SourceType = "auto-generated" // Derived from feedback on an item
	SourceTypeNatural       SourceType = "natural"        // Computed from shared likes
	SourceTypeSeed          SourceType = "seed"           // Synthetic bootstrap data
)
