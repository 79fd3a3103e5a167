package store

// Accompaniment is a playing-style suggestion for one chord progression.
type Accompaniment struct {
	PlayingStyle     string `json:"playingStyleSuggestion"`
	StrummingPattern string `json:"strummingPattern"`
	// AdvancedTechniques is optional and may be empty.
	AdvancedTechniques string `json:"advancedTechniques,omitempty"`
}

// AccompanimentEntry is a cached accompaniment keyed by the chart's unique
// chord set plus arrangement style.
type AccompanimentEntry struct {
	UID              string
	Key              string
	ArrangementStyle string
	Text             *Accompaniment
	CreatedTs        int64
}

type DeleteAccompanimentEntry struct {
	Key string
}
