package store

// ChartMeasure is one measure of a chart line. Chords may contain several
// space-separated chord names (e.g. "G7 Am").
type ChartMeasure struct {
	Chords    string  `json:"chords"`
	StartTime float64 `json:"startTime"`
}

// ChartLine is one lyric line with its measures and start offset in seconds.
type ChartLine struct {
	Lyrics    string         `json:"lyrics"`
	StartTime float64        `json:"startTime"`
	Measures  []ChartMeasure `json:"measures"`
}

// ChartSheet is the structured chord/lyrics/timing document for one song.
type ChartSheet struct {
	Lines        []ChartLine `json:"lines"`
	UniqueChords []string    `json:"uniqueChords"`
}

// ChartEntry is a cached chord chart with the provenance fields the library
// read paths depend on. CreatedTs is internal bookkeeping and is never part of
// the artifact returned to callers.
type ChartEntry struct {
	UID string
	// Key is the sanitized storage identifier derived from (SongURI, ArrangementStyle).
	Key string
	// SongURI is the catalog URI the chart was generated for.
	SongURI string
	// ArrangementStyle the chart was generated with, "Standard" when unspecified.
	ArrangementStyle string
	// SearchTokens are the lower-cased track title and artist names.
	SearchTokens []string
	Sheet        *ChartSheet
	CreatedTs    int64
}

type FindChartEntry struct {
	Key *string
	// Token filters entries whose SearchTokens set contains the exact token.
	Token *string
	Limit *int
}

type DeleteChartEntry struct {
	Key string
}
