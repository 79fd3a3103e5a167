package store

// FretboardShape is a fingering for one chord on a six-string guitar, low E to
// high e. Frets: -1 muted, 0 open, >0 fret number. Fingers: 0 open/unfretted,
// 1..4 index through pinky.
type FretboardShape struct {
	Frets   []int `json:"frets"`
	Fingers []int `json:"fingers"`
}

// FretboardEntry is a cached fingering keyed by the chord name.
type FretboardEntry struct {
	UID       string
	Key       string
	Chord     string
	Shape     *FretboardShape
	CreatedTs int64
}

type DeleteFretboardEntry struct {
	Key string
}
