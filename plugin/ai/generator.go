// Package ai implements the generation collaborator: the expensive,
// non-deterministic model calls that produce chord charts, fretboard
// fingerings and accompaniment suggestions.
package ai

import (
	"context"

	"github.com/martin635579763/chordsync/store"
)

// ChartRequest identifies the song and arrangement to chart.
type ChartRequest struct {
	// SongURI is a catalog URI (spotify:track:...) or a local:file:<name> upload id.
	SongURI          string
	ArrangementStyle string
}

// AccompanimentRequest carries the chart context for playing-style suggestions.
type AccompanimentRequest struct {
	SongName         string
	ArtistName       string
	Sheet            *store.ChartSheet
	ArrangementStyle string
}

// Generator produces generation artifacts. Implementations must be safe for
// concurrent use.
type Generator interface {
	GenerateChart(ctx context.Context, req ChartRequest) (*store.ChartSheet, error)
	GenerateFretboard(ctx context.Context, chord string) (*store.FretboardShape, error)
	GenerateAccompaniment(ctx context.Context, req AccompanimentRequest) (*store.Accompaniment, error)
}
