package chart

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// recentScanWindow is how many of the newest entries are scanned before
// deduplication and style filtering. Both steps shrink the candidate set, so
// the scan over-fetches relative to the requested count.
const recentScanWindow = 50

// hydrationConcurrency bounds parallel catalog lookups per request.
const hydrationConcurrency = 4

// ChartRef identifies one cached chart.
type ChartRef struct {
	SongURI          string `json:"songUri"`
	ArrangementStyle string `json:"arrangementStyle"`
	CreatedTs        int64  `json:"createdTs,omitempty"`
}

// LibraryRow is a chart reference hydrated with catalog metadata for display.
type LibraryRow struct {
	URI              string   `json:"uri"`
	Name             string   `json:"name"`
	Artists          []string `json:"artists"`
	ArtURL           string   `json:"art"`
	PreviewURL       string   `json:"previewUrl,omitempty"`
	ArrangementStyle string   `json:"arrangementStyle"`
	IsGenerated      bool     `json:"isGenerated"`
}

// Recent returns up to limit references to the most recently generated
// charts, one per song, restricted to the given arrangement style. A song
// counts toward whichever style its newest chart was generated with, so a
// fresh Pop regeneration removes the song from the Standard list.
func (s *Service) Recent(ctx context.Context, limit int, style string) ([]ChartRef, error) {
	if limit <= 0 {
		limit = 10
	}
	window := recentScanWindow
	if limit*5 > window {
		window = limit * 5
	}

	entries, err := s.store.ListRecentChartEntries(ctx, window)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent charts")
	}

	style = NormalizeStyle(style)
	seen := make(map[string]bool, len(entries))
	refs := []ChartRef{}
	for _, entry := range entries {
		// Newest-first input; the first occurrence of a song wins.
		if seen[entry.SongURI] {
			continue
		}
		seen[entry.SongURI] = true
		if NormalizeStyle(entry.ArrangementStyle) != style {
			continue
		}
		refs = append(refs, ChartRef{
			SongURI:          entry.SongURI,
			ArrangementStyle: entry.ArrangementStyle,
			CreatedTs:        entry.CreatedTs,
		})
		if len(refs) == limit {
			break
		}
	}
	return refs, nil
}

// Search returns references to cached charts whose token set contains the
// query as an exact lower-cased token, one per song.
func (s *Service) Search(ctx context.Context, query string) ([]ChartRef, error) {
	token := strings.ToLower(strings.TrimSpace(query))
	if token == "" {
		return []ChartRef{}, nil
	}

	entries, err := s.store.SearchChartEntries(ctx, token)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search charts for %q", token)
	}

	seen := make(map[string]bool, len(entries))
	refs := []ChartRef{}
	for _, entry := range entries {
		if seen[entry.SongURI] {
			continue
		}
		seen[entry.SongURI] = true
		refs = append(refs, ChartRef{
			SongURI:          entry.SongURI,
			ArrangementStyle: entry.ArrangementStyle,
			CreatedTs:        entry.CreatedTs,
		})
	}
	return refs, nil
}

// Hydrate resolves catalog metadata for each reference, preserving order.
// References the catalog cannot resolve are dropped rather than failing the
// whole batch.
func (s *Service) Hydrate(ctx context.Context, refs []ChartRef) ([]*LibraryRow, error) {
	rows := make([]*LibraryRow, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrationConcurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			track, err := s.catalog.GetTrack(gctx, ref.SongURI)
			if err != nil {
				slog.Warn("dropping library row, catalog lookup failed",
					slog.String("uri", ref.SongURI), slog.Any("error", err))
				return nil
			}
			if track == nil {
				return nil
			}
			rows[i] = &LibraryRow{
				URI:              track.URI,
				Name:             track.Name,
				Artists:          track.Artists,
				ArtURL:           track.ArtURL,
				PreviewURL:       track.PreviewURL,
				ArrangementStyle: NormalizeStyle(ref.ArrangementStyle),
				IsGenerated:      true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hydrated := make([]*LibraryRow, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			hydrated = append(hydrated, row)
		}
	}
	return hydrated, nil
}

// AnnotateTracks marks catalog search results that already have a cached
// chart for the given style.
func (s *Service) AnnotateTracks(ctx context.Context, rows []*LibraryRow, style string) {
	for _, row := range rows {
		row.IsGenerated = s.ChartExists(ctx, row.URI, style)
	}
}
