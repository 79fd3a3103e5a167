// Package chart orchestrates the get-or-generate lifecycle for chord charts,
// fretboard shapes and accompaniment suggestions: cache key derivation, cache
// lookup, model generation, post-processing and persistence policy.
package chart

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/martin635579763/chordsync/plugin/ai"
	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/server/auth"
	"github.com/martin635579763/chordsync/store"
)

// Service coordinates the cache and the generation collaborators. All methods
// are safe for concurrent use.
type Service struct {
	store     *store.Store
	generator ai.Generator
	catalog   catalog.Service
	gate      *auth.AdminGate

	metrics Metrics
	// group collapses concurrent generations for the same storage key into a
	// single model call.
	group singleflight.Group
}

func NewService(st *store.Store, generator ai.Generator, cat catalog.Service, gate *auth.AdminGate) *Service {
	return &Service{
		store:     st,
		generator: generator,
		catalog:   cat,
		gate:      gate,
	}
}

// Stats returns a snapshot of the cache and generation counters.
func (s *Service) Stats() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// GetChartRequest identifies the chart to fetch or generate.
type GetChartRequest struct {
	SongURI          string
	ArrangementStyle string
	// ForceNew bypasses the cache and overwrites the cached entry on success.
	// Requires an authorized session.
	ForceNew     bool
	SessionToken string
}

// GetChart returns the chord chart for the requested song and arrangement,
// generating and caching it on a miss. A cache read failure is treated as a
// miss; a cached result is returned without consulting the generator.
func (s *Service) GetChart(ctx context.Context, req GetChartRequest) (*store.ChartSheet, error) {
	if strings.TrimSpace(req.SongURI) == "" {
		return nil, errors.New("song uri is required")
	}
	if req.ForceNew && !s.gate.IsAuthorized(ctx, req.SessionToken) {
		return nil, ErrUnauthorized
	}

	key := SanitizeStorageID(ChartCacheKey(req.SongURI, req.ArrangementStyle))
	if !req.ForceNew {
		if entry := s.cachedChart(ctx, key); entry != nil {
			s.metrics.hits.Add(1)
			return entry.Sheet, nil
		}
		s.metrics.misses.Add(1)
	}

	v, err, _ := s.group.Do("chart:"+key, func() (any, error) {
		return s.generateChart(ctx, req, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.ChartSheet), nil
}

func (s *Service) cachedChart(ctx context.Context, key string) *store.ChartEntry {
	entry, err := s.store.GetChartEntry(ctx, key)
	if err != nil {
		s.metrics.readErrors.Add(1)
		slog.Warn("chart cache read failed, regenerating", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	if entry == nil || entry.Sheet == nil {
		return nil
	}
	return entry
}

func (s *Service) generateChart(ctx context.Context, req GetChartRequest, key string) (*store.ChartSheet, error) {
	s.metrics.generations.Add(1)
	sheet, err := s.generator.GenerateChart(ctx, ai.ChartRequest{
		SongURI:          req.SongURI,
		ArrangementStyle: req.ArrangementStyle,
	})
	if err != nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "chart for %q: %v", req.SongURI, err)
	}
	if sheet == nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "chart for %q: empty result", req.SongURI)
	}
	RecomputeUniqueChords(sheet)

	// Local uploads have no stable identifier across sessions, so their
	// charts are served but never persisted.
	if catalog.IsCatalogURI(req.SongURI) {
		s.persistChart(ctx, req, key, sheet)
	}
	return sheet, nil
}

// persistChart writes the generated sheet through to the cache. A write
// failure downgrades the request to generate-only; the caller still gets the
// sheet.
func (s *Service) persistChart(ctx context.Context, req GetChartRequest, key string, sheet *store.ChartSheet) {
	entry := &store.ChartEntry{
		Key:              key,
		SongURI:          req.SongURI,
		ArrangementStyle: NormalizeStyle(req.ArrangementStyle),
		SearchTokens:     s.resolveSearchTokens(ctx, req.SongURI),
		Sheet:            sheet,
	}
	if _, err := s.store.UpsertChartEntry(ctx, entry); err != nil {
		s.metrics.writeErrors.Add(1)
		slog.Warn("failed to cache chart", slog.String("key", key), slog.Any("error", err))
	}
}

// resolveSearchTokens resolves track metadata at write time. When the catalog
// is unavailable the entry is stored with an empty token set; it stays
// reachable by key and in the recent list, just not through search.
func (s *Service) resolveSearchTokens(ctx context.Context, songURI string) []string {
	track, err := s.catalog.GetTrack(ctx, songURI)
	if err != nil {
		slog.Warn("catalog lookup failed, caching chart without search tokens",
			slog.String("uri", songURI), slog.Any("error", err))
		return []string{}
	}
	if track == nil {
		return []string{}
	}
	return SearchTokens(track.Name, track.Artists)
}

// ChartExists reports whether a chart for the song and style is already
// cached. Lookup failures read as absent.
func (s *Service) ChartExists(ctx context.Context, songURI, style string) bool {
	key := SanitizeStorageID(ChartCacheKey(songURI, style))
	exists, err := s.store.ChartEntryExists(ctx, key)
	if err != nil {
		s.metrics.readErrors.Add(1)
		slog.Warn("chart existence check failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return exists
}

// DeleteChart removes the cached chart for the song and style. Deleting an
// absent entry succeeds. Requires an authorized session.
func (s *Service) DeleteChart(ctx context.Context, songURI, style, sessionToken string) error {
	if !s.gate.IsAuthorized(ctx, sessionToken) {
		return ErrUnauthorized
	}
	key := SanitizeStorageID(ChartCacheKey(songURI, style))
	return s.store.DeleteChartEntry(ctx, &store.DeleteChartEntry{Key: key})
}

// GetFretboard returns the fingering shape for a chord name, generating and
// caching it on a miss.
func (s *Service) GetFretboard(ctx context.Context, chordName string) (*store.FretboardShape, error) {
	if strings.TrimSpace(chordName) == "" {
		return nil, errors.New("chord name is required")
	}

	key := SanitizeStorageID(FretboardCacheKey(chordName))
	entry, err := s.store.GetFretboardEntry(ctx, key)
	if err != nil {
		s.metrics.readErrors.Add(1)
		slog.Warn("fretboard cache read failed, regenerating", slog.String("key", key), slog.Any("error", err))
	} else if entry != nil && entry.Shape != nil {
		s.metrics.hits.Add(1)
		return entry.Shape, nil
	}
	s.metrics.misses.Add(1)

	v, err, _ := s.group.Do("fretboard:"+key, func() (any, error) {
		return s.generateFretboard(ctx, chordName, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.FretboardShape), nil
}

func (s *Service) generateFretboard(ctx context.Context, chordName, key string) (*store.FretboardShape, error) {
	s.metrics.generations.Add(1)
	shape, err := s.generator.GenerateFretboard(ctx, chordName)
	if err != nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "fretboard for %q: %v", chordName, err)
	}
	if shape == nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "fretboard for %q: empty result", chordName)
	}
	if _, err := s.store.UpsertFretboardEntry(ctx, &store.FretboardEntry{Key: key, Chord: chordName, Shape: shape}); err != nil {
		s.metrics.writeErrors.Add(1)
		slog.Warn("failed to cache fretboard", slog.String("key", key), slog.Any("error", err))
	}
	return shape, nil
}

// GetAccompanimentRequest carries the chart context accompaniment advice is
// derived from.
type GetAccompanimentRequest struct {
	SongName         string
	ArtistName       string
	Sheet            *store.ChartSheet
	ArrangementStyle string
}

// GetAccompaniment returns playing-style advice for a chart, generating and
// caching it on a miss. The cache key depends only on the chart's unique
// chords and the arrangement style, so different songs sharing a progression
// share the advice.
func (s *Service) GetAccompaniment(ctx context.Context, req GetAccompanimentRequest) (*store.Accompaniment, error) {
	if req.Sheet == nil || len(req.Sheet.UniqueChords) == 0 {
		return nil, errors.Wrap(ErrGenerationFailed, "chart has no chords to accompany")
	}

	key := SanitizeStorageID(AccompanimentCacheKey(req.Sheet.UniqueChords, req.ArrangementStyle))
	entry, err := s.store.GetAccompanimentEntry(ctx, key)
	if err != nil {
		s.metrics.readErrors.Add(1)
		slog.Warn("accompaniment cache read failed, regenerating", slog.String("key", key), slog.Any("error", err))
	} else if entry != nil && entry.Text != nil {
		s.metrics.hits.Add(1)
		return entry.Text, nil
	}
	s.metrics.misses.Add(1)

	v, err, _ := s.group.Do("accompaniment:"+key, func() (any, error) {
		return s.generateAccompaniment(ctx, req, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Accompaniment), nil
}

func (s *Service) generateAccompaniment(ctx context.Context, req GetAccompanimentRequest, key string) (*store.Accompaniment, error) {
	s.metrics.generations.Add(1)
	suggestion, err := s.generator.GenerateAccompaniment(ctx, ai.AccompanimentRequest{
		SongName:         req.SongName,
		ArtistName:       req.ArtistName,
		Sheet:            req.Sheet,
		ArrangementStyle: req.ArrangementStyle,
	})
	if err != nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "accompaniment for %q: %v", key, err)
	}
	if suggestion == nil {
		s.metrics.failures.Add(1)
		return nil, errors.Wrapf(ErrGenerationFailed, "accompaniment for %q: empty result", key)
	}
	upsert := &store.AccompanimentEntry{
		Key:              key,
		ArrangementStyle: NormalizeStyle(req.ArrangementStyle),
		Text:             suggestion,
	}
	if _, err := s.store.UpsertAccompanimentEntry(ctx, upsert); err != nil {
		s.metrics.writeErrors.Add(1)
		slog.Warn("failed to cache accompaniment", slog.String("key", key), slog.Any("error", err))
	}
	return suggestion, nil
}

// RecomputeUniqueChords rebuilds the sheet's unique chord list from its
// measures in order of first appearance. Generators over- or under-report the
// list, so the measures are authoritative. A sheet without lines keeps its
// declared list, deduplicated.
func RecomputeUniqueChords(sheet *store.ChartSheet) {
	if sheet == nil {
		return
	}
	if len(sheet.Lines) == 0 {
		sheet.UniqueChords = dedupeChords(sheet.UniqueChords)
		return
	}

	seen := make(map[string]bool)
	ordered := []string{}
	for _, line := range sheet.Lines {
		for _, measure := range line.Measures {
			for _, chord := range strings.Fields(measure.Chords) {
				if seen[chord] {
					continue
				}
				seen[chord] = true
				ordered = append(ordered, chord)
			}
		}
	}
	sheet.UniqueChords = ordered
}

func dedupeChords(chords []string) []string {
	seen := make(map[string]bool, len(chords))
	deduped := []string{}
	for _, raw := range chords {
		chord := strings.TrimSpace(raw)
		if chord == "" || seen[chord] {
			continue
		}
		seen[chord] = true
		deduped = append(deduped, chord)
	}
	return deduped
}
