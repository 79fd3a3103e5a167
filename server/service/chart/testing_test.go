package chart

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/plugin/ai"
	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/server/auth"
	"github.com/martin635579763/chordsync/store"
)

// fakeDriver is an in-memory store.Driver for service tests.
type fakeDriver struct {
	mu             sync.Mutex
	seq            int64
	charts         map[string]*chartRow
	fretboards     map[string]*store.FretboardEntry
	accompaniments map[string]*store.AccompanimentEntry

	failReads  bool
	failWrites bool
}

type chartRow struct {
	entry *store.ChartEntry
	seq   int64
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		charts:         map[string]*chartRow{},
		fretboards:     map[string]*store.FretboardEntry{},
		accompaniments: map[string]*store.AccompanimentEntry{},
	}
}

func (d *fakeDriver) GetDB() *sql.DB                              { return nil }
func (d *fakeDriver) Close() error                                { return nil }
func (d *fakeDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *fakeDriver) UpsertChartEntry(_ context.Context, upsert *store.ChartEntry) (*store.ChartEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWrites {
		return nil, errors.New("write failed")
	}
	d.seq++
	clone := *upsert
	d.charts[upsert.Key] = &chartRow{entry: &clone, seq: d.seq}
	return &clone, nil
}

func (d *fakeDriver) GetChartEntry(_ context.Context, key string) (*store.ChartEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return nil, errors.New("read failed")
	}
	row, ok := d.charts[key]
	if !ok {
		return nil, nil
	}
	return row.entry, nil
}

func (d *fakeDriver) ChartEntryExists(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return false, errors.New("read failed")
	}
	_, ok := d.charts[key]
	return ok, nil
}

func (d *fakeDriver) DeleteChartEntry(_ context.Context, find *store.DeleteChartEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWrites {
		return errors.New("delete failed")
	}
	delete(d.charts, find.Key)
	return nil
}

func (d *fakeDriver) ListRecentChartEntries(_ context.Context, limit int) ([]*store.ChartEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return nil, errors.New("read failed")
	}
	rows := make([]*chartRow, 0, len(d.charts))
	for _, row := range d.charts {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].entry.CreatedTs != rows[j].entry.CreatedTs {
			return rows[i].entry.CreatedTs > rows[j].entry.CreatedTs
		}
		return rows[i].seq > rows[j].seq
	})
	entries := []*store.ChartEntry{}
	for _, row := range rows {
		if len(entries) == limit {
			break
		}
		entries = append(entries, row.entry)
	}
	return entries, nil
}

func (d *fakeDriver) SearchChartEntries(_ context.Context, token string) ([]*store.ChartEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return nil, errors.New("read failed")
	}
	entries := []*store.ChartEntry{}
	for _, row := range d.charts {
		for _, t := range row.entry.SearchTokens {
			if t == token {
				entries = append(entries, row.entry)
				break
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

func (d *fakeDriver) UpsertFretboardEntry(_ context.Context, upsert *store.FretboardEntry) (*store.FretboardEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWrites {
		return nil, errors.New("write failed")
	}
	clone := *upsert
	d.fretboards[upsert.Key] = &clone
	return &clone, nil
}

func (d *fakeDriver) GetFretboardEntry(_ context.Context, key string) (*store.FretboardEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return nil, errors.New("read failed")
	}
	return d.fretboards[key], nil
}

func (d *fakeDriver) DeleteFretboardEntry(_ context.Context, find *store.DeleteFretboardEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.fretboards, find.Key)
	return nil
}

func (d *fakeDriver) UpsertAccompanimentEntry(_ context.Context, upsert *store.AccompanimentEntry) (*store.AccompanimentEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWrites {
		return nil, errors.New("write failed")
	}
	clone := *upsert
	d.accompaniments[upsert.Key] = &clone
	return &clone, nil
}

func (d *fakeDriver) GetAccompanimentEntry(_ context.Context, key string) (*store.AccompanimentEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failReads {
		return nil, errors.New("read failed")
	}
	return d.accompaniments[key], nil
}

func (d *fakeDriver) DeleteAccompanimentEntry(_ context.Context, find *store.DeleteAccompanimentEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.accompaniments, find.Key)
	return nil
}

// fakeGenerator returns canned artifacts and counts invocations.
type fakeGenerator struct {
	mu             sync.Mutex
	chartCalls     int
	fretboardCalls int
	accompCalls    int

	sheet         *store.ChartSheet
	shape         *store.FretboardShape
	accompaniment *store.Accompaniment

	chartErr     error
	fretboardErr error
	accompErr    error

	// block, when set, stalls chart generation until the channel is closed.
	block chan struct{}
}

func (g *fakeGenerator) GenerateChart(_ context.Context, _ ai.ChartRequest) (*store.ChartSheet, error) {
	g.mu.Lock()
	g.chartCalls++
	sheet, chartErr, block := g.sheet, g.chartErr, g.block
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	if chartErr != nil {
		return nil, chartErr
	}
	if sheet == nil {
		return nil, nil
	}
	clone := *sheet
	clone.UniqueChords = append([]string(nil), sheet.UniqueChords...)
	return &clone, nil
}

func (g *fakeGenerator) chartCallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chartCalls
}

func (g *fakeGenerator) GenerateFretboard(_ context.Context, _ string) (*store.FretboardShape, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fretboardCalls++
	if g.fretboardErr != nil {
		return nil, g.fretboardErr
	}
	return g.shape, nil
}

func (g *fakeGenerator) GenerateAccompaniment(_ context.Context, _ ai.AccompanimentRequest) (*store.Accompaniment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.accompCalls++
	if g.accompErr != nil {
		return nil, g.accompErr
	}
	return g.accompaniment, nil
}

// fakeCatalog serves tracks from a fixed map. Unknown URIs resolve to
// (nil, nil) like the real provider.
type fakeCatalog struct {
	tracks  map[string]*catalog.Track
	results []*catalog.Track
	err     error
}

func (c *fakeCatalog) GetTrack(_ context.Context, uri string) (*catalog.Track, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.tracks[uri], nil
}

func (c *fakeCatalog) SearchTracks(_ context.Context, _ string) ([]*catalog.Track, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.results, nil
}

// staticResolver maps opaque tokens to emails.
type staticResolver map[string]string

func (r staticResolver) Resolve(_ context.Context, token string) (string, error) {
	email, ok := r[token]
	if !ok {
		return "", errors.New("invalid token")
	}
	return email, nil
}

const (
	adminToken   = "admin-token"
	visitorToken = "visitor-token"
)

type fixture struct {
	service   *Service
	driver    *fakeDriver
	generator *fakeGenerator
	catalog   *fakeCatalog
	store     *store.Store
}

func newFixture() *fixture {
	driver := newFakeDriver()
	st := store.New(driver, &profile.Profile{Mode: "dev"})
	generator := &fakeGenerator{
		sheet: &store.ChartSheet{
			Lines: []store.ChartLine{
				{
					Lyrics:    "first line",
					StartTime: 0,
					Measures: []store.ChartMeasure{
						{Chords: "C", StartTime: 0},
						{Chords: "G7 Am", StartTime: 2},
					},
				},
				{
					Lyrics:    "second line",
					StartTime: 4,
					Measures:  []store.ChartMeasure{{Chords: "C", StartTime: 4}},
				},
			},
			UniqueChords: []string{"X"},
		},
		shape:         &store.FretboardShape{Frets: []int{-1, 3, 2, 0, 1, 0}, Fingers: []int{0, 3, 2, 0, 1, 0}},
		accompaniment: &store.Accompaniment{PlayingStyle: "fingerpicked", StrummingPattern: "D-DU-UDU"},
	}
	cat := &fakeCatalog{tracks: map[string]*catalog.Track{
		"spotify:track:a": {URI: "spotify:track:a", Name: "Song A", Artists: []string{"Artist A"}, ArtURL: "https://img/a"},
		"spotify:track:b": {URI: "spotify:track:b", Name: "Song B", Artists: []string{"Artist B"}, ArtURL: "https://img/b"},
	}}
	resolver := staticResolver{adminToken: "admin@example.com", visitorToken: "visitor@example.com"}
	gate := auth.NewAdminGate(resolver, []string{"admin@example.com"})

	return &fixture{
		service:   NewService(st, generator, cat, gate),
		driver:    driver,
		generator: generator,
		catalog:   cat,
		store:     st,
	}
}
