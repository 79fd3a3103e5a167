package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/store/cache"
)

// Store provides database access to all cached generation artifacts.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// fretboardCache fronts fretboard reads. Shapes are tiny, immutable and
	// hot (every rendered chart fans out one lookup per unique chord).
	fretboardCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
		fretboardCache: cache.New(cache.Config{
			Capacity:   512,
			DefaultTTL: time.Hour,
		}),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.fretboardCache.Close()
	return s.driver.Close()
}

func (s *Store) UpsertChartEntry(ctx context.Context, upsert *ChartEntry) (*ChartEntry, error) {
	stampEntry(&upsert.UID, &upsert.CreatedTs)
	return s.driver.UpsertChartEntry(ctx, upsert)
}

func (s *Store) GetChartEntry(ctx context.Context, key string) (*ChartEntry, error) {
	return s.driver.GetChartEntry(ctx, key)
}

func (s *Store) ChartEntryExists(ctx context.Context, key string) (bool, error) {
	return s.driver.ChartEntryExists(ctx, key)
}

func (s *Store) DeleteChartEntry(ctx context.Context, delete *DeleteChartEntry) error {
	return s.driver.DeleteChartEntry(ctx, delete)
}

func (s *Store) ListRecentChartEntries(ctx context.Context, limit int) ([]*ChartEntry, error) {
	return s.driver.ListRecentChartEntries(ctx, limit)
}

func (s *Store) SearchChartEntries(ctx context.Context, token string) ([]*ChartEntry, error) {
	return s.driver.SearchChartEntries(ctx, token)
}

func (s *Store) UpsertFretboardEntry(ctx context.Context, upsert *FretboardEntry) (*FretboardEntry, error) {
	stampEntry(&upsert.UID, &upsert.CreatedTs)
	entry, err := s.driver.UpsertFretboardEntry(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.cacheFretboard(entry)
	return entry, nil
}

func (s *Store) GetFretboardEntry(ctx context.Context, key string) (*FretboardEntry, error) {
	if raw, ok := s.fretboardCache.Get(key); ok {
		var shape FretboardShape
		if err := json.Unmarshal(raw, &shape); err == nil {
			return &FretboardEntry{Key: key, Shape: &shape}, nil
		}
	}

	entry, err := s.driver.GetFretboardEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		s.cacheFretboard(entry)
	}
	return entry, nil
}

func (s *Store) DeleteFretboardEntry(ctx context.Context, delete *DeleteFretboardEntry) error {
	s.fretboardCache.Delete(delete.Key)
	return s.driver.DeleteFretboardEntry(ctx, delete)
}

func (s *Store) UpsertAccompanimentEntry(ctx context.Context, upsert *AccompanimentEntry) (*AccompanimentEntry, error) {
	stampEntry(&upsert.UID, &upsert.CreatedTs)
	return s.driver.UpsertAccompanimentEntry(ctx, upsert)
}

func (s *Store) GetAccompanimentEntry(ctx context.Context, key string) (*AccompanimentEntry, error) {
	return s.driver.GetAccompanimentEntry(ctx, key)
}

func (s *Store) DeleteAccompanimentEntry(ctx context.Context, delete *DeleteAccompanimentEntry) error {
	return s.driver.DeleteAccompanimentEntry(ctx, delete)
}

func (s *Store) cacheFretboard(entry *FretboardEntry) {
	if entry == nil || entry.Shape == nil {
		return
	}
	if raw, err := json.Marshal(entry.Shape); err == nil {
		s.fretboardCache.Set(entry.Key, raw, 0)
	}
}

func stampEntry(uid *string, createdTs *int64) {
	if *uid == "" {
		*uid = shortuuid.New()
	}
	if *createdTs == 0 {
		*createdTs = time.Now().Unix()
	}
}
