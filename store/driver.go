package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// ChartEntry model related methods.
	UpsertChartEntry(ctx context.Context, upsert *ChartEntry) (*ChartEntry, error)
	GetChartEntry(ctx context.Context, key string) (*ChartEntry, error)
	ChartEntryExists(ctx context.Context, key string) (bool, error)
	DeleteChartEntry(ctx context.Context, delete *DeleteChartEntry) error
	// ListRecentChartEntries returns up to limit entries ordered by created_ts descending.
	ListRecentChartEntries(ctx context.Context, limit int) ([]*ChartEntry, error)
	// SearchChartEntries returns entries whose search token set contains token verbatim.
	SearchChartEntries(ctx context.Context, token string) ([]*ChartEntry, error)

	// FretboardEntry model related methods.
	UpsertFretboardEntry(ctx context.Context, upsert *FretboardEntry) (*FretboardEntry, error)
	GetFretboardEntry(ctx context.Context, key string) (*FretboardEntry, error)
	DeleteFretboardEntry(ctx context.Context, delete *DeleteFretboardEntry) error

	// AccompanimentEntry model related methods.
	UpsertAccompanimentEntry(ctx context.Context, upsert *AccompanimentEntry) (*AccompanimentEntry, error)
	GetAccompanimentEntry(ctx context.Context, key string) (*AccompanimentEntry, error)
	DeleteAccompanimentEntry(ctx context.Context, delete *DeleteAccompanimentEntry) error
}
