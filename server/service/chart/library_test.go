package chart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martin635579763/chordsync/store"
)

func seedChart(t *testing.T, f *fixture, uri, style string, ts int64, tokens []string) {
	t.Helper()
	_, err := f.store.UpsertChartEntry(context.Background(), &store.ChartEntry{
		Key:              SanitizeStorageID(ChartCacheKey(uri, style)),
		SongURI:          uri,
		ArrangementStyle: NormalizeStyle(style),
		SearchTokens:     tokens,
		Sheet:            &store.ChartSheet{UniqueChords: []string{"C"}},
		CreatedTs:        ts,
	})
	require.NoError(t, err)
}

func TestRecentDeduplicatesBeforeStyleFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "Standard", 1, nil)
	seedChart(t, f, "spotify:track:b", "Standard", 2, nil)
	seedChart(t, f, "spotify:track:a", "Pop", 3, nil)

	// song A's newest chart is Pop, so A no longer appears in the
	// Standard list even though a Standard chart still exists for it
	refs, err := f.service.Recent(ctx, 10, "Standard")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "spotify:track:b", refs[0].SongURI)
	require.Equal(t, "Standard", refs[0].ArrangementStyle)

	refs, err = f.service.Recent(ctx, 10, "Pop")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "spotify:track:a", refs[0].SongURI)
	require.Equal(t, "Pop", refs[0].ArrangementStyle)
}

func TestRecentOrderAndTruncation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "", 1, nil)
	seedChart(t, f, "spotify:track:b", "", 2, nil)
	seedChart(t, f, "spotify:track:c", "", 3, nil)

	refs, err := f.service.Recent(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "spotify:track:c", refs[0].SongURI)
	require.Equal(t, "spotify:track:b", refs[1].SongURI)
}

func TestRecentEmptyStyleIsStandard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "Standard", 1, nil)

	refs, err := f.service.Recent(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestSearchExactTokenMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "", 1, []string{"song a", "artist a"})
	seedChart(t, f, "spotify:track:b", "", 2, []string{"song b", "artist b"})

	refs, err := f.service.Search(ctx, "Artist A")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	require.Equal(t, "spotify:track:a", refs[0].SongURI)

	// membership is exact, not substring
	refs, err = f.service.Search(ctx, "artist")
	require.NoError(t, err)
	require.Empty(t, refs)

	refs, err = f.service.Search(ctx, "   ")
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestSearchDeduplicatesBySong(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "Standard", 1, []string{"song a"})
	seedChart(t, f, "spotify:track:a", "Pop", 2, []string{"song a"})

	refs, err := f.service.Search(ctx, "song a")
	require.NoError(t, err)
	require.Len(t, refs, 1)
}

func TestHydrateDropsUnresolvableRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	rows, err := f.service.Hydrate(ctx, []ChartRef{
		{SongURI: "spotify:track:a", ArrangementStyle: "Standard"},
		{SongURI: "spotify:track:gone", ArrangementStyle: "Standard"},
		{SongURI: "spotify:track:b", ArrangementStyle: "Pop"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Song A", rows[0].Name)
	require.Equal(t, "Song B", rows[1].Name)
	require.Equal(t, "Pop", rows[1].ArrangementStyle)
	require.True(t, rows[0].IsGenerated)
}

func TestAnnotateTracks(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	seedChart(t, f, "spotify:track:a", "", 1, nil)

	rows := []*LibraryRow{
		{URI: "spotify:track:a"},
		{URI: "spotify:track:b"},
	}
	f.service.AnnotateTracks(ctx, rows, "")
	require.True(t, rows[0].IsGenerated)
	require.False(t, rows[1].IsGenerated)
}
