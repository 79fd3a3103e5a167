package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
	feedLimit          = 20
)

func (s *APIV1Service) listRecentCharts(c echo.Context) error {
	ctx := c.Request().Context()
	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(parsed, maxRecentLimit)
	}

	refs, err := s.chart.Recent(ctx, limit, c.QueryParam("style"))
	if err != nil {
		return apiError(err)
	}
	rows, err := s.chart.Hydrate(ctx, refs)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

func (s *APIV1Service) searchCharts(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	refs, err := s.chart.Search(ctx, query)
	if err != nil {
		return apiError(err)
	}
	rows, err := s.chart.Hydrate(ctx, refs)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, rows)
}

// chartFeed serves the recently charted songs as an Atom feed.
func (s *APIV1Service) chartFeed(c echo.Context) error {
	ctx := c.Request().Context()
	refs, err := s.chart.Recent(ctx, feedLimit, c.QueryParam("style"))
	if err != nil {
		return apiError(err)
	}
	rows, err := s.chart.Hydrate(ctx, refs)
	if err != nil {
		return apiError(err)
	}

	base := c.Scheme() + "://" + c.Request().Host
	feed := &feeds.Feed{
		Title:       "ChordSync: recently charted songs",
		Link:        &feeds.Link{Href: base},
		Description: "Chord charts generated most recently",
		Updated:     time.Now(),
	}
	byURI := make(map[string]int, len(rows))
	for i, row := range rows {
		byURI[row.URI] = i
	}
	for _, ref := range refs {
		i, ok := byURI[ref.SongURI]
		if !ok {
			continue
		}
		row := rows[i]
		feed.Items = append(feed.Items, &feeds.Item{
			Id:      fmt.Sprintf("%s/chart/%s", base, row.URI),
			Title:   fmt.Sprintf("%s by %s (%s)", row.Name, strings.Join(row.Artists, ", "), row.ArrangementStyle),
			Link:    &feeds.Link{Href: fmt.Sprintf("%s/?song=%s", base, row.URI)},
			Created: time.Unix(ref.CreatedTs, 0),
		})
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return apiError(err)
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}
