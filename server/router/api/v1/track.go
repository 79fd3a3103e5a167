package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/martin635579763/chordsync/server/service/artwork"
	"github.com/martin635579763/chordsync/server/service/chart"
)

// searchTracks proxies the catalog search and annotates each result with
// whether a chart for it is already cached.
func (s *APIV1Service) searchTracks(c echo.Context) error {
	ctx := c.Request().Context()
	query := c.QueryParam("q")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	tracks, err := s.catalog.SearchTracks(ctx, query)
	if err != nil {
		return apiError(err)
	}

	style := c.QueryParam("style")
	rows := make([]*chart.LibraryRow, 0, len(tracks))
	for _, track := range tracks {
		rows = append(rows, &chart.LibraryRow{
			URI:        track.URI,
			Name:       track.Name,
			Artists:    track.Artists,
			ArtURL:     track.ArtURL,
			PreviewURL: track.PreviewURL,
		})
	}
	s.chart.AnnotateTracks(ctx, rows, style)
	return c.JSON(http.StatusOK, rows)
}

func (s *APIV1Service) lookupVideo(c echo.Context) error {
	song := strings.TrimSpace(c.QueryParam("song"))
	if song == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "song is required")
	}
	query := strings.TrimSpace(song + " " + c.QueryParam("artist"))
	videoID, err := s.video.SearchVideo(c.Request().Context(), query+" official audio")
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"videoId": videoID})
}

func (s *APIV1Service) artThumbnail(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	size := artwork.DefaultSize
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "size must be a positive integer")
		}
		size = parsed
	}

	raw, err := s.artwork.Thumbnail(c.Request().Context(), rawURL, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "artwork unavailable").SetInternal(err)
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Blob(http.StatusOK, "image/jpeg", raw)
}
