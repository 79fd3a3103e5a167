// Package v1 exposes the REST API.
package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/plugin/video"
	"github.com/martin635579763/chordsync/server/auth"
	"github.com/martin635579763/chordsync/server/service/artwork"
	"github.com/martin635579763/chordsync/server/service/chart"
)

// APIV1Service wires the service layer to the /api/v1 routes.
type APIV1Service struct {
	profile *profile.Profile
	chart   *chart.Service
	catalog catalog.Service
	video   video.Service
	artwork *artwork.Service
	signer  *auth.SessionSigner
	gate    *auth.AdminGate
}

func NewAPIV1Service(
	p *profile.Profile,
	chartService *chart.Service,
	catalogService catalog.Service,
	videoService video.Service,
	artworkService *artwork.Service,
	signer *auth.SessionSigner,
	gate *auth.AdminGate,
) *APIV1Service {
	return &APIV1Service{
		profile: p,
		chart:   chartService,
		catalog: catalogService,
		video:   videoService,
		artwork: artworkService,
		signer:  signer,
		gate:    gate,
	}
}

func (s *APIV1Service) Register(root *echo.Group) {
	g := root.Group("/api/v1")

	// generation endpoints use POST; a miss has generation side effects
	g.POST("/charts", s.getChart)
	g.DELETE("/charts", s.deleteChart)
	g.GET("/fretboards/:chord", s.getFretboard)
	g.POST("/accompaniments", s.getAccompaniment)

	g.GET("/library/recent", s.listRecentCharts)
	g.GET("/library/search", s.searchCharts)
	g.GET("/library/feed", s.chartFeed)

	g.GET("/tracks/search", s.searchTracks)
	g.GET("/videos/lookup", s.lookupVideo)
	g.GET("/art/thumbnail", s.artThumbnail)

	g.POST("/auth/session", s.createSession)
	g.GET("/auth/session", s.currentSession)
	g.DELETE("/auth/session", s.deleteSession)

	g.GET("/metrics", s.metrics)
}

// sessionToken pulls the opaque session token from the cookie or, for
// non-browser clients, the Authorization header.
func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if token, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

func apiError(err error) error {
	switch {
	case errors.Is(err, chart.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, chart.ErrGenerationFailed):
		return echo.NewHTTPError(http.StatusBadGateway, "generation failed").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}

func (s *APIV1Service) metrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.chart.Stats())
}
