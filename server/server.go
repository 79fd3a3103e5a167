// Package server assembles the HTTP server around the service layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/martin635579763/chordsync/internal/profile"
	"github.com/martin635579763/chordsync/plugin/catalog"
	"github.com/martin635579763/chordsync/plugin/video"
	"github.com/martin635579763/chordsync/server/auth"
	"github.com/martin635579763/chordsync/server/middleware"
	apiv1 "github.com/martin635579763/chordsync/server/router/api/v1"
	"github.com/martin635579763/chordsync/server/service/artwork"
	"github.com/martin635579763/chordsync/server/service/chart"
	"github.com/martin635579763/chordsync/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	limiter *middleware.RateLimiter
	artwork *artwork.Service
}

func NewServer(
	p *profile.Profile,
	st *store.Store,
	chartService *chart.Service,
	catalogService catalog.Service,
	videoService video.Service,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		e:       e,
		Profile: p,
		Store:   st,
		limiter: middleware.NewRateLimiter(10, 20),
		artwork: artwork.NewService(),
	}

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomw.RequestLoggerValues) error {
			slog.Info("request",
				slog.String("id", v.RequestID),
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": p.Version,
		})
	})

	signer := auth.NewSessionSigner(p.Secret)
	gate := auth.NewAdminGate(signer, p.AdminEmailList())

	rootGroup := e.Group("", s.limiter.Middleware())
	apiService := apiv1.NewAPIV1Service(p, chartService, catalogService, videoService, s.artwork, signer, gate)
	apiService.Register(rootGroup)

	return s
}

func (s *Server) Start(_ context.Context) error {
	return s.e.Start(fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port))
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.Any("error", err))
	}
	s.limiter.Close()
	s.artwork.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", slog.Any("error", err))
	}
	slog.Info("chordsync stopped")
}
