package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/martin635579763/chordsync/server/service/chart"
	"github.com/martin635579763/chordsync/store"
)

type getChartRequest struct {
	SongURI          string `json:"songUri"`
	ArrangementStyle string `json:"arrangementStyle"`
	ForceNew         bool   `json:"forceNew"`
}

func (s *APIV1Service) getChart(c echo.Context) error {
	req := &getChartRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.SongURI == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "songUri is required")
	}

	sheet, err := s.chart.GetChart(c.Request().Context(), chart.GetChartRequest{
		SongURI:          req.SongURI,
		ArrangementStyle: req.ArrangementStyle,
		ForceNew:         req.ForceNew,
		SessionToken:     sessionToken(c),
	})
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, sheet)
}

func (s *APIV1Service) deleteChart(c echo.Context) error {
	songURI := c.QueryParam("songUri")
	if songURI == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "songUri is required")
	}
	style := c.QueryParam("style")
	if err := s.chart.DeleteChart(c.Request().Context(), songURI, style, sessionToken(c)); err != nil {
		return apiError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *APIV1Service) getFretboard(c echo.Context) error {
	chordName := c.Param("chord")
	if chordName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "chord name is required")
	}
	shape, err := s.chart.GetFretboard(c.Request().Context(), chordName)
	if err != nil {
		return apiError(err)
	}
	return c.JSON(http.StatusOK, shape)
}

type getAccompanimentRequest struct {
	SongName         string            `json:"songName"`
	ArtistName       string            `json:"artistName"`
	Sheet            *store.ChartSheet `json:"sheet"`
	ArrangementStyle string            `json:"arrangementStyle"`
}

func (s *APIV1Service) getAccompaniment(c echo.Context) error {
	req := &getAccompanimentRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if req.Sheet == nil || len(req.Sheet.UniqueChords) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sheet with unique chords is required")
	}

	suggestion, err := s.chart.GetAccompaniment(c.Request().Context(), chart.GetAccompanimentRequest{
		SongName:         req.SongName,
		ArtistName:       req.ArtistName,
		Sheet:            req.Sheet,
		ArrangementStyle: req.ArrangementStyle,
	})
	if err != nil {
		return apiError(err)
	}

	if c.QueryParam("format") == "html" {
		html, err := chart.RenderAccompanimentHTML(suggestion)
		if err != nil {
			return apiError(err)
		}
		return c.HTML(http.StatusOK, html)
	}
	return c.JSON(http.StatusOK, suggestion)
}
