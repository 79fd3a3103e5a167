package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAPIBaseURL = "https://api.spotify.com/v1"
	spotifyTokenURL   = "https://accounts.spotify.com/api/token"

	searchLimit = 10

	// fallbackArtURL is used when a track carries no album art.
	fallbackArtURL = "https://picsum.photos/100"
)

// SpotifyConfig holds the catalog client credentials.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
}

// SpotifyService resolves track metadata through the Spotify Web API using the
// client-credentials flow. The oauth2 transport refreshes tokens on demand, so
// there is no lazily initialized shared client state to manage.
type SpotifyService struct {
	client  *http.Client
	baseURL string
}

// NewSpotifyService creates a catalog service backed by Spotify.
func NewSpotifyService(cfg SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify client credentials are not configured")
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = spotifyAPIBaseURL
	}

	client := conf.Client(context.Background())
	client.Timeout = 15 * time.Second

	return &SpotifyService{
		client:  client,
		baseURL: baseURL,
	}, nil
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrack struct {
	URI     string          `json:"uri"`
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   struct {
		Name   string         `json:"name"`
		Images []spotifyImage `json:"images"`
	} `json:"album"`
	PreviewURL string `json:"preview_url"`
}

func (t *spotifyTrack) toTrack() *Track {
	artists := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		artists = append(artists, artist.Name)
	}
	art := fallbackArtURL
	if len(t.Album.Images) > 0 {
		art = t.Album.Images[0].URL
	}
	return &Track{
		URI:        t.URI,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		ArtURL:     art,
		PreviewURL: t.PreviewURL,
	}
}

// GetTrack resolves one track by its spotify:track:<id> URI.
func (s *SpotifyService) GetTrack(ctx context.Context, uri string) (*Track, error) {
	trackID := trackIDFromURI(uri)
	if trackID == "" {
		return nil, nil
	}

	var track spotifyTrack
	ok, err := s.getJSON(ctx, fmt.Sprintf("%s/tracks/%s", s.baseURL, url.PathEscape(trackID)), &track)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return track.toTrack(), nil
}

// SearchTracks searches the catalog by free-text query.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string) ([]*Track, error) {
	if query == "" {
		return []*Track{}, nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", fmt.Sprintf("%d", searchLimit))

	var result struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	ok, err := s.getJSON(ctx, fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode()), &result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []*Track{}, nil
	}

	tracks := make([]*Track, 0, len(result.Tracks.Items))
	for i := range result.Tracks.Items {
		tracks = append(tracks, result.Tracks.Items[i].toTrack())
	}
	return tracks, nil
}

// getJSON performs a GET and decodes the response. Returns (false, nil) for
// 400/404 responses so unknown identifiers read as absent rather than failing.
func (s *SpotifyService) getJSON(ctx context.Context, rawURL string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return false, errors.Wrap(err, "failed to build catalog request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "catalog request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest:
		return false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, errors.Errorf("catalog returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, errors.Wrap(err, "failed to decode catalog response")
	}
	return true, nil
}

// trackIDFromURI extracts the trailing id segment of a spotify URI.
func trackIDFromURI(uri string) string {
	if !IsCatalogURI(uri) {
		return ""
	}
	parts := strings.Split(uri, ":")
	return parts[len(parts)-1]
}
