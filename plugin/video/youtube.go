// Package video looks up a playable video for a song through the YouTube Data API.
package video

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const youtubeSearchURL = "https://www.googleapis.com/youtube/v3/search"

// Service finds a best-match video for a search query.
type Service interface {
	// SearchVideo returns the best-match video id, or "" when nothing matched.
	SearchVideo(ctx context.Context, query string) (string, error)
}

// YouTubeService is the YouTube Data API implementation of Service.
type YouTubeService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewYouTubeService creates a video lookup service.
func NewYouTubeService(apiKey string) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, errors.New("youtube api key is not configured")
	}
	return &YouTubeService{
		apiKey:  apiKey,
		baseURL: youtubeSearchURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *YouTubeService) SearchVideo(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("maxResults", "1")
	params.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", s.baseURL, params.Encode()), nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build video search request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "video search request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.Errorf("video search returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "failed to decode video search response")
	}

	if len(result.Items) == 0 {
		return "", nil
	}
	return result.Items[0].ID.VideoID, nil
}
