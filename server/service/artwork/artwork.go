// Package artwork serves downscaled album art. Library and search views show
// dozens of covers at once; thumbnailing them server-side keeps the payload
// small and the upstream CDN out of the browser's way.
package artwork

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/martin635579763/chordsync/store/cache"
)

const (
	// maxSourceBytes bounds the downloaded source image.
	maxSourceBytes = 8 << 20

	// maxConcurrentDecodes bounds parallel decode/resize work. Image decoding
	// is the only memory-heavy path in the process.
	maxConcurrentDecodes = 4

	DefaultSize = 100
	maxSize     = 512
)

type Service struct {
	client *http.Client
	cache  *cache.Cache
	sem    *semaphore.Weighted
}

func NewService() *Service {
	return &Service{
		client: &http.Client{Timeout: 10 * time.Second},
		cache: cache.New(cache.Config{
			Capacity:   256,
			DefaultTTL: 12 * time.Hour,
		}),
		sem: semaphore.NewWeighted(maxConcurrentDecodes),
	}
}

func (s *Service) Close() {
	s.cache.Close()
}

// Thumbnail fetches the remote image and returns a size x size JPEG
// thumbnail. Only https sources are fetched.
func (s *Service) Thumbnail(ctx context.Context, rawURL string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, errors.Errorf("invalid artwork url %q", rawURL)
	}

	key := fmt.Sprintf("%s#%d", rawURL, size)
	if raw, ok := s.cache.Get(key); ok {
		return raw, nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	source, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(source))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode artwork from %q", rawURL)
	}
	thumb := imaging.Thumbnail(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "failed to encode thumbnail")
	}
	raw := buf.Bytes()
	s.cache.Set(key, raw, 0)
	return raw, nil
}

func (s *Service) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build artwork request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch artwork from %q", rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("artwork fetch from %q returned %d", rawURL, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read artwork body")
	}
	if len(raw) > maxSourceBytes {
		return nil, errors.Errorf("artwork from %q exceeds %d bytes", rawURL, maxSourceBytes)
	}
	return raw, nil
}
