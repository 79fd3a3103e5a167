package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	source := pngFixture(t, 640, 640)
	var hits int
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write(source)
	}))
	defer ts.Close()

	svc := NewService()
	defer svc.Close()
	svc.client = ts.Client()

	raw, err := svc.Thumbnail(context.Background(), ts.URL+"/art.png", 100)
	require.NoError(t, err)

	thumb, err := imaging.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 100, thumb.Bounds().Dx())
	require.Equal(t, 100, thumb.Bounds().Dy())

	// second request is served from cache
	_, err = svc.Thumbnail(context.Background(), ts.URL+"/art.png", 100)
	require.NoError(t, err)
	require.Equal(t, 1, hits)
}

func TestThumbnailRejectsBadSources(t *testing.T) {
	svc := NewService()
	defer svc.Close()

	_, err := svc.Thumbnail(context.Background(), "http://insecure.example/art.png", 100)
	require.Error(t, err)

	_, err = svc.Thumbnail(context.Background(), "not a url", 100)
	require.Error(t, err)
}

func TestThumbnailRejectsNonImagePayload(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("not an image", 10)))
	}))
	defer ts.Close()

	svc := NewService()
	defer svc.Close()
	svc.client = ts.Client()

	_, err := svc.Thumbnail(context.Background(), ts.URL+"/art.png", 100)
	require.Error(t, err)
}
