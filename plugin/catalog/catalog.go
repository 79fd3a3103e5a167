// Package catalog resolves track metadata from the upstream music catalog.
package catalog

import (
	"context"
	"strings"
)

// Track is the metadata shape the rest of the system consumes.
type Track struct {
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	ArtURL     string   `json:"art"`
	PreviewURL string   `json:"previewUrl,omitempty"`
}

// Service is the track metadata collaborator.
type Service interface {
	// GetTrack resolves one track by catalog URI. Unknown or invalid URIs
	// yield (nil, nil), not an error.
	GetTrack(ctx context.Context, uri string) (*Track, error)

	// SearchTracks returns up to a provider-defined number of matches.
	SearchTracks(ctx context.Context, query string) ([]*Track, error)
}

const (
	catalogURIPrefix = "spotify:"
	localURIPrefix   = "local:file:"
)

// IsCatalogURI reports whether the subject refers to a catalog-backed track.
// Only catalog-backed charts are ever persisted; local uploads have no stable,
// shareable identifier.
func IsCatalogURI(uri string) bool {
	return strings.HasPrefix(uri, catalogURIPrefix)
}

// IsLocalUpload reports whether the subject is an ad hoc local upload.
func IsLocalUpload(uri string) bool {
	return strings.HasPrefix(uri, localURIPrefix)
}

// LocalUploadName extracts the display name from a local upload identifier,
// stripping the prefix and any file extension.
func LocalUploadName(uri string) string {
	name := strings.TrimPrefix(uri, localURIPrefix)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}
