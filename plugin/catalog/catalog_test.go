package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCatalogURI(t *testing.T) {
	tests := []struct {
		uri      string
		expected bool
	}{
		{"spotify:track:4uLU6hMCjMI75M1A2tKUQC", true},
		{"spotify:album:xyz", true},
		{"local:file:demo.mp3", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsCatalogURI(tt.uri), tt.uri)
	}
}

func TestIsLocalUpload(t *testing.T) {
	assert.True(t, IsLocalUpload("local:file:jam session.mp3"))
	assert.False(t, IsLocalUpload("spotify:track:abc"))
}

func TestLocalUploadName(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"local:file:demo.mp3", "demo"},
		{"local:file:my song.take2.wav", "my song.take2"},
		{"local:file:noext", "noext"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LocalUploadName(tt.uri), tt.uri)
	}
}

func TestTrackIDFromURI(t *testing.T) {
	assert.Equal(t, "4uLU6hMCjMI75M1A2tKUQC", trackIDFromURI("spotify:track:4uLU6hMCjMI75M1A2tKUQC"))
	assert.Equal(t, "", trackIDFromURI("local:file:demo.mp3"))
}
