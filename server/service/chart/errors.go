package chart

import "github.com/pkg/errors"

var (
	// ErrUnauthorized is returned when a force-regenerate or delete request is
	// made by an identity outside the admin allow-list. It is checked before
	// any cache mutation is attempted.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrGenerationFailed is returned when the generation collaborator errors
	// or produces an unusable payload. Nothing partial is cached or returned.
	ErrGenerationFailed = errors.New("generation failed")
)
