package domain

import "errors"

// Error kinds surfaced to the presentation layer. Concrete errors wrap one
// of these so callers can branch with errors.Is.
var (
	ErrArtifactNotFound   = errors.New("artifact not found")
	ErrLoad               = errors.New("artifact could not be loaded")
	ErrSchemaMismatch     = errors.New("feature schema mismatch")
	ErrMalformedInput     = errors.New("malformed input")
	ErrDatasetUnavailable = errors.New("dataset unavailable")
)
