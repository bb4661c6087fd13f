package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidDuration  = errors.New("target duration must be positive")
	ErrInvalidPrompt    = errors.New("generation prompt is required")
	ErrTrackCapacity    = errors.New("track capacity exceeded")
	ErrTrackProcessing  = errors.New("a track is still processing")
	ErrProviderFailure  = errors.New("provider failure")
	ErrArtifactNotReady = errors.New("artifact not ready")
)
