package domain

import "time"

// MaxTracksPerContent caps how many tracks a single content may accumulate.
// Queueing operations that would push past this cap are rejected before any
// record is created.
const MaxTracksPerContent = 100

// Content is the unit of work: a target duration plus the prompt used for
// every generation request belonging to it. It owns all requests, tracks and
// derived artifacts (cascading lifetime at the database level).
type Content struct {
	ID                    string
	Theme                 string
	GenerationPrompt      string
	TargetDurationMinutes int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// TargetDurationSeconds converts the configured duration for the selector.
func (c *Content) TargetDurationSeconds() float64 {
	return float64(c.TargetDurationMinutes) * 60
}

// ExceedsTrackCapacity reports whether queueing toCreate more requests, each
// yielding tracksPerRequest tracks, would push a content past
// MaxTracksPerContent. Landing exactly on the cap is allowed.
func ExceedsTrackCapacity(currentTracks, toCreate, tracksPerRequest int) bool {
	return currentTracks+toCreate*tracksPerRequest > MaxTracksPerContent
}

// Queueable reports whether the content carries the fields queueing requires.
func (c *Content) Queueable() error {
	if c.TargetDurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if c.GenerationPrompt == "" {
		return ErrInvalidPrompt
	}
	return nil
}
