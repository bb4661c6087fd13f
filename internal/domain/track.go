package domain

import "time"

// TrackStatus enumerates track lifecycle states.
type TrackStatus string

const (
	TrackStatusPending    TrackStatus = "pending"
	TrackStatusProcessing TrackStatus = "processing"
	TrackStatusCompleted  TrackStatus = "completed"
	TrackStatusFailed     TrackStatus = "failed"
)

// Track is a single generated audio segment belonging to a content. One
// generation request may yield several tracks. DurationSeconds is nil until
// the audio has been probed.
type Track struct {
	ID                  string
	ContentID           string
	GenerationRequestID *string
	Title               string
	Status              TrackStatus
	AudioKey            string
	DurationSeconds     *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Duration returns the measured duration, or 0 when not yet probed.
func (t *Track) Duration() float64 {
	if t.DurationSeconds == nil {
		return 0
	}
	return *t.DurationSeconds
}

// Selectable reports whether the track can participate in composition.
func (t *Track) Selectable() bool {
	return t.Status == TrackStatusCompleted && t.DurationSeconds != nil && *t.DurationSeconds > 0
}
