package domain

import "time"

// ArtifactStatus mirrors the generation lifecycle for assembled artifacts.
type ArtifactStatus string

const (
	ArtifactStatusPending    ArtifactStatus = "pending"
	ArtifactStatusProcessing ArtifactStatus = "processing"
	ArtifactStatusCompleted  ArtifactStatus = "completed"
	ArtifactStatusFailed     ArtifactStatus = "failed"
)

// Composition is the composite audio artifact produced by concatenating a
// selected subset of a content's completed tracks. The track ids used are
// persisted for playback and audit.
type Composition struct {
	ID                   string
	ContentID            string
	Title                string
	Status               ArtifactStatus
	AudioKey             string
	TotalDurationSeconds float64
	TrackIDs             []string
	ErrorMessage         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// MusicVideo is derived from one composition plus one static artwork image.
// Resolution and DurationSeconds are nil when probing the finished output
// failed; the artifact itself is still considered generated.
type MusicVideo struct {
	ID              string
	CompositionID   string
	Status          ArtifactStatus
	VideoKey        string
	Resolution      *string
	DurationSeconds *float64
	FileSizeBytes   int64
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
