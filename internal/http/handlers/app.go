package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"soundscape/internal/composer"
	"soundscape/internal/domain"
)

// ContentService manages content records.
type ContentService interface {
	Create(ctx context.Context, content *domain.Content) error
	GetByID(ctx context.Context, id string) (*domain.Content, error)
}

// QueueService queues generation requests for a content.
type QueueService interface {
	QueueBatch(ctx context.Context, contentID string) ([]domain.GenerationRequest, error)
	QueueSingle(ctx context.Context, contentID string) (*domain.GenerationRequest, error)
	QueueBulk(ctx context.Context, contentID string, count int) ([]domain.GenerationRequest, error)
}

// AssemblyService builds compositions and music videos.
type AssemblyService interface {
	ComposeAudio(ctx context.Context, contentID string) (*domain.Composition, error)
	RenderVideo(ctx context.Context, compositionID, artworkPath string) (*domain.MusicVideo, error)
}

// TrackCounts reports generation progress for a content.
type TrackCounts interface {
	CountByContent(ctx context.Context, contentID string) (int, error)
	CountCompletedByContent(ctx context.Context, contentID string) (int, error)
}

// CompositionReader fetches composition records.
type CompositionReader interface {
	GetByID(ctx context.Context, id string) (*domain.Composition, error)
}

// VideoReader fetches music video records.
type VideoReader interface {
	GetByID(ctx context.Context, id string) (*domain.MusicVideo, error)
}

// Pinger checks database liveness. Satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Contents     ContentService
	Tracks       TrackCounts
	Queue        QueueService
	Assembly     AssemblyService
	Compositions CompositionReader
	Videos       VideoReader
	DB           Pinger
	ArtworkPath  string
	Logger       zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

// domainError maps service errors onto HTTP responses. Unrecognized errors
// become opaque 500s; the detail stays in the log.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *composer.InsufficientTracksError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrInvalidDuration):
		a.error(w, http.StatusUnprocessableEntity, "invalid_duration", "target duration must be positive")
	case errors.Is(err, domain.ErrInvalidPrompt):
		a.error(w, http.StatusUnprocessableEntity, "invalid_prompt", "generation prompt is required")
	case errors.Is(err, domain.ErrTrackCapacity):
		a.error(w, http.StatusConflict, "track_capacity", "content is at its track capacity")
	case errors.Is(err, domain.ErrTrackProcessing):
		a.error(w, http.StatusConflict, "tracks_processing", "tracks are still processing")
	case errors.Is(err, domain.ErrArtifactNotReady):
		a.error(w, http.StatusConflict, "not_ready", "composition is not ready for video generation")
	case errors.As(err, &insufficient):
		a.error(w, http.StatusUnprocessableEntity, "insufficient_tracks", insufficient.Error())
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
