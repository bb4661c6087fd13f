package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soundscape/internal/domain"
)

type videoCreateRequest struct {
	ArtworkPath string `json:"artwork_path"`
}

type videoResponse struct {
	ID              string    `json:"id"`
	CompositionID   string    `json:"composition_id"`
	Status          string    `json:"status"`
	VideoKey        string    `json:"video_key,omitempty"`
	Resolution      *string   `json:"resolution"`
	DurationSeconds *float64  `json:"duration_seconds"`
	FileSizeBytes   int64     `json:"file_size_bytes"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toVideoResponse(v *domain.MusicVideo) videoResponse {
	return videoResponse{
		ID:              v.ID,
		CompositionID:   v.CompositionID,
		Status:          string(v.Status),
		VideoKey:        v.VideoKey,
		Resolution:      v.Resolution,
		DurationSeconds: v.DurationSeconds,
		FileSizeBytes:   v.FileSizeBytes,
		ErrorMessage:    v.ErrorMessage,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// VideosCreate renders a music video for a completed composition. Without an
// artwork path in the body the configured default artwork is used.
func (a *App) VideosCreate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req videoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	artworkPath := req.ArtworkPath
	if artworkPath == "" {
		artworkPath = a.ArtworkPath
	}
	if artworkPath == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "artwork_path required")
		return
	}
	video, err := a.Assembly.RenderVideo(r.Context(), id, artworkPath)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toVideoResponse(video))
}

func (a *App) VideosGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	video, err := a.Videos.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toVideoResponse(video))
}
