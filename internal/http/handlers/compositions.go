package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soundscape/internal/domain"
)

type compositionResponse struct {
	ID                   string    `json:"id"`
	ContentID            string    `json:"content_id"`
	Title                string    `json:"title"`
	Status               string    `json:"status"`
	AudioKey             string    `json:"audio_key,omitempty"`
	TotalDurationSeconds float64   `json:"total_duration_seconds"`
	TrackIDs             []string  `json:"track_ids"`
	ErrorMessage         string    `json:"error_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func toCompositionResponse(c *domain.Composition) compositionResponse {
	return compositionResponse{
		ID:                   c.ID,
		ContentID:            c.ContentID,
		Title:                c.Title,
		Status:               string(c.Status),
		AudioKey:             c.AudioKey,
		TotalDurationSeconds: c.TotalDurationSeconds,
		TrackIDs:             c.TrackIDs,
		ErrorMessage:         c.ErrorMessage,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// CompositionsCreate assembles a new composition for the content. Assembly
// runs synchronously; concatenation of local files is fast relative to the
// request timeout.
func (a *App) CompositionsCreate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comp, err := a.Assembly.ComposeAudio(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toCompositionResponse(comp))
}

func (a *App) CompositionsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	comp, err := a.Compositions.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toCompositionResponse(comp))
}
