package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soundscape/internal/domain"
	"soundscape/internal/planning"
)

type contentCreateRequest struct {
	Theme                 string `json:"theme"`
	GenerationPrompt      string `json:"generation_prompt"`
	TargetDurationMinutes int    `json:"target_duration_minutes"`
}

type contentResponse struct {
	ID                    string    `json:"id"`
	Theme                 string    `json:"theme"`
	GenerationPrompt      string    `json:"generation_prompt"`
	TargetDurationMinutes int       `json:"target_duration_minutes"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func toContentResponse(c *domain.Content) contentResponse {
	return contentResponse{
		ID:                    c.ID,
		Theme:                 c.Theme,
		GenerationPrompt:      c.GenerationPrompt,
		TargetDurationMinutes: c.TargetDurationMinutes,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func (a *App) ContentsCreate(w http.ResponseWriter, r *http.Request) {
	var req contentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	content := &domain.Content{
		Theme:                 req.Theme,
		GenerationPrompt:      req.GenerationPrompt,
		TargetDurationMinutes: req.TargetDurationMinutes,
	}
	if err := content.Queueable(); err != nil {
		a.domainError(w, r, err)
		return
	}
	if err := a.Contents.Create(r.Context(), content); err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toContentResponse(content))
}

func (a *App) ContentsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	content, err := a.Contents.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	totalTracks, err := a.Tracks.CountByContent(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	completedTracks, err := a.Tracks.CountCompletedByContent(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	requiredTracks := planning.RequiredTrackCount(content.TargetDurationMinutes)
	a.json(w, http.StatusOK, map[string]any{
		"content": toContentResponse(content),
		"progress": map[string]any{
			"tracks_total":     totalTracks,
			"tracks_completed": completedTracks,
			"tracks_required":  requiredTracks,
			"ready_to_compose": completedTracks >= requiredTracks,
		},
	})
}
