package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soundscape/internal/domain"
)

type requestResponse struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	Status    string    `json:"status"`
	ModelID   string    `json:"model_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toRequestResponses(reqs []domain.GenerationRequest) []requestResponse {
	out := make([]requestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, requestResponse{
			ID:        req.ID,
			ContentID: req.ContentID,
			Status:    string(req.Status),
			ModelID:   req.ModelID,
			CreatedAt: req.CreatedAt,
		})
	}
	return out
}

// QueueBatch tops the content up to its required request count.
func (a *App) QueueBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	created, err := a.Queue.QueueBatch(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"queued":   len(created),
		"requests": toRequestResponses(created),
	})
}

func (a *App) QueueSingle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	req, err := a.Queue.QueueSingle(r.Context(), id)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toRequestResponses([]domain.GenerationRequest{*req})[0])
}

type bulkRequest struct {
	Count int `json:"count"`
}

func (a *App) QueueBulk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	created, err := a.Queue.QueueBulk(r.Context(), id, body.Count)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]any{
		"queued":   len(created),
		"requests": toRequestResponses(created),
	})
}
