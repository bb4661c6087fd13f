package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundscape/internal/domain"
	"soundscape/internal/infra"
	"soundscape/internal/sqlinline"
)

// RequestRepositoryPG persists generation requests in PostgreSQL. The batch
// insert runs its queries through the SQLRunner so the transaction gets the
// same marker logging as the worker's queries.
type RequestRepositoryPG struct {
	pool   *pgxpool.Pool
	runner *infra.SQLRunner
}

func NewRequestRepository(pool *pgxpool.Pool, logger infra.Logger) *RequestRepositoryPG {
	return &RequestRepositoryPG{pool: pool, runner: infra.NewSQLRunner(pool, logger)}
}

// CountByContent returns how many generation requests exist for a content,
// regardless of status.
func (r *RequestRepositoryPG) CountByContent(ctx context.Context, contentID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM generation_requests WHERE content_id = $1;`, contentID).Scan(&n)
	return n, err
}

// ListByContent returns a content's requests, newest first.
func (r *RequestRepositoryPG) ListByContent(ctx context.Context, contentID string) ([]domain.GenerationRequest, error) {
	query := `
SELECT id, content_id, coalesce(external_task_id, ''), status, prompt, model_id, coalesce(error_message, ''), created_at, updated_at
FROM generation_requests
WHERE content_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GenerationRequest
	for rows.Next() {
		var req domain.GenerationRequest
		if err := rows.Scan(
			&req.ID,
			&req.ContentID,
			&req.ExternalTaskID,
			&req.Status,
			&req.Prompt,
			&req.ModelID,
			&req.ErrorMessage,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// CreateBatch inserts toCreate pending requests for the content as a single
// transaction. The content row is locked so the capacity check and the
// inserts are atomic: two concurrent queueing calls cannot both pass the
// check and overshoot the track cap.
func (r *RequestRepositoryPG) CreateBatch(ctx context.Context, content *domain.Content, toCreate, tracksPerRequest int, modelID string) ([]domain.GenerationRequest, error) {
	if toCreate <= 0 {
		return nil, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)
	run := r.runner.WithTx(tx)

	var lockedID string
	if err := run.QueryRow(ctx, sqlinline.QLockContent, content.ID).Scan(&lockedID); err != nil {
		if infraIsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lock content: %w", err)
	}

	var processing int
	if err := run.QueryRow(ctx, sqlinline.QCountProcessingTracks, content.ID).Scan(&processing); err != nil {
		return nil, fmt.Errorf("count processing tracks: %w", err)
	}
	if processing > 0 {
		return nil, domain.ErrTrackProcessing
	}

	var trackCount int
	if err := run.QueryRow(ctx, sqlinline.QCountTracks, content.ID).Scan(&trackCount); err != nil {
		return nil, fmt.Errorf("count tracks: %w", err)
	}
	if domain.ExceedsTrackCapacity(trackCount, toCreate, tracksPerRequest) {
		return nil, domain.ErrTrackCapacity
	}

	created := make([]domain.GenerationRequest, 0, toCreate)
	for i := 0; i < toCreate; i++ {
		req := domain.GenerationRequest{
			ID:        uuid.NewString(),
			ContentID: content.ID,
			Status:    domain.RequestStatusPending,
			Prompt:    content.GenerationPrompt,
			ModelID:   modelID,
		}
		err := run.QueryRow(ctx, sqlinline.QInsertRequest,
			req.ID, req.ContentID, req.Status, req.Prompt, req.ModelID,
		).Scan(&req.CreatedAt, &req.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert request: %w", err)
		}
		created = append(created, req)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}
