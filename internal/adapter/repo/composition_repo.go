package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundscape/internal/domain"
)

// CompositionRepositoryPG persists composite audio artifacts.
type CompositionRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewCompositionRepository(pool *pgxpool.Pool) *CompositionRepositoryPG {
	return &CompositionRepositoryPG{pool: pool}
}

// Create inserts a new processing composition.
func (r *CompositionRepositoryPG) Create(ctx context.Context, c *domain.Composition) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.ArtifactStatusProcessing
	}
	query := `
INSERT INTO compositions (id, content_id, title, status)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at;
`
	return r.pool.QueryRow(ctx, query, c.ID, c.ContentID, c.Title, c.Status).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// MarkCompleted records the assembled artifact and the track ids used.
func (r *CompositionRepositoryPG) MarkCompleted(ctx context.Context, id, audioKey string, totalSeconds float64, trackIDs []string) error {
	query := `
UPDATE compositions
SET status = 'completed',
    audio_key = $2,
    total_duration_seconds = $3,
    track_ids = $4,
    updated_at = now()
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, id, audioKey, totalSeconds, trackIDs)
	return err
}

// MarkFailed records a failed assembly with its reason.
func (r *CompositionRepositoryPG) MarkFailed(ctx context.Context, id, reason string) error {
	query := `
UPDATE compositions
SET status = 'failed', error_message = $2, updated_at = now()
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, id, reason)
	return err
}

// GetByID fetches a composition by its identifier.
func (r *CompositionRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Composition, error) {
	query := `
SELECT id, content_id, title, status, coalesce(audio_key, ''), coalesce(total_duration_seconds, 0),
       coalesce(track_ids, '{}'), coalesce(error_message, ''), created_at, updated_at
FROM compositions
WHERE id = $1;
`
	var c domain.Composition
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.ContentID,
		&c.Title,
		&c.Status,
		&c.AudioKey,
		&c.TotalDurationSeconds,
		&c.TrackIDs,
		&c.ErrorMessage,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if infraIsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
