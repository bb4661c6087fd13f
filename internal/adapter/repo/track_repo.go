package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundscape/internal/domain"
)

func infraIsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// TrackRepositoryPG reads tracks from PostgreSQL. Track creation happens in
// the worker through the sqlinline queries; the API only reads.
type TrackRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewTrackRepository(pool *pgxpool.Pool) *TrackRepositoryPG {
	return &TrackRepositoryPG{pool: pool}
}

// ListCompletedByContent returns the content's completed tracks with a
// measured duration, the pool the composition selector operates on.
func (r *TrackRepositoryPG) ListCompletedByContent(ctx context.Context, contentID string) ([]domain.Track, error) {
	query := `
SELECT id, content_id, generation_request_id, title, status, audio_key, duration_seconds, created_at, updated_at
FROM tracks
WHERE content_id = $1 AND status = 'completed'
ORDER BY created_at ASC;
`
	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Track
	for rows.Next() {
		var t domain.Track
		if err := rows.Scan(
			&t.ID,
			&t.ContentID,
			&t.GenerationRequestID,
			&t.Title,
			&t.Status,
			&t.AudioKey,
			&t.DurationSeconds,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByContent returns the number of tracks a content owns.
func (r *TrackRepositoryPG) CountByContent(ctx context.Context, contentID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM tracks WHERE content_id = $1;`, contentID).Scan(&n)
	return n, err
}

// CountCompletedByContent returns how many completed tracks a content owns.
func (r *TrackRepositoryPG) CountCompletedByContent(ctx context.Context, contentID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM tracks WHERE content_id = $1 AND status = 'completed';`, contentID).Scan(&n)
	return n, err
}
