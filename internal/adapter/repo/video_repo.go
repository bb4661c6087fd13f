package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundscape/internal/domain"
)

// VideoRepositoryPG persists music video artifacts.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// Create inserts a new processing video.
func (r *VideoRepositoryPG) Create(ctx context.Context, v *domain.MusicVideo) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = domain.ArtifactStatusProcessing
	}
	query := `
INSERT INTO music_videos (id, composition_id, status)
VALUES ($1, $2, $3)
RETURNING created_at, updated_at;
`
	return r.pool.QueryRow(ctx, query, v.ID, v.CompositionID, v.Status).
		Scan(&v.CreatedAt, &v.UpdatedAt)
}

// MarkCompleted records the finished artifact. Resolution and duration may
// be nil when probing the output failed.
func (r *VideoRepositoryPG) MarkCompleted(ctx context.Context, id, videoKey string, resolution *string, durationSeconds *float64, fileSizeBytes int64) error {
	query := `
UPDATE music_videos
SET status = 'completed',
    video_key = $2,
    resolution = $3,
    duration_seconds = $4,
    file_size_bytes = $5,
    updated_at = now()
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, id, videoKey, resolution, durationSeconds, fileSizeBytes)
	return err
}

// MarkFailed records a failed generation with its reason.
func (r *VideoRepositoryPG) MarkFailed(ctx context.Context, id, reason string) error {
	query := `
UPDATE music_videos
SET status = 'failed', error_message = $2, updated_at = now()
WHERE id = $1;
`
	_, err := r.pool.Exec(ctx, query, id, reason)
	return err
}

// GetByID fetches a video by its identifier.
func (r *VideoRepositoryPG) GetByID(ctx context.Context, id string) (*domain.MusicVideo, error) {
	query := `
SELECT id, composition_id, status, coalesce(video_key, ''), resolution, duration_seconds,
       coalesce(file_size_bytes, 0), coalesce(error_message, ''), created_at, updated_at
FROM music_videos
WHERE id = $1;
`
	var v domain.MusicVideo
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.CompositionID,
		&v.Status,
		&v.VideoKey,
		&v.Resolution,
		&v.DurationSeconds,
		&v.FileSizeBytes,
		&v.ErrorMessage,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if infraIsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}
