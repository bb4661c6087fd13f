package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"soundscape/internal/domain"
)

// ContentRepositoryPG persists contents in PostgreSQL.
type ContentRepositoryPG struct {
	pool *pgxpool.Pool
}

func NewContentRepository(pool *pgxpool.Pool) *ContentRepositoryPG {
	return &ContentRepositoryPG{pool: pool}
}

// Create inserts a new content record and fills in its generated id.
func (r *ContentRepositoryPG) Create(ctx context.Context, content *domain.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	query := `
INSERT INTO contents (id, theme, generation_prompt, target_duration_minutes)
VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at;
`
	return r.pool.QueryRow(ctx, query,
		content.ID,
		content.Theme,
		content.GenerationPrompt,
		content.TargetDurationMinutes,
	).Scan(&content.CreatedAt, &content.UpdatedAt)
}

// GetByID fetches a content by its identifier.
func (r *ContentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	query := `
SELECT id, theme, generation_prompt, target_duration_minutes, created_at, updated_at
FROM contents
WHERE id = $1;
`
	var c domain.Content
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Theme,
		&c.GenerationPrompt,
		&c.TargetDurationMinutes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
