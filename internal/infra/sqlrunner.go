package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLExecutor defines the contract required by callers for executing SQL queries.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so a runner can execute
// inside or outside an explicit transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

type SQLRunner struct {
	DB     DBTX
	Logger zerolog.Logger
}

func NewSQLRunner(db DBTX, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{DB: db, Logger: logger}
}

// WithTx returns a runner bound to the given transaction, sharing the logger.
func (r *SQLRunner) WithTx(tx pgx.Tx) *SQLRunner {
	return &SQLRunner{DB: tx, Logger: r.Logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	r.Logger.Debug().Msgf("sql[%s] exec", marker)
	tag, err := r.DB.Exec(ctx, trimmed, args...)
	if err != nil {
		r.Logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return tag, err
	}
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	r.Logger.Debug().Msgf("sql[%s] query_row", marker)
	row := r.DB.QueryRow(ctx, trimmed, args...)
	return loggingRow{row: row, logger: r.Logger, marker: marker}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug().Msgf("sql[%s] query", marker)
	rows, err := r.DB.Query(ctx, trimmed, args...)
	if err != nil {
		r.Logger.Error().Err(err).Msgf("sql[%s] error", marker)
		return nil, err
	}
	return rows, nil
}

type loggingRow struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
}

func (l loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		l.logger.Error().Err(err).Msgf("sql[%s] scan error", l.marker)
	}
	return err
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

func extractMarker(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)
	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 {
		return "", "", errors.New("empty query")
	}
	markerLine := strings.TrimSpace(lines[0])
	if !markerRegexp.MatchString(markerLine) {
		return "", "", errors.New("sql marker missing or invalid")
	}
	return strings.TrimSpace(strings.TrimPrefix(markerLine, "--sql ")), strings.Join(lines[1:], "\n"), nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
