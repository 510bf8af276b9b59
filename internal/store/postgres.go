package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const (
	// uniqueViolation is the SQLSTATE raised by the partial unique index on ACTIVE codes.
	uniqueViolation = "23505"
	// dataExceptionClass prefixes SQLSTATEs for values the column cannot hold (22001 too long, ...).
	dataExceptionClass = "22"
)

const shortURLColumns = `id::text, code, original_url, state, expires_at, created_by, created_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) FindActiveByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `SELECT ` + shortURLColumns + ` FROM short_urls WHERE code = $1 AND state = 'ACTIVE'`

	return scanShortURL(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) ExistsActiveByCode(ctx context.Context, code shortener.Code) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM short_urls WHERE code = $1 AND state = 'ACTIVE')`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, string(code)).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresStore) FindByID(ctx context.Context, id string) (*shortener.ShortURL, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, shortener.ErrNotFound
	}

	query := `SELECT ` + shortURLColumns + ` FROM short_urls WHERE id = $1`

	return scanShortURL(p.pool.QueryRow(ctx, query, id))
}

func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if shortURL.ID == "" {
		return p.insert(ctx, shortURL)
	}

	tag, err := p.pool.Exec(ctx, `UPDATE short_urls SET state = $2 WHERE id = $1`,
		shortURL.ID, string(shortURL.State))
	if err != nil {
		return mapWriteError(err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s: %w", shortURL.ID, shortener.ErrNotFound)
	}

	return nil
}

func (p *PostgresStore) insert(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (id, code, original_url, state, expires_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.NewString()

	_, err := p.pool.Exec(ctx, query,
		id,
		string(shortURL.Code),
		shortURL.OriginalURL,
		string(shortURL.State),
		shortURL.ExpiresAt,
		shortURL.CreatedBy,
		shortURL.CreatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}

	shortURL.ID = id

	return nil
}

func (p *PostgresStore) ListActiveByOwner(
	ctx context.Context,
	owner string,
	req shortener.PageRequest,
) (shortener.Page[shortener.ShortURL], error) {
	return p.listActive(ctx, req, `AND created_by = $1`, owner)
}

func (p *PostgresStore) ListActive(
	ctx context.Context,
	req shortener.PageRequest,
) (shortener.Page[shortener.ShortURL], error) {
	return p.listActive(ctx, req, ``)
}

// listActive pages ACTIVE entries newest first. where is appended to the state predicate and
// may reference args as $1..$n.
func (p *PostgresStore) listActive(
	ctx context.Context,
	req shortener.PageRequest,
	where string,
	args ...any,
) (shortener.Page[shortener.ShortURL], error) {
	var empty shortener.Page[shortener.ShortURL]

	req = req.Normalize()

	var total int64

	countQuery := `SELECT COUNT(*) FROM short_urls WHERE state = 'ACTIVE' ` + where
	if err := p.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return empty, err
	}

	n := len(args)
	pageQuery := fmt.Sprintf(`
		SELECT %s FROM short_urls
		WHERE state = 'ACTIVE' %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, shortURLColumns, where, n+1, n+2)

	rows, err := p.pool.Query(ctx, pageQuery, append(args, req.Size, req.Offset())...)
	if err != nil {
		return empty, err
	}
	defer rows.Close()

	items := make([]shortener.ShortURL, 0, req.Size)

	for rows.Next() {
		entry, err := scanShortURL(rows)
		if err != nil {
			return empty, err
		}

		items = append(items, *entry)
	}

	if err = rows.Err(); err != nil {
		return empty, err
	}

	return shortener.NewPage(items, req, total), nil
}

func scanShortURL(row pgx.Row) (*shortener.ShortURL, error) {
	var (
		entry shortener.ShortURL
		code  string
		state string
	)

	err := row.Scan(
		&entry.ID,
		&code,
		&entry.OriginalURL,
		&state,
		&entry.ExpiresAt,
		&entry.CreatedBy,
		&entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	entry.Code = shortener.Code(code)
	entry.State = shortener.State(state)

	return &entry, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation:
			return shortener.ErrAlreadyExists
		case strings.HasPrefix(pgErr.Code, dataExceptionClass):
			return fmt.Errorf("%w: %s", shortener.ErrInvalidRequest, pgErr.Message)
		}
	}

	return err
}

// Shutdown is a no-op for PostgresStore (pool managed externally).
func (p *PostgresStore) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
