package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/novaframes/content-admin/internal/records/domain"
)

const recordsSchema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT        NOT NULL,
	id         TEXT        NOT NULL,
	body       JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

// PostgresStore keeps every collection in a single jsonb table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the records table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, recordsSchema); err != nil {
		return fmt.Errorf("ensure records schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, c domain.Collection) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, body
FROM records
WHERE collection = $1
ORDER BY created_at, id`, string(c))
	if err != nil {
		return nil, pgError("list records", err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		var (
			id   string
			body []byte
		)
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decodeBody(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, pgError("list records", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, c domain.Collection, id string) (domain.Record, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM records WHERE collection = $1 AND id = $2`, string(c), id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, pgError("get record", err)
	}
	return decodeBody(id, body)
}

func (s *PostgresStore) Create(ctx context.Context, c domain.Collection, body domain.Record) (string, error) {
	_, data, err := encodeBody(body)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err = s.pool.Exec(ctx, `
INSERT INTO records (collection, id, body)
VALUES ($1, $2, $3::jsonb)`, string(c), id, string(data))
	if err != nil {
		return "", pgError("create record", err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, c domain.Collection, id string, body domain.Record) error {
	_, data, err := encodeBody(body)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
UPDATE records
SET body = body || $3::jsonb, updated_at = now()
WHERE collection = $1 AND id = $2`, string(c), id, string(data))
	if err != nil {
		return pgError("update record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, c domain.Collection, id string, body domain.Record, merge bool) error {
	_, data, err := encodeBody(body)
	if err != nil {
		return err
	}

	onConflict := `body = EXCLUDED.body`
	if merge {
		onConflict = `body = records.body || EXCLUDED.body`
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO records (collection, id, body)
VALUES ($1, $2, $3::jsonb)
ON CONFLICT (collection, id) DO UPDATE SET `+onConflict+`, updated_at = now()`,
		string(c), id, string(data))
	if err != nil {
		return pgError("set record", err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, c domain.Collection, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM records WHERE collection = $1 AND id = $2`, string(c), id)
	if err != nil {
		return pgError("delete record", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("db ping: %w: %w", domain.ErrRemoteUnavailable, err)
	}
	return nil
}

// pgError separates statements the server refused from transport failures.
func pgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteRejected, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrRemoteUnavailable, err)
}
