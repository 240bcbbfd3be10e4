package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryan0dhankhar/wellpulse/internal/domain"
)

// PostgresCollection stores records as JSONB rows in the shared records
// table, partitioned by kind and ordered by insertion sequence
type PostgresCollection[T any] struct {
	db     *sql.DB
	kind   string
	logger *slog.Logger
}

// NewPostgresCollection creates a collection backed by the records table
func NewPostgresCollection[T any](db *sql.DB, kind string, logger *slog.Logger) *PostgresCollection[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCollection[T]{db: db, kind: kind, logger: logger}
}

// List returns every record of this kind in insertion order
func (c *PostgresCollection[T]) List(ctx context.Context) ([]T, error) {
	query := `
		SELECT id, body
		FROM records
		WHERE kind = $1
		ORDER BY seq
	`

	rows, err := c.db.QueryContext(ctx, query, c.kind)
	if err != nil {
		c.logger.Error("failed to list records",
			slog.String("kind", c.kind),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list %s: %w", c.kind, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c.kind, err)
		}
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", c.kind, id, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", c.kind, err)
	}
	return out, nil
}

// Get returns the record or domain.ErrRecordNotFound
func (c *PostgresCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var v T
	var body []byte

	query := `
		SELECT body
		FROM records
		WHERE kind = $1 AND id = $2
	`

	err := c.db.QueryRowContext(ctx, query, c.kind, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return v, domain.ErrRecordNotFound
		}
		c.logger.Error("failed to get record",
			slog.String("kind", c.kind),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return v, fmt.Errorf("failed to get %s: %w", c.kind, err)
	}

	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("failed to decode %s %s: %w", c.kind, id, err)
	}
	return v, nil
}

// Put upserts the record; an existing row keeps its sequence number
func (c *PostgresCollection[T]) Put(ctx context.Context, id string, value T) error {
	if id == "" {
		return fmt.Errorf("cannot store %s without id", c.kind)
	}
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", c.kind, id, err)
	}

	query := `
		INSERT INTO records (kind, id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, id) DO UPDATE
		SET body = EXCLUDED.body, updated_at = NOW()
	`

	if _, err := c.db.ExecContext(ctx, query, c.kind, id, body); err != nil {
		c.logger.Error("failed to store record",
			slog.String("kind", c.kind),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to store %s: %w", c.kind, err)
	}
	return nil
}
