package memoryinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hoshino-dev/hoshi/pkg/errx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// PostgresMemoryRepository persists memory records in a single table:
//
//	CREATE TABLE memory_records (
//	    collection  TEXT        NOT NULL,
//	    id          TEXT        NOT NULL,
//	    summary     TEXT        NOT NULL DEFAULT '',
//	    messages    JSONB       NOT NULL DEFAULT '[]',
//	    char_count  INTEGER     NOT NULL DEFAULT 0,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    updated_at  TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (collection, id)
//	);
//
// The upsert leaves created_at untouched on conflict, so saves merge into
// the existing row rather than replacing it wholesale.
type PostgresMemoryRepository struct {
	db         *sqlx.DB
	collection string
}

// NewPostgresMemoryRepository creates a postgres-backed memory repository
func NewPostgresMemoryRepository(db *sqlx.DB, collection string) memory.Repository {
	return &PostgresMemoryRepository{
		db:         db,
		collection: collection,
	}
}

type memoryRow struct {
	Summary   string    `db:"summary"`
	Messages  []byte    `db:"messages"`
	CharCount int       `db:"char_count"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Find loads the record for id
func (r *PostgresMemoryRepository) Find(ctx context.Context, id string) (*memory.Record, error) {
	query := `
		SELECT summary, messages, char_count, created_at, updated_at
		FROM memory_records
		WHERE collection = $1 AND id = $2`

	var row memoryRow
	err := r.db.GetContext(ctx, &row, query, r.collection, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, memory.ErrRecordNotFound().WithDetail("id", id)
		}
		return nil, errx.Wrap(err, "failed to load memory record", errx.TypeExternal).
			WithDetail("id", id).
			WithDetail("collection", r.collection)
	}

	rec := memory.EmptyRecord()
	rec.Summary = row.Summary
	rec.CharCount = row.CharCount
	rec.CreatedAt = row.CreatedAt
	rec.UpdatedAt = row.UpdatedAt
	if len(row.Messages) > 0 {
		if err := json.Unmarshal(row.Messages, &rec.Messages); err != nil {
			return nil, errx.Wrap(err, "failed to decode memory messages", errx.TypeInternal).
				WithDetail("id", id)
		}
	}

	return &rec, nil
}

// Save upserts the record for id
func (r *PostgresMemoryRepository) Save(ctx context.Context, id string, rec memory.Record) error {
	messages, err := json.Marshal(rec.Messages)
	if err != nil {
		return errx.Wrap(err, "failed to encode memory messages", errx.TypeInternal).
			WithDetail("id", id)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}

	query := `
		INSERT INTO memory_records (collection, id, summary, messages, char_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (collection, id) DO UPDATE SET
			summary    = EXCLUDED.summary,
			messages   = EXCLUDED.messages,
			char_count = EXCLUDED.char_count,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		r.collection, id, rec.Summary, messages, rec.CharCount, createdAt, rec.UpdatedAt)
	if err != nil {
		return errx.Wrap(err, "failed to save memory record", errx.TypeExternal).
			WithDetail("id", id).
			WithDetail("collection", r.collection)
	}
	return nil
}
