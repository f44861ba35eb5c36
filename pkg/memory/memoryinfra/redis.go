package memoryinfra

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hoshino-dev/hoshi/pkg/errx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// RedisMemoryRepository stores one hash per identity under
// "<collection>:<id>". Writes touch only the fields they carry, so a save
// merges into whatever the document already holds; created_at is written
// once with HSETNX and never overwritten.
type RedisMemoryRepository struct {
	client     *redis.Client
	collection string
}

// NewRedisMemoryRepository creates a redis-backed memory repository
func NewRedisMemoryRepository(client *redis.Client, collection string) memory.Repository {
	return &RedisMemoryRepository{
		client:     client,
		collection: collection,
	}
}

func (r *RedisMemoryRepository) key(id string) string {
	return r.collection + ":" + id
}

// Find loads the record for id
func (r *RedisMemoryRepository) Find(ctx context.Context, id string) (*memory.Record, error) {
	fields, err := r.client.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, errx.Wrap(err, "failed to load memory record", errx.TypeExternal).
			WithDetail("id", id)
	}
	if len(fields) == 0 {
		return nil, memory.ErrRecordNotFound().WithDetail("id", id)
	}

	rec := memory.EmptyRecord()
	rec.Summary = fields["summary"]

	if raw, ok := fields["messages"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Messages); err != nil {
			return nil, errx.Wrap(err, "failed to decode memory messages", errx.TypeInternal).
				WithDetail("id", id)
		}
	}
	if raw, ok := fields["char_count"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			rec.CharCount = n
		}
	}
	rec.CreatedAt = parseTime(fields["created_at"])
	rec.UpdatedAt = parseTime(fields["updated_at"])

	return &rec, nil
}

// Save merges the record into the stored hash
func (r *RedisMemoryRepository) Save(ctx context.Context, id string, rec memory.Record) error {
	messages, err := json.Marshal(rec.Messages)
	if err != nil {
		return errx.Wrap(err, "failed to encode memory messages", errx.TypeInternal).
			WithDetail("id", id)
	}

	key := r.key(id)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"summary":    rec.Summary,
		"messages":   string(messages),
		"char_count": rec.CharCount,
		"updated_at": formatTime(rec.UpdatedAt),
	})
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = rec.UpdatedAt
	}
	pipe.HSetNX(ctx, key, "created_at", formatTime(createdAt))

	if _, err := pipe.Exec(ctx); err != nil {
		return errx.Wrap(err, "failed to save memory record", errx.TypeExternal).
			WithDetail("id", id)
	}
	return nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
