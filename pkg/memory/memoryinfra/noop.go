package memoryinfra

import (
	"context"

	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// NoopMemoryRepository is used when no memory store is configured: every
// lookup misses and every save is discarded, so the bot runs stateless.
type NoopMemoryRepository struct{}

func NewNoopMemoryRepository() memory.Repository {
	return &NoopMemoryRepository{}
}

func (r *NoopMemoryRepository) Find(ctx context.Context, id string) (*memory.Record, error) {
	return nil, memory.ErrRecordNotFound().WithDetail("id", id)
}

func (r *NoopMemoryRepository) Save(ctx context.Context, id string, rec memory.Record) error {
	return nil
}
