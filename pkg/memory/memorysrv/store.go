package memorysrv

import (
	"context"
	"time"

	"github.com/hoshino-dev/hoshi/pkg/errx"
	"github.com/hoshino-dev/hoshi/pkg/logx"
	"github.com/hoshino-dev/hoshi/pkg/memory"
)

// Store adapts a memory.Repository into the never-failing load/save surface
// the reply pipeline needs. Memory is best-effort: when the backing store is
// absent or misbehaving, Load hands back a fresh empty record and Save is a
// silent no-op, so the reply path keeps working statelessly.
type Store struct {
	repo memory.Repository
}

// NewStore creates a Store. repo may be nil when no backing store is configured.
func NewStore(repo memory.Repository) *Store {
	return &Store{repo: repo}
}

// Load returns the memory record for id, creating and persisting a fresh one
// when none exists. It never returns an error.
func (s *Store) Load(ctx context.Context, id string) memory.Record {
	if s.repo == nil {
		return memory.EmptyRecord()
	}

	rec, err := s.repo.Find(ctx, id)
	if err == nil {
		normalize(rec)
		return *rec
	}

	if errx.IsCode(err, memory.CodeRecordNotFound) {
		fresh := memory.EmptyRecord()
		now := time.Now().UTC()
		fresh.CreatedAt = now
		fresh.UpdatedAt = now
		if saveErr := s.repo.Save(ctx, id, fresh); saveErr != nil {
			logx.Errorf("Error initializing memory for user %s: %v", id, saveErr)
		}
		return fresh
	}

	logx.Errorf("Error loading memory for user %s: %v", id, err)
	return memory.EmptyRecord()
}

// Save persists the record, stamping UpdatedAt. Failures are logged only.
func (s *Store) Save(ctx context.Context, id string, rec memory.Record) {
	if s.repo == nil {
		return
	}

	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, id, rec); err != nil {
		logx.Errorf("Error saving memory for user %s: %v", id, err)
	}
}

// normalize defaults fields a partially-written document may be missing
func normalize(rec *memory.Record) {
	if rec.Messages == nil {
		rec.Messages = []memory.Turn{}
	}
	if rec.CharCount < 0 {
		rec.CharCount = rec.ContentChars()
	}
}
