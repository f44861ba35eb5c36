package memory

import (
	"context"
)

// Repository defines the contract for persisting memory records.
//
// Save merges the record into the stored document: fields carried by the
// record are written, anything else already stored stays untouched, and
// CreatedAt is only written on first insert.
type Repository interface {
	Find(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, id string, record Record) error
}
