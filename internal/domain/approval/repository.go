package approval

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_repository.go -package=mocks . Repository

import (
	"context"
)

// UpdateFunc receives the stored record (nil when absent) and returns the
// record to persist. Returning changed=false skips the write.
type UpdateFunc func(current *Record) (next *Record, changed bool, err error)

// Repository defines persistence for approval records.
type Repository interface {
	// Get returns nil, nil when no record exists for the commit.
	Get(ctx context.Context, key Key, commit string) (*Record, error)
	Put(ctx context.Context, key Key, commit string, record *Record) error
	// DeleteAll removes every commit entry of the pull request.
	DeleteAll(ctx context.Context, key Key) error

	// Update runs fn as an atomic read-modify-write of one commit entry.
	Update(ctx context.Context, key Key, commit string, fn UpdateFunc) (*Record, error)
	// Prune removes every commit entry except keep.
	Prune(ctx context.Context, key Key, keep string) error
	ListCommits(ctx context.Context, key Key) (map[string]*Record, error)
}
