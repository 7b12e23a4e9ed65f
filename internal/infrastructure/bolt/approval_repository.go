// Package bolt stores approval records in an embedded bbolt database.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
)

// Layout: approvals/<repo>/<pr number>/<commit sha> -> JSON record.
var rootBucket = []byte("approvals")

// ApprovalRepository implements approval.Repository.
type ApprovalRepository struct {
	db *bbolt.DB
}

var _ approval.Repository = (*ApprovalRepository)(nil)

// Open opens (or creates) the database file at path.
func Open(path string, timeout time.Duration) (*ApprovalRepository, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", approval.ErrStoreUnavailable, path, err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: init buckets: %v", approval.ErrStoreUnavailable, err)
	}
	return &ApprovalRepository{db: db}, nil
}

func (r *ApprovalRepository) Close() error {
	return r.db.Close()
}

func (r *ApprovalRepository) Get(ctx context.Context, key approval.Key, commit string) (*approval.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var rec *approval.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := prBucket(tx, key)
		if b == nil {
			return nil
		}
		var err error
		rec, err = decode(b.Get([]byte(commit)))
		return err
	})
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return rec, nil
}

func (r *ApprovalRepository) Put(ctx context.Context, key approval.Key, commit string, rec *approval.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b, err := createPRBucket(tx, key)
		if err != nil {
			return err
		}
		return put(b, commit, rec)
	})
	return wrap("put", key, err)
}

func (r *ApprovalRepository) DeleteAll(ctx context.Context, key approval.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		repo := tx.Bucket(rootBucket).Bucket([]byte(key.Repo))
		if repo == nil {
			return nil
		}
		err := repo.DeleteBucket(numberKey(key))
		if err == bbolt.ErrBucketNotFound {
			return nil
		}
		return err
	})
	return wrap("delete", key, err)
}

// Update runs fn inside a bolt write transaction; bolt allows one writer at a
// time, so concurrent updates of the same record are serialised.
func (r *ApprovalRepository) Update(ctx context.Context, key approval.Key, commit string, fn approval.UpdateFunc) (*approval.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *approval.Record
	var fnErr error
	err := r.db.Update(func(tx *bbolt.Tx) error {
		var current *approval.Record
		if b := prBucket(tx, key); b != nil {
			var err error
			if current, err = decode(b.Get([]byte(commit))); err != nil {
				return err
			}
		}
		next, changed, err := fn(current)
		if err != nil {
			fnErr = err
			return err
		}
		out = next
		if !changed || next == nil {
			return nil
		}
		b, err := createPRBucket(tx, key)
		if err != nil {
			return err
		}
		return put(b, commit, next)
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, wrap("update", key, err)
	}
	return out, nil
}

func (r *ApprovalRepository) Prune(ctx context.Context, key approval.Key, keep string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := prBucket(tx, key)
		if b == nil {
			return nil
		}
		var stale [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			if string(k) != keep {
				stale = append(stale, append([]byte{}, k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("prune", key, err)
}

func (r *ApprovalRepository) ListCommits(ctx context.Context, key approval.Key) (map[string]*approval.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]*approval.Record)
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := prBucket(tx, key)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			rec, err := decode(v)
			if err != nil {
				return err
			}
			out[string(k)] = rec
			return nil
		})
	})
	if err != nil {
		return nil, wrap("list", key, err)
	}
	return out, nil
}

func prBucket(tx *bbolt.Tx, key approval.Key) *bbolt.Bucket {
	repo := tx.Bucket(rootBucket).Bucket([]byte(key.Repo))
	if repo == nil {
		return nil
	}
	return repo.Bucket(numberKey(key))
}

func createPRBucket(tx *bbolt.Tx, key approval.Key) (*bbolt.Bucket, error) {
	repo, err := tx.Bucket(rootBucket).CreateBucketIfNotExists([]byte(key.Repo))
	if err != nil {
		return nil, err
	}
	return repo.CreateBucketIfNotExists(numberKey(key))
}

func numberKey(key approval.Key) []byte {
	return []byte(strconv.Itoa(key.Number))
}

func put(b *bbolt.Bucket, commit string, rec *approval.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return b.Put([]byte(commit), data)
}

func decode(data []byte) (*approval.Record, error) {
	if data == nil {
		return nil, nil
	}
	var rec approval.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Voters == nil {
		rec.Voters = []string{}
	}
	return &rec, nil
}

func wrap(op string, key approval.Key, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %v", approval.ErrStoreUnavailable, op, key, err)
}
