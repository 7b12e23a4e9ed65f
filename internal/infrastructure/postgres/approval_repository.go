package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paveldruzyak/commodus/internal/domain/approval"
)

// ApprovalRepository implements approval.Repository.
type ApprovalRepository struct {
	pool *pgxpool.Pool
}

var _ approval.Repository = (*ApprovalRepository)(nil)

func NewApprovalRepository(pool *pgxpool.Pool) *ApprovalRepository {
	return &ApprovalRepository{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *ApprovalRepository) Get(ctx context.Context, key approval.Key, commit string) (*approval.Record, error) {
	rec, err := getRecord(ctx, r.pool, key, commit, false)
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return rec, nil
}

func (r *ApprovalRepository) Put(ctx context.Context, key approval.Key, commit string, rec *approval.Record) error {
	_, err := r.pool.Exec(ctx, upsertSQL, key.Repo, key.Number, commit, rec.PlusOneCount, voters(rec), rec.Creator)
	return wrap("put", key, err)
}

func (r *ApprovalRepository) DeleteAll(ctx context.Context, key approval.Key) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM approval_records WHERE repo=$1 AND pr_number=$2
	`, key.Repo, key.Number)
	return wrap("delete", key, err)
}

// Update holds a transaction scoped advisory lock on the pull request while
// fn runs, so concurrent writers of the same record queue up.
func (r *ApprovalRepository) Update(ctx context.Context, key approval.Key, commit string, fn approval.UpdateFunc) (*approval.Record, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, wrap("begin", key, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return nil, wrap("lock", key, err)
	}
	current, err := getRecord(ctx, tx, key, commit, true)
	if err != nil {
		return nil, wrap("update", key, err)
	}
	next, changed, err := fn(current)
	if err != nil {
		return nil, err
	}
	if changed && next != nil {
		if _, err := tx.Exec(ctx, upsertSQL, key.Repo, key.Number, commit, next.PlusOneCount, voters(next), next.Creator); err != nil {
			return nil, wrap("update", key, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, wrap("commit", key, err)
	}
	return next, nil
}

func (r *ApprovalRepository) Prune(ctx context.Context, key approval.Key, keep string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM approval_records WHERE repo=$1 AND pr_number=$2 AND commit_sha<>$3
	`, key.Repo, key.Number, keep)
	return wrap("prune", key, err)
}

func (r *ApprovalRepository) ListCommits(ctx context.Context, key approval.Key) (map[string]*approval.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT commit_sha, plus_one_count, voters, creator
		FROM approval_records WHERE repo=$1 AND pr_number=$2
	`, key.Repo, key.Number)
	if err != nil {
		return nil, wrap("list", key, err)
	}
	defer rows.Close()
	out := make(map[string]*approval.Record)
	for rows.Next() {
		var commit string
		var rec approval.Record
		if err := rows.Scan(&commit, &rec.PlusOneCount, &rec.Voters, &rec.Creator); err != nil {
			return nil, wrap("list", key, err)
		}
		if rec.Voters == nil {
			rec.Voters = []string{}
		}
		out[commit] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", key, err)
	}
	return out, nil
}

const upsertSQL = `
	INSERT INTO approval_records (repo, pr_number, commit_sha, plus_one_count, voters, creator, updated_at)
	VALUES ($1,$2,$3,$4,$5,$6,now())
	ON CONFLICT (repo, pr_number, commit_sha)
	DO UPDATE SET plus_one_count=EXCLUDED.plus_one_count, voters=EXCLUDED.voters, creator=EXCLUDED.creator, updated_at=now()
`

func getRecord(ctx context.Context, q querier, key approval.Key, commit string, forUpdate bool) (*approval.Record, error) {
	query := `
		SELECT plus_one_count, voters, creator
		FROM approval_records WHERE repo=$1 AND pr_number=$2 AND commit_sha=$3
	`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var rec approval.Record
	if err := q.QueryRow(ctx, query, key.Repo, key.Number, commit).Scan(&rec.PlusOneCount, &rec.Voters, &rec.Creator); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if rec.Voters == nil {
		rec.Voters = []string{}
	}
	return &rec, nil
}

func voters(rec *approval.Record) []string {
	if rec.Voters == nil {
		return []string{}
	}
	return rec.Voters
}

func wrap(op string, key approval.Key, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %v", approval.ErrStoreUnavailable, op, key, err)
}
