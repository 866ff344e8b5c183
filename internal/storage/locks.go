package db

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inovaitive/revu/internal/core/domain"
)

// AnalysisStore reads and writes analysis records.
type AnalysisStore interface {
	FindAnalysis(ctx context.Context, feedbackID string) (*domain.Analysis, error)
	SaveAnalysis(ctx context.Context, a *domain.Analysis) error
}

// FeedbackLockID maps a feedback ID onto its advisory lock key.
func FeedbackLockID(feedbackID string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feedbackID))

	return feedbackLockNamespace | int64(h.Sum32())
}

// WithFeedbackLock runs fn inside one transaction that holds the advisory
// lock for feedbackID. The store passed to fn is bound to that transaction,
// so fn never needs a second pool connection while the lock is held.
// The transaction commits when fn returns nil.
func (db *DB) WithFeedbackLock(ctx context.Context, feedbackID string, fn func(AnalysisStore) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) //nolint:errcheck // rollback after commit returns error, this is best-effort cleanup
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", FeedbackLockID(feedbackID)); err != nil {
		return fmt.Errorf("acquire feedback lock: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

type txStore struct {
	tx pgx.Tx
}

func (s *txStore) FindAnalysis(ctx context.Context, feedbackID string) (*domain.Analysis, error) {
	return findAnalysis(ctx, s.tx, feedbackID)
}

func (s *txStore) SaveAnalysis(ctx context.Context, a *domain.Analysis) error {
	return saveAnalysis(ctx, s.tx, a)
}

// TryAcquireAdvisoryLock takes lockID without waiting. When acquired is false
// the release func is nil. The lock is session scoped and pins a pooled
// connection until released.
func (db *DB) TryAcquireAdvisoryLock(ctx context.Context, lockID int64) (release func(), acquired bool, err error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", lockID).Scan(&acquired); err != nil {
		conn.Release()

		return nil, false, fmt.Errorf("try acquire advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()

		return nil, false, nil
	}

	return db.unlocker(conn, lockID), true, nil
}

func (db *DB) unlocker(conn *pgxpool.Conn, lockID int64) func() {
	return func() {
		// The caller's context may already be cancelled; unlock on a fresh one.
		ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
		defer cancel()

		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", lockID); err != nil {
			db.Logger.Warn().Err(err).Int64("lock_id", lockID).Msg("release advisory lock")
			// Drop the session so the server frees the lock.
			_ = conn.Conn().Close(ctx)
		}

		conn.Release()
	}
}
