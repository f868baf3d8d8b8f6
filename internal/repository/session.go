package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/datastore"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
)

type changeKind int

const (
	changeInsert changeKind = iota
	changeUpdate
	changeDelete
)

func (k changeKind) String() string {
	switch k {
	case changeInsert:
		return "insert"
	case changeUpdate:
		return "update"
	default:
		return "delete"
	}
}

// pendingChange is one staged write, applied in staging order at flush.
type pendingChange struct {
	kind   changeKind
	table  string
	target any
	apply  func(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error)
	undo   func()
}

// Session holds the state of one unit of work: its open transaction, if
// any, and the writes staged since the last SaveChanges. It is not safe for
// concurrent use.
//
// Reads flush staged writes into the session transaction first, so a unit of
// work always observes its own changes. Flushed writes stay uncommitted until
// SaveChanges.
type Session struct {
	ds      *datastore.Datastore
	metrics *metrics.StoreMetrics
	log     *log.Entry
	now     func() time.Time

	tx       *sql.Tx
	explicit bool
	pending  []pendingChange
	closed   bool

	// flushed holds writes applied to tx by a read but not yet saved.
	flushed     []pendingChange
	flushedRows int
	// savepoint is set while flushed writes sit under autoflushSavepoint
	// inside an explicit transaction.
	savepoint bool
}

const autoflushSavepoint = "autoflush"

func (s *Session) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// query runs a read inside the session transaction, or through the statement
// cache when none is open and cacheable is set. Staged writes are flushed
// first.
func (s *Session) query(ctx context.Context, b sq.Sqlizer, cacheable bool) (*sql.Rows, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	if err := s.autoflush(ctx); err != nil {
		return nil, err
	}
	if s.tx != nil {
		return s.tx.QueryContext(ctx, query, args...)
	}
	if cacheable {
		return s.ds.Query(ctx, query, args...)
	}
	return s.ds.DB.QueryContext(ctx, query, args...)
}

// queryScalar scans a single-value query such as COUNT(*).
func (s *Session) queryScalar(ctx context.Context, b sq.Sqlizer, dest any) error {
	rows, err := s.query(ctx, b, true)
	if err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return sql.ErrNoRows
	}
	if err := rows.Scan(dest); err != nil {
		return err
	}
	return rows.Err()
}

func (s *Session) stage(change pendingChange) {
	for _, p := range s.pending {
		// Staging the same update twice writes once.
		if change.kind == changeUpdate && p.kind == changeUpdate && p.target == change.target {
			return
		}
	}
	s.pending = append(s.pending, change)
}

// HasPendingChanges reports whether writes are waiting for SaveChanges.
func (s *Session) HasPendingChanges() bool {
	return len(s.pending) > 0 || len(s.flushed) > 0
}

func (s *Session) begin(ctx context.Context) error {
	tx, err := s.ds.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// flush applies staged changes to the open transaction in staging order,
// moving each applied change to flushed.
func (s *Session) flush(ctx context.Context) error {
	now := s.now()
	for len(s.pending) > 0 {
		change := s.pending[0]
		n, err := change.apply(ctx, s.tx, now)
		if err != nil {
			return fmt.Errorf("failed to %s %s: %w", change.kind, change.table, err)
		}
		s.pending = s.pending[1:]
		s.flushed = append(s.flushed, change)
		s.flushedRows += int(n)
	}
	s.pending = nil
	return nil
}

// autoflush writes staged changes into the session transaction, opening one
// if needed. Inside an explicit transaction the writes go under a savepoint
// so CommitTransaction can return them to staging.
func (s *Session) autoflush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if s.tx == nil {
		if err := s.begin(ctx); err != nil {
			return err
		}
	}
	if s.explicit && !s.savepoint {
		if _, err := s.tx.ExecContext(ctx, "SAVEPOINT "+autoflushSavepoint); err != nil {
			return s.abort(fmt.Errorf("failed to open savepoint: %w", err))
		}
		s.savepoint = true
	}
	if err := s.flush(ctx); err != nil {
		err = s.abort(err)
		s.log.WithError(err).Warn("flushing staged changes failed, transaction rolled back")
		return err
	}
	return nil
}

// resetFlushed forgets flushed writes and resets the IDs they assigned.
func (s *Session) resetFlushed() {
	for _, c := range s.flushed {
		if c.undo != nil {
			c.undo()
		}
	}
	s.flushed, s.flushedRows, s.savepoint = nil, 0, false
}

// unflush moves flushed writes back to the front of the staged list.
func (s *Session) unflush() {
	flushed := s.flushed
	s.resetFlushed()
	s.pending = append(flushed, s.pending...)
}

// abort rolls back the transaction after a failed write and discards every
// staged and flushed change.
func (s *Session) abort(err error) error {
	s.resetFlushed()
	for _, c := range s.pending {
		if c.undo != nil {
			c.undo()
		}
	}
	s.pending = nil
	if rbErr := s.rollback(); rbErr != nil {
		err = errors.Join(err, rbErr)
	}
	return err
}

// SaveChanges writes all staged changes. Without an explicit transaction the
// writes are committed atomically; inside one they stay uncommitted until
// CommitTransaction. On failure the open transaction is rolled back.
func (s *Session) SaveChanges(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if !s.HasPendingChanges() {
		return 0, nil
	}

	start := time.Now()
	if s.tx == nil {
		if err := s.begin(ctx); err != nil {
			return 0, err
		}
	}

	err := s.flush(ctx)
	if err == nil && s.savepoint {
		if _, relErr := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+autoflushSavepoint); relErr != nil {
			err = fmt.Errorf("failed to release savepoint: %w", relErr)
		}
	}
	if err != nil {
		err = s.abort(err)
		s.log.WithError(err).Warn("save changes failed, transaction rolled back")
		return 0, err
	}

	affected := s.flushedRows
	if !s.explicit {
		if err := s.commit(); err != nil {
			s.resetFlushed()
			s.log.WithError(err).Warn("save changes failed to commit")
			return 0, err
		}
	}
	s.flushed, s.flushedRows, s.savepoint = nil, 0, false

	s.metrics.RecordSave(affected, time.Since(start))
	s.log.WithField("rows", affected).Debug("changes saved")
	return affected, nil
}

// BeginTransaction opens an explicit transaction spanning several
// SaveChanges calls. Writes flushed by earlier reads are staged again and
// land in the new transaction.
func (s *Session) BeginTransaction(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.explicit {
		return ErrTransactionActive
	}
	if s.tx != nil {
		s.unflush()
		if err := s.rollback(); err != nil {
			return err
		}
	}
	if err := s.begin(ctx); err != nil {
		return err
	}
	s.explicit = true
	return nil
}

// CommitTransaction commits the explicit transaction. It is a no-op when
// none is open. Changes staged but not saved stay staged, including those a
// read flushed into the transaction.
func (s *Session) CommitTransaction(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.explicit {
		return nil
	}
	if s.savepoint {
		for _, stmt := range []string{"ROLLBACK TO SAVEPOINT ", "RELEASE SAVEPOINT "} {
			if _, err := s.tx.ExecContext(ctx, stmt+autoflushSavepoint); err != nil {
				return s.abort(fmt.Errorf("failed to restore savepoint: %w", err))
			}
		}
		s.unflush()
	}
	return s.commit()
}

// RollbackTransaction aborts the explicit transaction and discards staged
// changes. It is a no-op when none is open.
func (s *Session) RollbackTransaction(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.explicit {
		return nil
	}
	s.resetFlushed()
	s.pending = nil
	return s.rollback()
}

// InTransaction reports whether an explicit transaction is open.
func (s *Session) InTransaction() bool {
	return s.tx != nil && s.explicit
}

func (s *Session) commit() error {
	tx := s.tx
	s.tx, s.explicit = nil, false
	if err := tx.Commit(); err != nil {
		s.metrics.RecordRollback()
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.metrics.RecordCommit()
	return nil
}

func (s *Session) rollback() error {
	tx := s.tx
	s.tx, s.explicit = nil, false
	if tx == nil {
		return nil
	}
	s.metrics.RecordRollback()
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Close rolls back an open transaction and discards staged changes.
// Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.HasPendingChanges() {
		s.log.WithField("pending", len(s.pending)+len(s.flushed)).Debug("discarding unsaved changes")
	}
	s.resetFlushed()
	s.pending = nil
	if s.tx != nil {
		s.log.Debug("rolling back open transaction on close")
		return s.rollback()
	}
	return nil
}
