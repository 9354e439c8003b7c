package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

// ErrStaleRecord is returned when a save or delete matched no row.
var ErrStaleRecord = errors.New("record no longer exists")

// Session is a transactional unit of work over the record tables.
// Changes made through it become visible to others only after Commit.
type Session interface {
	// Add inserts r, filling defaults and the store assigned ID.
	Add(ctx context.Context, r *core.Record) error
	// Get returns nil and no error when the record does not exist.
	Get(ctx context.Context, kind core.Kind, id int64) (*core.Record, error)
	// Save writes the mutable fields of r.
	Save(ctx context.Context, r *core.Record) error
	Delete(ctx context.Context, r *core.Record) error
	// List returns every record of kind, newest first.
	List(ctx context.Context, kind core.Kind) ([]core.Record, error)
	Commit() error
	Rollback() error
}

// ScopedSession is a Session whose owner must Close it. Close discards
// any uncommitted work.
type ScopedSession interface {
	Session
	Close() error
}

// SQLSession implements Session on top of database/sql. A transaction is
// begun by the first write and ends with Commit or Rollback; the next write
// begins a fresh one. Reads join the open transaction, or run on the pool
// when there is none, so they never take the SQLite write lock.
// A SQLSession must not be shared between goroutines.
type SQLSession struct {
	store *Store
	tx    *sql.Tx
}

var _ Session = (*SQLSession)(nil)

func (s *SQLSession) queries(ctx context.Context) (*Queries, error) {
	if s.tx == nil {
		tx, err := s.store.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin transaction: %w", err)
		}
		s.tx = tx
	}
	return s.store.queries.WithTx(s.tx), nil
}

func (s *SQLSession) reader() *Queries {
	if s.tx == nil {
		return s.store.queries
	}
	return s.store.queries.WithTx(s.tx)
}

func (s *SQLSession) Add(ctx context.Context, r *core.Record) error {
	q, err := s.queries(ctx)
	if err != nil {
		return err
	}

	r.ApplyDefaults(s.store.now())
	id, err := q.CreateRecord(ctx, CreateRecordParams{
		Kind:        r.Kind,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
		DateCreated: r.DateCreated,
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", r.Kind, err)
	}
	r.ID = id
	return nil
}

func (s *SQLSession) Get(ctx context.Context, kind core.Kind, id int64) (*core.Record, error) {
	r, err := s.reader().GetRecord(ctx, kind, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s %d: %w", kind, id, err)
	}
	return &r, nil
}

func (s *SQLSession) Save(ctx context.Context, r *core.Record) error {
	q, err := s.queries(ctx)
	if err != nil {
		return err
	}

	n, err := q.UpdateRecord(ctx, UpdateRecordParams{
		Kind:        r.Kind,
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		Category:    r.Category,
	})
	if err != nil {
		return fmt.Errorf("update %s %d: %w", r.Kind, r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %d: %w", r.Kind, r.ID, ErrStaleRecord)
	}
	return nil
}

func (s *SQLSession) Delete(ctx context.Context, r *core.Record) error {
	q, err := s.queries(ctx)
	if err != nil {
		return err
	}

	n, err := q.DeleteRecord(ctx, r.Kind, r.ID)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.Kind, r.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %d: %w", r.Kind, r.ID, ErrStaleRecord)
	}
	return nil
}

func (s *SQLSession) List(ctx context.Context, kind core.Kind) ([]core.Record, error) {
	items, err := s.reader().ListRecords(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	return items, nil
}

// Commit is a no-op when nothing has been done since the last Commit or
// Rollback.
func (s *SQLSession) Commit() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLSession) Rollback() error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// Close discards any uncommitted work.
func (s *SQLSession) Close() error {
	return s.Rollback()
}
