package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RecordService performs CRUD on one kind of record. It keeps no state
// between calls: every operation works through the session it is given and
// either commits or rolls back before returning.
type RecordService struct {
	kind   core.Kind
	logger *log.Logger
}

func NewRecordService(kind core.Kind, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.Default()
	}
	return &RecordService{
		kind:   kind,
		logger: logger.WithComponent(log.ComponentRecords),
	}
}

func (s *RecordService) Kind() core.Kind {
	return s.kind
}

// List returns all records, most recent first.
func (s *RecordService) List(ctx context.Context, sess storage.Session) ([]core.Record, error) {
	items, err := sess.List(ctx, s.kind)
	if err != nil {
		s.logFailure(ctx, log.OpList, 0, err)
		return nil, &ServiceError{
			Op:      log.OpList,
			Kind:    s.kind,
			Message: fmt.Sprintf("failed to load %s from the database", s.kind.Plural()),
			Err:     err,
		}
	}
	if items == nil {
		items = []core.Record{}
	}
	return items, nil
}

// Get returns the record with id or a *NotFoundError.
func (s *RecordService) Get(ctx context.Context, sess storage.Session, id int64) (*core.Record, error) {
	r, err := sess.Get(ctx, s.kind, id)
	if err != nil {
		s.logFailure(ctx, log.OpRead, id, err)
		return nil, &ServiceError{
			Op:      log.OpRead,
			Kind:    s.kind,
			ID:      id,
			Message: fmt.Sprintf("error loading %s with id %d", s.kind, id),
			Err:     err,
		}
	}
	if r == nil {
		return nil, newNotFound(log.OpRead, s.kind, id)
	}
	return r, nil
}

// Create persists a validated candidate and returns it with its new id.
// Any ID on the candidate is ignored.
func (s *RecordService) Create(ctx context.Context, sess storage.Session, candidate core.Record) (*core.Record, error) {
	r := candidate
	r.ID = 0
	r.Kind = s.kind

	if err := sess.Add(ctx, &r); err != nil {
		return nil, s.abort(ctx, sess, log.OpCreate, 0, fmt.Sprintf("failed to add %s to the database", s.kind), err)
	}
	if err := sess.Commit(); err != nil {
		return nil, s.abort(ctx, sess, log.OpCreate, 0, fmt.Sprintf("failed to add %s to the database", s.kind), err)
	}

	fields := s.fields(log.OpCreate, r.ID)
	fields[log.FieldAmount] = r.Amount
	fields[log.FieldCategory] = r.Category
	s.logger.InfoContext(ctx, "Record created", fields.ToSlice()...)
	return &r, nil
}

// Update copies the patch onto the stored record. A *NotFoundError from
// the lookup is returned as is.
func (s *RecordService) Update(ctx context.Context, sess storage.Session, id int64, patch core.RecordPatch) (*core.Record, error) {
	msg := fmt.Sprintf("failed to update %s with id %d", s.kind, id)

	r, err := s.Get(ctx, sess, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, err
		}
		return nil, s.rewrap(ctx, sess, log.OpUpdate, id, msg, err)
	}

	r.Apply(patch)
	if err := sess.Save(ctx, r); err != nil {
		return nil, s.abort(ctx, sess, log.OpUpdate, id, msg, err)
	}
	if err := sess.Commit(); err != nil {
		return nil, s.abort(ctx, sess, log.OpUpdate, id, msg, err)
	}

	fields := s.fields(log.OpUpdate, id)
	fields[log.FieldCategoryChanged] = patch.Category != nil
	s.logger.InfoContext(ctx, "Record updated", fields.ToSlice()...)
	return r, nil
}

// Delete permanently removes the record. A *NotFoundError from the lookup
// is returned as is.
func (s *RecordService) Delete(ctx context.Context, sess storage.Session, id int64) (bool, error) {
	msg := fmt.Sprintf("failed to delete %s with id %d", s.kind, id)

	r, err := s.Get(ctx, sess, id)
	if err != nil {
		if IsNotFound(err) {
			return false, err
		}
		return false, s.rewrap(ctx, sess, log.OpDelete, id, msg, err)
	}

	if err := sess.Delete(ctx, r); err != nil {
		return false, s.abort(ctx, sess, log.OpDelete, id, msg, err)
	}
	if err := sess.Commit(); err != nil {
		return false, s.abort(ctx, sess, log.OpDelete, id, msg, err)
	}

	s.logger.InfoContext(ctx, "Record deleted", s.fields(log.OpDelete, id).ToSlice()...)
	return true, nil
}

// abort rolls back the session and wraps cause in a ServiceError.
// A failed rollback is logged and never replaces cause.
func (s *RecordService) abort(ctx context.Context, sess storage.Session, op string, id int64, msg string, cause error) error {
	s.rollback(ctx, sess, op, id)
	s.logFailure(ctx, op, id, cause)
	return &ServiceError{Op: op, Kind: s.kind, ID: id, Message: msg, Err: cause}
}

// rewrap rolls back after a lookup that already failed and logged. The
// store error is carried over; the lookup's ServiceError is not nested.
func (s *RecordService) rewrap(ctx context.Context, sess storage.Session, op string, id int64, msg string, lookupErr error) error {
	s.rollback(ctx, sess, op, id)
	cause := lookupErr
	var se *ServiceError
	if errors.As(lookupErr, &se) {
		cause = se.Err
	}
	return &ServiceError{Op: op, Kind: s.kind, ID: id, Message: msg, Err: cause}
}

func (s *RecordService) rollback(ctx context.Context, sess storage.Session, op string, id int64) {
	if err := sess.Rollback(); err != nil {
		s.logger.ErrorContext(ctx, "Rollback failed", s.fields(op, id).WithError(err).ToSlice()...)
	}
}

func (s *RecordService) fields(op string, id int64) log.LogFields {
	return log.NewFields().WithOperation(op).WithRecord(s.kind.String(), id)
}

func (s *RecordService) logFailure(ctx context.Context, op string, id int64, err error) {
	fields := s.fields(op, id).WithError(err)
	fields[log.FieldErrorType] = log.ErrorTypeDatabase
	s.logger.ErrorContext(ctx, "Database error", fields.ToSlice()...)
}
