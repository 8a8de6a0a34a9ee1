package store

import (
	"errors"
	"fmt"
)

// ReferenceNotFound reports that a foreign key in a candidate record names a
// parent row that does not exist. It aborts the whole containing batch before
// any row of that batch is committed.
type ReferenceNotFound struct {
	Entity string // referenced entity, e.g. "user", "publisher"
	ID     int64  // the id the candidate pointed at
}

func (e *ReferenceNotFound) Error() string {
	return fmt.Sprintf("%s with id %d does not exist", e.Entity, e.ID)
}

// PersistenceFailure wraps any other failure during a transactional write or a
// read query: constraint violations, connectivity loss, driver errors. The
// underlying cause is preserved for logs; the web layer surfaces it as a
// generic server error.
type PersistenceFailure struct {
	Op    string // operation that failed, e.g. "insert users", "query fine totals"
	Cause error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Cause
}

// failed wraps err as a PersistenceFailure unless it already carries one of the
// store's typed errors.
func failed(op string, err error) error {
	var refErr *ReferenceNotFound
	var perErr *PersistenceFailure
	if errors.As(err, &refErr) || errors.As(err, &perErr) {
		return err
	}
	return &PersistenceFailure{Op: op, Cause: err}
}
