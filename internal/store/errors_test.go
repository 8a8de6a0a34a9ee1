package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceNotFound_Message(t *testing.T) {
	err := &ReferenceNotFound{Entity: "publisher", ID: 42}
	assert.Equal(t, "publisher with id 42 does not exist", err.Error())
}

func TestPersistenceFailure_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &PersistenceFailure{Op: "create books", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "create books")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestFailed_WrapsPlainErrors(t *testing.T) {
	err := failed("create loans", errors.New("boom"))

	var pf *PersistenceFailure
	assert.ErrorAs(t, err, &pf)
	assert.Equal(t, "create loans", pf.Op)
}

func TestFailed_PreservesReferenceNotFound(t *testing.T) {
	refErr := &ReferenceNotFound{Entity: "user", ID: 7}

	err := failed("create fines", refErr)
	assert.Same(t, refErr, err)

	// Even wrapped, the typed error must survive so callers can map it.
	err = failed("create fines", fmt.Errorf("item 2: %w", refErr))
	var got *ReferenceNotFound
	assert.ErrorAs(t, err, &got)
	assert.Equal(t, int64(7), got.ID)
}

func TestFailed_DoesNotDoubleWrap(t *testing.T) {
	inner := failed("create users", errors.New("boom"))

	outer := failed("create users", inner)
	assert.Same(t, inner, outer)
}
