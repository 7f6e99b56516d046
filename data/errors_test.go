package data

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPartialFailure(t *testing.T) {
	cause := fmt.Errorf("delete blob: %w", ErrNotReady)

	err := NewPartialFailure("delete", nil, uuid.Nil, cause)
	assert.Same(t, cause, err)

	err = NewPartialFailure("delete", []uuid.UUID{NewID()}, NewID(), cause)

	var pf *PartialFailure
	assert.True(t, errors.As(err, &pf))
	assert.Len(t, pf.Completed, 1)
	assert.True(t, errors.Is(err, ErrNotReady))
}

func TestErrors_Join(t *testing.T) {
	errs := Errors{}
	errs.Add(nil)
	assert.NoError(t, errs.Errors())

	errs.Add(ErrNotExist)
	errs.Add(ErrConflict)
	assert.Equal(t, 2, errs.Len())
	assert.True(t, errors.Is(errs.Errors(), ErrConflict))

	errs.Clear()
	assert.NoError(t, errs.Errors())
}
