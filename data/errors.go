package data

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Standard errors that backends and the engine use.
var (
	// Path resolution errors
	ErrInvalidPath = errors.New("treefs: invalid path detected")
	ErrInvalidID   = errors.New("treefs: invalid identifier")

	// Item errors
	ErrNotExist     = errors.New("treefs: item does not exist")
	ErrExist        = errors.New("treefs: item already exists")
	ErrConflict     = errors.New("treefs: destination already exists")
	ErrTypeMismatch = errors.New("treefs: incompatible item types")
	ErrNotDirectory = errors.New("treefs: not a directory")
	ErrNotFile      = errors.New("treefs: not a file")
	ErrIsRoot       = errors.New("treefs: operation not allowed on filesystem root")

	// Storage errors
	ErrNotReady = errors.New("treefs: storage not ready, tenant missing")
	ErrTooLarge = errors.New("treefs: object exceeds backend size limit")
	ErrClosed   = errors.New("treefs: backend already closed")

	// Archive errors
	ErrArchive        = errors.New("treefs: invalid or unsupported archive")
	ErrNotArchive     = errors.New("treefs: item is not a zip archive")
	ErrEmptySelection = errors.New("treefs: no items selected")

	// Backend errors
	ErrBackendUnsupported = errors.New("treefs: backend capability unsupported")
	ErrUnknownBackend     = errors.New("treefs: unknown backend type")
)

// PartialFailure reports a cascade that completed some but not all of its sub-items.
type PartialFailure struct {
	Operation string
	Completed []uuid.UUID
	Failed    uuid.UUID
	Err       error
}

func (e *PartialFailure) Error() string {
	if e.Failed == uuid.Nil {
		return fmt.Sprintf("treefs: %s partially failed after %d items: %v", e.Operation, len(e.Completed), e.Err)
	}
	return fmt.Sprintf("treefs: %s partially failed at '%s' after %d items: %v", e.Operation, e.Failed, len(e.Completed), e.Err)
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}

// NewPartialFailure returns err unchanged if nothing completed yet.
func NewPartialFailure(operation string, completed []uuid.UUID, failed uuid.UUID, err error) error {
	if len(completed) == 0 {
		return err
	}

	return &PartialFailure{
		Operation: operation,
		Completed: completed,
		Failed:    failed,
		Err:       err,
	}
}

type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
