package data

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a time-ordered v7 identifier.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// ParseID parses an identifier, tagging failures with ErrInvalidID.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: '%s'", ErrInvalidID, s)
	}
	return id, nil
}

func CloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}

// SameID compares two optional identifiers; nil only equals nil.
func SameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
