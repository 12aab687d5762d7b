// Package id wraps UUID generation behind an opaque identifier type,
// grounded on the teacher's pkg.GenerateUUIDv7 helper used throughout
// components/ledger's postgres models.
package id

import "github.com/google/uuid"

// ID is an opaque entity identifier (spec.md §3.1).
type ID string

// New generates a fresh time-ordered identifier. UUIDv7 is preferred over
// v4 the same way the teacher's postgres models do, so identifiers sort
// close to insertion order without leaking sequence information.
func New() ID {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}

	return ID(u.String())
}

func (i ID) String() string { return string(i) }

func (i ID) IsZero() bool { return i == "" }
