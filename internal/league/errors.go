package league

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package unwraps to exactly one
// of them, so callers can map failures without knowing the specific cause.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

var (
	ErrEmptyPool          = newError(ErrValidation, "entrant pool is empty")
	ErrNegativeEntryCount = newError(ErrValidation, "requested entry count must not be negative")
	ErrInvalidElimination = newError(ErrValidation, "invalid elimination")
	ErrInvalidPlacement   = newError(ErrValidation, "invalid placement")
	ErrInvalidStatus      = newError(ErrValidation, "invalid status")
	ErrInvalidConfig      = newError(ErrValidation, "invalid league configuration")

	ErrAlreadyDrawn       = newError(ErrConflict, "league has already been drawn")
	ErrLeagueLocked       = newError(ErrConflict, "league setup is locked after the draw")
	ErrInvalidTransition  = newError(ErrConflict, "invalid status transition")
	ErrAlreadyEliminated  = newError(ErrConflict, "entrant is already eliminated")
	ErrNotEliminated      = newError(ErrConflict, "entrant is not eliminated")
	ErrDuplicatePlacement = newError(ErrConflict, "placement is already taken in this event")
	ErrDuplicateWrestler  = newError(ErrConflict, "wrestler is already assigned in this event")

	ErrLeagueNotFound      = newError(ErrNotFound, "league not found")
	ErrEventNotFound       = newError(ErrNotFound, "event not found")
	ErrEntrantNotFound     = newError(ErrNotFound, "entrant not found")
	ErrParticipantNotFound = newError(ErrNotFound, "participant not found")
)

// CountMismatchError is returned by Draw when the requested entries do not add
// up to the pool size.
type CountMismatchError struct {
	Requested int
	PoolSize  int
}

// Delta is negative for a deficit and positive for a surplus.
func (e *CountMismatchError) Delta() int {
	return e.Requested - e.PoolSize
}

func (e *CountMismatchError) Error() string {
	delta := e.Delta()
	kind := "surplus"
	if delta < 0 {
		kind = "deficit"
		delta = -delta
	}
	return fmt.Sprintf("participants requested %d entries but the pool has %d (%s of %d)", e.Requested, e.PoolSize, kind, delta)
}

func (e *CountMismatchError) Unwrap() error { return ErrValidation }
