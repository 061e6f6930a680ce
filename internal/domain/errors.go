package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID         = errors.New("piece id is empty")
	ErrDuplicateID     = errors.New("duplicate piece id")
	ErrPieceNotFound   = errors.New("piece not found")
	ErrInvalidPosition = errors.New("position off board")
	ErrIllegalMove     = errors.New("illegal move")
	ErrImmobilized     = errors.New("piece immobilized")
	ErrNotActive       = errors.New("piece not active")
	ErrUnknownType     = errors.New("unknown piece type")
	ErrNoSpace         = errors.New("no empty square")
)

// MoveRejection reports a refused move together with the authoritative position the
// client should roll back to.
type MoveRejection struct {
	ID      string
	Correct Position
	Reason  error
}

func (r *MoveRejection) Error() string {
	return fmt.Sprintf("move rejected for %s (stays at %s): %v", r.ID, r.Correct, r.Reason)
}

func (r *MoveRejection) Unwrap() error { return r.Reason }
