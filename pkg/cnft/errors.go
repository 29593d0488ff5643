package cnft

import (
	"errors"
	"fmt"
)

var (
	ErrTreeFull         = errors.New("merkle tree is full")
	ErrInvalidAccount   = errors.New("invalid concurrent merkle tree account")
	ErrCanopyTooDeep    = errors.New("canopy depth exceeds tree depth")
	ErrUnsupportedDepth = errors.New("unsupported tree depth")
)

// SequenceError is returned when a leaf is inserted at any index other than the next
// free one. On-chain appends are strictly sequential.
type SequenceError struct {
	Expected uint32
	Got      uint32
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("out of order leaf insertion: expected index %d, got %d", e.Expected, e.Got)
}

// RangeError is returned when an operation targets an index outside the populated range.
type RangeError struct {
	Op    string
	Index uint32
	Size  uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: leaf index %d out of bounds (tree has %d leaves)", e.Op, e.Index, e.Size)
}

// NotConfirmedError is returned when a proof or update is requested while the mirror holds
// a mutation the cluster has not confirmed yet.
type NotConfirmedError struct {
	Op    string
	Index uint32
}

func (e *NotConfirmedError) Error() string {
	return fmt.Sprintf("%s: leaf %d has an unconfirmed mutation", e.Op, e.Index)
}
