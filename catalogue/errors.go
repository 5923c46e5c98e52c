package catalogue

import (
	"errors"
	"fmt"
)

// ErrInvalidAddress matches every *ParseError via errors.Is.
var ErrInvalidAddress = errors.New("invalid address")

// ParseError reports address text with a fragment that is not a
// non-negative decimal integer.
type ParseError struct {
	Text     string
	Fragment string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid address %q: bad segment %q: %v", e.Text, e.Fragment, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidAddress }

// MissReason tells why an address did not resolve.
type MissReason int

const (
	ReasonOutOfRange MissReason = iota + 1
	ReasonLeafBlocked
)

func (r MissReason) String() string {
	switch r {
	case ReasonOutOfRange:
		return "out of range"
	case ReasonLeafBlocked:
		return "leaf blocks descent"
	default:
		return "unknown"
	}
}

// MissError is the diagnostic form of a failed lookup. Depth is the index
// of the segment that could not be consumed.
type MissError struct {
	Address Address
	Depth   int
	Reason  MissReason
}

func (e *MissError) Error() string {
	return fmt.Sprintf("address %s: segment %d: %s", e.Address, e.Depth, e.Reason)
}
