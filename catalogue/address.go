// file: shopbot/catalogue/address.go
package catalogue

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const sep = "/"

// Address names a node by the chain of child indexes from the root.
// The zero value is the root address.
type Address struct {
	segs []uint
}

var (
	_ fmt.Stringer = Address{}
)

// ----------------------------------------------------
// Constructors
// ----------------------------------------------------

// Root returns the empty address.
func Root() Address { return Address{} }

// NewAddress builds an address from root-to-node segments.
func NewAddress(segs ...uint) Address {
	if len(segs) == 0 {
		return Address{}
	}
	return Address{segs: slices.Clone(segs)}
}

// Join returns a new address with segment appended.
func (a Address) Join(segment uint) Address {
	segs := make([]uint, len(a.segs)+1)
	copy(segs, a.segs)
	segs[len(a.segs)] = segment
	return Address{segs: segs}
}

// Parent drops the last segment. It reports false on the root.
func (a Address) Parent() (Address, bool) {
	if len(a.segs) == 0 {
		return Address{}, false
	}
	return NewAddress(a.segs[:len(a.segs)-1]...), true
}

// ----------------------------------------------------
// Accessors
// ----------------------------------------------------

func (a Address) Len() int         { return len(a.segs) }
func (a Address) IsRoot() bool     { return len(a.segs) == 0 }
func (a Address) Segments() []uint { return slices.Clone(a.segs) }

// Last returns the final segment, or false on the root.
func (a Address) Last() (uint, bool) {
	if len(a.segs) == 0 {
		return 0, false
	}
	return a.segs[len(a.segs)-1], true
}

func (a Address) Equal(b Address) bool {
	return slices.Equal(a.segs, b.segs)
}

// ----------------------------------------------------
// Text encoding
// ----------------------------------------------------

// String renders the wire form: "/" for the root, "/1/3/2/" otherwise.
func (a Address) String() string {
	var b strings.Builder
	b.WriteString(sep)
	for _, s := range a.segs {
		b.WriteString(strconv.FormatUint(uint64(s), 10))
		b.WriteString(sep)
	}
	return b.String()
}

// ParseAddress decodes the wire form. Empty fragments are skipped, so "",
// "/" and "//" all name the root.
func ParseAddress(s string) (Address, error) {
	var segs []uint
	for _, frag := range strings.Split(s, sep) {
		if frag == "" {
			continue
		}
		n, err := strconv.ParseUint(frag, 10, strconv.IntSize)
		if err != nil {
			return Address{}, &ParseError{Text: s, Fragment: frag, Err: err}
		}
		segs = append(segs, uint(n))
	}
	return Address{segs: segs}, nil
}

// MustParseAddress is ParseAddress for literals known to be valid.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
