// file: shopbot/catalogue/catalogue.go
package catalogue

import "slices"

// Kind tells the two node variants apart.
type Kind uint8

const (
	KindLeaf Kind = iota + 1
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return "invalid"
	}
}

// Node is an immutable catalogue tree. A leaf carries an item payload T;
// a group carries a payload U and owns its ordered children. Nodes keep no
// parent pointers: callers carry the Address alongside.
type Node[T, U any] struct {
	kind     Kind
	item     T
	data     U
	children []Node[T, U]
}

// Leaf builds a terminal node.
func Leaf[T, U any](item T) Node[T, U] {
	return Node[T, U]{kind: KindLeaf, item: item}
}

// Group builds an internal node. The children slice is copied.
func Group[T, U any](data U, children ...Node[T, U]) Node[T, U] {
	n := Node[T, U]{kind: KindGroup, data: data}
	if len(children) > 0 {
		n.children = slices.Clone(children)
	}
	return n
}

func (n *Node[T, U]) Kind() Kind    { return n.kind }
func (n *Node[T, U]) IsLeaf() bool  { return n.kind == KindLeaf }
func (n *Node[T, U]) IsGroup() bool { return n.kind == KindGroup }

// Item returns the leaf payload.
func (n *Node[T, U]) Item() (T, bool) {
	if n.kind != KindLeaf {
		var zero T
		return zero, false
	}
	return n.item, true
}

// Data returns the group payload.
func (n *Node[T, U]) Data() (U, bool) {
	if n.kind != KindGroup {
		var zero U
		return zero, false
	}
	return n.data, true
}

// Len is the number of children; zero for leaves.
func (n *Node[T, U]) Len() int { return len(n.children) }

// Child returns the i-th child of a group.
func (n *Node[T, U]) Child(i uint) (*Node[T, U], bool) {
	if n.kind != KindGroup || i >= uint(len(n.children)) {
		return nil, false
	}
	return &n.children[i], true
}

// ----------------------------------------------------
// Lookup
// ----------------------------------------------------

// Resolve walks addr from n. Leaves end the walk and out-of-range
// indexes miss; the empty address resolves to n itself.
func (n *Node[T, U]) Resolve(addr Address) (*Node[T, U], bool) {
	found, err := n.Locate(addr)
	return found, err == nil
}

// Locate is Resolve with a *MissError explaining a miss.
func (n *Node[T, U]) Locate(addr Address) (*Node[T, U], error) {
	cur := n
	for depth, seg := range addr.segs {
		if cur.kind != KindGroup {
			return nil, &MissError{Address: addr, Depth: depth, Reason: ReasonLeafBlocked}
		}
		next, ok := cur.Child(seg)
		if !ok {
			return nil, &MissError{Address: addr, Depth: depth, Reason: ReasonOutOfRange}
		}
		cur = next
	}
	return cur, nil
}

// Walk visits n and its descendants depth first, children in order, with
// each node's address relative to n. Returning false skips the subtree.
func (n *Node[T, U]) Walk(fn func(Address, *Node[T, U]) bool) {
	n.walk(Root(), fn)
}

func (n *Node[T, U]) walk(addr Address, fn func(Address, *Node[T, U]) bool) {
	if !fn(addr, n) {
		return
	}
	for i := range n.children {
		n.children[i].walk(addr.Join(uint(i)), fn)
	}
}

// Stats counts the nodes under n, n included.
type Stats struct {
	Leaves int `json:"leaves"`
	Groups int `json:"groups"`
	Depth  int `json:"depth"`
}

func (n *Node[T, U]) Stats() Stats {
	var st Stats
	n.Walk(func(a Address, node *Node[T, U]) bool {
		if node.IsLeaf() {
			st.Leaves++
		} else {
			st.Groups++
		}
		st.Depth = max(st.Depth, a.Len())
		return true
	})
	return st
}
