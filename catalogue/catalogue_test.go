package catalogue_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zggff/shopbot/catalogue"
)

type tree = catalogue.Node[int, string]

func leaf(v int) tree { return catalogue.Leaf[int, string](v) }

func group(label string, children ...tree) tree {
	return catalogue.Group(label, children...)
}

// sample is z{ a{1, 4}, b{ b{32}, 2 } }.
func sample() tree {
	return group("z",
		group("a", leaf(1), leaf(4)),
		group("b", group("b", leaf(32)), leaf(2)),
	)
}

func TestResolveEndToEnd(t *testing.T) {
	root := sample()

	got, ok := root.Resolve(catalogue.Root())
	require.True(t, ok)
	assert.Same(t, &root, got)
	assert.Equal(t, sample(), *got)

	got, ok = root.Resolve(catalogue.NewAddress(0, 0))
	require.True(t, ok)
	assert.Equal(t, leaf(1), *got)

	got, ok = root.Resolve(catalogue.NewAddress(0, 1))
	require.True(t, ok)
	assert.Equal(t, leaf(4), *got)

	got, ok = root.Resolve(catalogue.NewAddress(1, 0, 0))
	require.True(t, ok)
	assert.Equal(t, leaf(32), *got)

	got, ok = root.Resolve(catalogue.NewAddress(0, 0, 0))
	assert.False(t, ok)
	assert.Nil(t, got)

	pages := catalogue.Paginate(&root, 3)
	require.Len(t, pages, 1)
	require.Len(t, pages[0], 2)
	assert.Equal(t, uint(0), pages[0][0].Index)
	assert.Equal(t, uint(1), pages[0][1].Index)
	label, _ := pages[0][1].Node.Data()
	assert.Equal(t, "b", label)
}

func TestResolveIdentityOnLeaf(t *testing.T) {
	l := leaf(7)
	got, ok := l.Resolve(catalogue.Root())
	require.True(t, ok)
	assert.Same(t, &l, got)
}

func TestResolveLeafBlocksDescent(t *testing.T) {
	root := group("r", leaf(1))

	_, ok := root.Resolve(catalogue.NewAddress(0, 0))
	assert.False(t, ok)

	_, err := root.Locate(catalogue.NewAddress(0, 0))
	var miss *catalogue.MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, catalogue.ReasonLeafBlocked, miss.Reason)
	assert.Equal(t, 1, miss.Depth)
}

func TestResolveOutOfRange(t *testing.T) {
	root := group("r", leaf(1), leaf(2))

	_, ok := root.Resolve(catalogue.NewAddress(5))
	assert.False(t, ok)

	_, err := root.Locate(catalogue.NewAddress(5))
	var miss *catalogue.MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, catalogue.ReasonOutOfRange, miss.Reason)
	assert.Equal(t, 0, miss.Depth)
	assert.Contains(t, miss.Error(), "/5/")
}

func TestResolveEmptyGroup(t *testing.T) {
	root := group("empty")
	_, ok := root.Resolve(catalogue.NewAddress(0))
	assert.False(t, ok)
	assert.Nil(t, catalogue.Paginate(&root, 3))
}

func TestVariantAccessors(t *testing.T) {
	l := leaf(3)
	g := group("g", l)

	item, ok := l.Item()
	assert.True(t, ok)
	assert.Equal(t, 3, item)
	_, ok = l.Data()
	assert.False(t, ok)
	assert.Equal(t, catalogue.KindLeaf, l.Kind())

	data, ok := g.Data()
	assert.True(t, ok)
	assert.Equal(t, "g", data)
	_, ok = g.Item()
	assert.False(t, ok)
	assert.Equal(t, catalogue.KindGroup, g.Kind())
	assert.Equal(t, 1, g.Len())

	_, ok = l.Child(0)
	assert.False(t, ok)
}

func TestGroupCopiesChildren(t *testing.T) {
	children := []tree{leaf(1), leaf(2)}
	g := catalogue.Group("g", children...)
	children[0] = leaf(100)

	got, ok := g.Resolve(catalogue.NewAddress(0))
	require.True(t, ok)
	assert.Equal(t, leaf(1), *got)
}

func TestWalkCarriesAddresses(t *testing.T) {
	root := sample()
	var visited []string
	root.Walk(func(a catalogue.Address, n *tree) bool {
		visited = append(visited, a.String())
		resolved, ok := root.Resolve(a)
		assert.True(t, ok)
		assert.Same(t, n, resolved)
		return true
	})
	assert.Equal(t, []string{"/", "/0/", "/0/0/", "/0/1/", "/1/", "/1/0/", "/1/0/0/", "/1/1/"}, visited)

	st := root.Stats()
	assert.Equal(t, catalogue.Stats{Leaves: 4, Groups: 4, Depth: 3}, st)
}

func TestWalkSkipsSubtree(t *testing.T) {
	root := sample()
	count := 0
	root.Walk(func(a catalogue.Address, n *tree) bool {
		count++
		return a.Len() < 1
	})
	assert.Equal(t, 3, count)
}

func TestConcurrentReaders(t *testing.T) {
	root := sample()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				n, ok := root.Resolve(catalogue.NewAddress(1, 0, 0))
				if assert.True(t, ok) {
					v, _ := n.Item()
					assert.Equal(t, 32, v)
				}
				assert.Len(t, catalogue.Paginate(&root, 1), 2)
			}
		}()
	}
	wg.Wait()
}
