package catalogue

// Entry is one child in a paginated view. Index is its position among all
// of the group's children, not within the page, so group.Join(Index) is
// the child's address.
type Entry[T, U any] struct {
	Index uint
	Node  *Node[T, U]
}

// Paginate splits a group's children, in order, into pages of at most
// size entries. Leaves and non-positive sizes yield nil.
func Paginate[T, U any](group *Node[T, U], size int) [][]Entry[T, U] {
	if group == nil || !group.IsGroup() || size <= 0 || len(group.children) == 0 {
		return nil
	}
	pages := make([][]Entry[T, U], 0, (len(group.children)+size-1)/size)
	for start := 0; start < len(group.children); start += size {
		end := min(start+size, len(group.children))
		page := make([]Entry[T, U], 0, end-start)
		for i := start; i < end; i++ {
			page = append(page, Entry[T, U]{Index: uint(i), Node: &group.children[i]})
		}
		pages = append(pages, page)
	}
	return pages
}
