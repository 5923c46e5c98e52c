// Package catalogue is the addressing engine behind the shop: an immutable
// tree of leaves and groups, path addresses naming its nodes, lookup of an
// address against a tree, and paging of a group's children for display.
//
// Addresses travel as text ("/" for the root, "/1/3/2/" below it) and are
// only meaningful against the tree they were derived from. Lookups never
// fail loudly: a stale or tampered address simply resolves to nothing.
package catalogue
