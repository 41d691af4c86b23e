// Package intervalidx is a small static interval index over half-open
// [uint64, uint64) ranges, built once from a batch of intervals and queried
// any number of times afterward. It has no update operations: a fresh
// Index must be rebuilt from scratch if the input set changes.
package intervalidx

import "sort"

// Item is one interval to ingest, carrying an opaque string payload (the
// originating object/archive filename, in this module's use).
type Item struct {
	Start, End uint64 // half-open: [Start, End)
	Value      string
}

// Hit is a query result: the matched interval and its payload.
type Hit struct {
	Start, End uint64
	Value      string
}

// node is one entry of the augmented balanced tree: the tree is built once
// from a sorted slice via recursive median split, so it is perfectly
// balanced without any rotation logic, and each node is annotated with the
// maximum End in its subtree to let queries prune branches that cannot
// possibly overlap.
type node struct {
	item        Item
	maxEnd      uint64
	left, right *node
}

// Index is an immutable, concurrency-safe-for-reads interval index.
type Index struct {
	root *node
	size int
}

// Build ingests items and returns a queryable Index. Items with Start == End
// (an empty interval) are dropped, per the empty-interval-contributes-no-
// interval rule upstream callers rely on. Overlapping intervals are
// preserved as distinct entries; both are returned by a query that spans
// them.
func Build(items []Item) *Index {
	filtered := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Start < it.End {
			filtered = append(filtered, it)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Start < filtered[j].Start
	})
	root := build(filtered)
	return &Index{root: root, size: len(filtered)}
}

// build recursively constructs a balanced tree from a Start-sorted slice.
func build(items []Item) *node {
	if len(items) == 0 {
		return nil
	}
	mid := len(items) / 2
	n := &node{item: items[mid], maxEnd: items[mid].End}
	n.left = build(items[:mid])
	n.right = build(items[mid+1:])
	if n.left != nil && n.left.maxEnd > n.maxEnd {
		n.maxEnd = n.left.maxEnd
	}
	if n.right != nil && n.right.maxEnd > n.maxEnd {
		n.maxEnd = n.right.maxEnd
	}
	return n
}

// Len reports how many intervals the index holds (after dropping empty
// ones).
func (ix *Index) Len() int {
	return ix.size
}

// QueryRange returns every interval that overlaps the half-open range
// [lo, hi). Order among hits is unspecified.
func (ix *Index) QueryRange(lo, hi uint64) []Hit {
	var hits []Hit
	queryRange(ix.root, lo, hi, &hits)
	return hits
}

// QueryPoint returns every interval that contains p; equivalent to
// QueryRange(p, p+1).
func (ix *Index) QueryPoint(p uint64) []Hit {
	return ix.QueryRange(p, p+1)
}

func queryRange(n *node, lo, hi uint64, hits *[]Hit) {
	if n == nil || n.maxEnd <= lo {
		return
	}
	if n.left != nil {
		queryRange(n.left, lo, hi, hits)
	}
	if n.item.Start < hi && lo < n.item.End {
		*hits = append(*hits, Hit{Start: n.item.Start, End: n.item.End, Value: n.item.Value})
	}
	if n.item.Start < hi {
		queryRange(n.right, lo, hi, hits)
	}
}
