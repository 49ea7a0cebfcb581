package resilient

import (
	"io"
	"slices"
	"strings"
)

// ErrorTree is an append-only multi-map from document paths to errors. Each
// node stands for one path segment; errors inserted at a path are kept in
// insertion order at the node for that path.
type ErrorTree struct {
	root errorNode
	size int
}

type errorNode struct {
	children map[PathSegment]*errorNode
	errors   []*DecodeError
}

// NewErrorTree returns an empty tree.
func NewErrorTree() *ErrorTree { return &ErrorTree{} }

// Insert appends err at path, creating intermediate nodes as needed.
func (t *ErrorTree) Insert(err *DecodeError, path Path) {
	n := &t.root
	for _, seg := range path {
		if n.children == nil {
			n.children = make(map[PathSegment]*errorNode)
		}
		c, ok := n.children[seg]
		if !ok {
			c = &errorNode{}
			n.children[seg] = c
		}
		n = c
	}
	n.errors = append(n.errors, err)
	t.size++
}

// Len returns the number of inserted errors.
func (t *ErrorTree) Len() int { return t.size }

// At returns the errors inserted exactly at path.
func (t *ErrorTree) At(path Path) []*DecodeError {
	n := &t.root
	for _, seg := range path {
		c, ok := n.children[seg]
		if !ok {
			return nil
		}
		n = c
	}
	return slices.Clone(n.errors)
}

// Walk visits every node holding errors depth-first: a node's own errors
// before its children, children ordered by PathSegment.Compare.
func (t *ErrorTree) Walk(fn func(path Path, errs []*DecodeError)) {
	t.root.walk(Path{}, fn)
}

func (n *errorNode) walk(path Path, fn func(Path, []*DecodeError)) {
	if len(n.errors) > 0 {
		fn(path, n.errors)
	}
	for _, seg := range n.sortedSegments() {
		n.children[seg].walk(path.Child(seg), fn)
	}
}

func (n *errorNode) sortedSegments() []PathSegment {
	segs := make([]PathSegment, 0, len(n.children))
	for s := range n.children {
		segs = append(segs, s)
	}
	slices.SortFunc(segs, PathSegment.Compare)
	return segs
}

// Errors returns all errors in Walk order.
func (t *ErrorTree) Errors() []*DecodeError {
	out := make([]*DecodeError, 0, t.size)
	t.Walk(func(_ Path, errs []*DecodeError) { out = append(out, errs...) })
	return out
}

// Filter returns a new tree holding the errors for which keep returns true.
func (t *ErrorTree) Filter(keep func(*DecodeError) bool) *ErrorTree {
	out := NewErrorTree()
	t.Walk(func(p Path, errs []*DecodeError) {
		for _, e := range errs {
			if keep(e) {
				out.Insert(e, p)
			}
		}
	})
	return out
}

// Format writes an indented, path-grouped rendering. Segments nest by two
// spaces; errors at one node are sorted by their printed form.
func (t *ErrorTree) Format(w io.Writer) error {
	b := &strings.Builder{}
	t.root.format(b, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func (n *errorNode) format(b *strings.Builder, depth int) {
	lines := make([]string, 0, len(n.errors))
	for _, e := range n.errors {
		lines = append(lines, "- "+e.Kind.Code()+": "+e.message())
	}
	slices.Sort(lines)
	for _, l := range lines {
		indent(b, depth)
		b.WriteString(l)
		b.WriteByte('\n')
	}
	for _, seg := range n.sortedSegments() {
		indent(b, depth)
		b.WriteString(seg.String())
		b.WriteByte('\n')
		n.children[seg].format(b, depth+1)
	}
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}
