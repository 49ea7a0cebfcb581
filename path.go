package resilient

import (
	"cmp"
	"strconv"
	"strings"

	eng "github.com/reoring/resilient/internal/engine"
)

// PathSegment is one step from a document root: an object key or an array index.
// PathSegment is comparable and usable as a map key.
type PathSegment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns an object key segment.
func Key(k string) PathSegment { return PathSegment{key: k} }

// Index returns an array index segment.
func Index(i int) PathSegment { return PathSegment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses an array element.
func (s PathSegment) IsIndex() bool { return s.isIndex }

// Key returns the object key ("" for index segments).
func (s PathSegment) Key() string { return s.key }

// Index returns the array index (-1 for key segments).
func (s PathSegment) Index() int {
	if !s.isIndex {
		return -1
	}
	return s.index
}

func (s PathSegment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Compare orders index segments numerically before key segments, keys lexically.
func (s PathSegment) Compare(o PathSegment) int {
	switch {
	case s.isIndex && o.isIndex:
		return cmp.Compare(s.index, o.index)
	case s.isIndex:
		return -1
	case o.isIndex:
		return 1
	default:
		return strings.Compare(s.key, o.key)
	}
}

// Path is the sequence of segments from the document root to a value.
type Path []PathSegment

// Child returns a new Path extended by seg; p is never modified.
func (p Path) Child(seg PathSegment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, seg)
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Pointer renders p as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(eng.EscapePointerToken(s.String()))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// ParsePointer parses a JSON Pointer into a Path. Numeric tokens become
// index segments.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return Path{}
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	out := make(Path, 0, len(parts))
	for _, raw := range parts {
		tok := strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")
		if i, err := strconv.Atoi(tok); err == nil && i >= 0 && strconv.Itoa(i) == tok {
			out = append(out, Index(i))
			continue
		}
		out = append(out, Key(tok))
	}
	return out
}
