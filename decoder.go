package resilient

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	eng "github.com/reoring/resilient/internal/engine"
)

// Decoder is a cursor positioned at one value of a parsed document. It is
// the boundary between resilient wrappers and the document: wrappers only
// check presence and nullness and ask for sub-decoders; typed reads happen
// through the As* accessors, Decode, or user DecodeFunc implementations.
type Decoder struct {
	node *eng.Node // nil when the addressed key is absent
	path Path
	sess *Session
}

// Path returns the location of the cursor from the document root.
func (d *Decoder) Path() Path { return d.path.Clone() }

// Session returns the decode session the cursor belongs to.
func (d *Decoder) Session() *Session { return d.sess }

// Present reports whether the cursor addresses an existing value.
func (d *Decoder) Present() bool { return d.node != nil }

// IsNull reports whether the value is null or absent.
func (d *Decoder) IsNull() bool { return d.node == nil || d.node.Kind == eng.NodeNull }

// Offset returns the input offset of the value, or -1 when unknown.
func (d *Decoder) Offset() int64 {
	if d.node == nil {
		return -1
	}
	return d.node.Offset
}

// expect checks the node kind and returns the matching error when it differs.
func (d *Decoder) expect(kind eng.NodeKind, expected string) error {
	switch {
	case d.node == nil:
		return MissingValue(d.Path(), expected, "key not found")
	case d.node.Kind == eng.NodeNull:
		return MissingValue(d.Path(), expected, "found null")
	case d.node.Kind != kind:
		return TypeMismatch(d.Path(), expected, "found "+d.node.Kind.String())
	}
	return nil
}

// Object opens the value as a keyed container.
func (d *Decoder) Object() (*ObjectDecoder, error) {
	if err := d.expect(eng.NodeObject, "object"); err != nil {
		return nil, err
	}
	return newObjectDecoder(d.node, d.path, d.sess), nil
}

// Array opens the value as a positional container.
func (d *Decoder) Array() (*ArrayDecoder, error) {
	if err := d.expect(eng.NodeArray, "array"); err != nil {
		return nil, err
	}
	return &ArrayDecoder{node: d.node, path: d.path, sess: d.sess}, nil
}

// AsString decodes a string.
func (d *Decoder) AsString() (string, error) {
	if err := d.expect(eng.NodeString, "string"); err != nil {
		return "", err
	}
	return d.node.String, nil
}

// AsBool decodes a boolean.
func (d *Decoder) AsBool() (bool, error) {
	if err := d.expect(eng.NodeBool, "bool"); err != nil {
		return false, err
	}
	return d.node.Bool, nil
}

// AsNumber decodes a number keeping its textual form.
func (d *Decoder) AsNumber() (json.Number, error) {
	if err := d.expect(eng.NodeNumber, "number"); err != nil {
		return "", err
	}
	return json.Number(d.node.Number), nil
}

// AsInt64 decodes an integral number. Fractions and overflow are DataCorrupted.
func (d *Decoder) AsInt64() (int64, error) {
	if err := d.expect(eng.NodeNumber, "int"); err != nil {
		return 0, err
	}
	i, err := strconv.ParseInt(d.node.Number, 10, 64)
	if err != nil {
		return 0, DataCorrupted(d.Path(), fmt.Sprintf("number %s does not fit in int", d.node.Number))
	}
	return i, nil
}

// AsInt decodes an integral number into the platform int.
func (d *Decoder) AsInt() (int, error) {
	i, err := d.AsInt64()
	if err != nil {
		return 0, err
	}
	if i < math.MinInt || i > math.MaxInt {
		return 0, DataCorrupted(d.Path(), fmt.Sprintf("number %d does not fit in int", i))
	}
	return int(i), nil
}

// AsFloat64 decodes a number as float64.
func (d *Decoder) AsFloat64() (float64, error) {
	if err := d.expect(eng.NodeNumber, "float"); err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(d.node.Number, 64)
	if err != nil {
		return 0, DataCorrupted(d.Path(), fmt.Sprintf("number %s does not fit in float64", d.node.Number))
	}
	return f, nil
}

// AsAny returns the value as a JSON-like tree (map[string]any, []any,
// json.Number, string, bool, nil). Absent values are MissingValue.
func (d *Decoder) AsAny() (any, error) {
	if d.node == nil {
		return nil, MissingValue(d.Path(), "value", "key not found")
	}
	return d.node.Interface(func(s string) any { return json.Number(s) }), nil
}

// ObjectDecoder is a keyed container. Key lookups go through the session
// KeyStrategy; RawEntries bypasses it.
type ObjectDecoder struct {
	node *eng.Node
	path Path
	sess *Session
	// index maps strategy-converted keys to member positions; last duplicate wins.
	index map[string]int
}

func newObjectDecoder(n *eng.Node, path Path, sess *Session) *ObjectDecoder {
	ks := sess.keyStrategy()
	idx := make(map[string]int, len(n.Members))
	for i, m := range n.Members {
		idx[ks.FieldKey(m.Key)] = i
	}
	return &ObjectDecoder{node: n, path: path, sess: sess, index: idx}
}

// Path returns the location of the container.
func (o *ObjectDecoder) Path() Path { return o.path.Clone() }

// Session returns the decode session.
func (o *ObjectDecoder) Session() *Session { return o.sess }

// Has reports whether key is present (null values count as present).
func (o *ObjectDecoder) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Keys returns the strategy-converted keys in document order.
func (o *ObjectDecoder) Keys() []string {
	if o.node == nil {
		return nil
	}
	ks := o.sess.keyStrategy()
	out := make([]string, 0, len(o.node.Members))
	for _, m := range o.node.Members {
		out = append(out, ks.FieldKey(m.Key))
	}
	return out
}

// Field returns a sub-decoder for key. It succeeds for absent keys so that
// failures further down still carry a path; only a container that was never
// opened from a document yields an error.
func (o *ObjectDecoder) Field(key string) (*Decoder, error) {
	if o == nil || o.node == nil || o.node.Kind != eng.NodeObject {
		var p Path
		if o != nil {
			p = o.Path()
		}
		return nil, DataCorrupted(p, "keyed container is not backed by a document object")
	}
	i, ok := o.index[key]
	if !ok {
		return &Decoder{path: o.path.Child(Key(key)), sess: o.sess}, nil
	}
	m := o.node.Members[i]
	return &Decoder{node: m.Value, path: o.path.Child(Key(m.Key)), sess: o.sess}, nil
}

// Entry is a document-ordered object member with its original key.
type Entry struct {
	Key     string
	Decoder *Decoder
}

// RawEntries returns every member in document order with the key exactly as
// written, including duplicates.
func (o *ObjectDecoder) RawEntries() []Entry {
	if o.node == nil {
		return nil
	}
	out := make([]Entry, 0, len(o.node.Members))
	for _, m := range o.node.Members {
		out = append(out, Entry{Key: m.Key, Decoder: &Decoder{node: m.Value, path: o.path.Child(Key(m.Key)), sess: o.sess}})
	}
	return out
}

// ArrayDecoder is a positional container.
type ArrayDecoder struct {
	node *eng.Node
	path Path
	sess *Session
}

// Path returns the location of the container.
func (a *ArrayDecoder) Path() Path { return a.path.Clone() }

// Len returns the number of elements.
func (a *ArrayDecoder) Len() int {
	if a.node == nil {
		return 0
	}
	return len(a.node.Elems)
}

// At returns a sub-decoder for element i.
func (a *ArrayDecoder) At(i int) (*Decoder, error) {
	if i < 0 || i >= a.Len() {
		return nil, DataCorrupted(a.Path(), fmt.Sprintf("index %d out of range [0,%d)", i, a.Len()))
	}
	return &Decoder{node: a.node.Elems[i], path: a.path.Child(Index(i)), sess: a.sess}, nil
}
