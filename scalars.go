package resilient

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	gojson "github.com/goccy/go-json"

	eng "github.com/reoring/resilient/internal/engine"
)

// DecodeFunc decodes one value at the cursor. It is the element and field
// decoder handed to the resilient wrappers.
type DecodeFunc[T any] func(d *Decoder) (T, error)

// Built-in decoders for scalar element and field types.
var (
	String  DecodeFunc[string]      = (*Decoder).AsString
	Bool    DecodeFunc[bool]        = (*Decoder).AsBool
	Int     DecodeFunc[int]         = (*Decoder).AsInt
	Int64   DecodeFunc[int64]       = (*Decoder).AsInt64
	Float64 DecodeFunc[float64]     = (*Decoder).AsFloat64
	Number  DecodeFunc[json.Number] = (*Decoder).AsNumber
	Any     DecodeFunc[any]         = (*Decoder).AsAny
)

// Decodable is implemented by types that decode themselves from a document,
// typically structs combining plain and resilient fields.
type Decodable interface {
	DecodeResilient(d *Decoder) error
}

// Struct returns a DecodeFunc for a Decodable struct type T (implemented on *T).
func Struct[T any, PT interface {
	*T
	Decodable
}]() DecodeFunc[T] {
	return func(d *Decoder) (T, error) {
		var v T
		if err := PT(&v).DecodeResilient(d); err != nil {
			var zero T
			return zero, err
		}
		return v, nil
	}
}

// Decode decodes the value at the cursor into an arbitrary Go type T with
// goccy/go-json semantics. Object keys pass through the session KeyStrategy
// first, so T's json tags name the same keys ObjectDecoder.Field would.
// Errors are mapped to DecodeError kinds with document-spelled paths. A null
// value only decodes into nillable types (pointer, slice, map, interface).
func Decode[T any](d *Decoder) (T, error) {
	var v T
	if d.IsNull() && !nillable(reflect.TypeOf(&v).Elem()) {
		return v, MissingValue(d.Path(), typeName[T](), nullOrAbsent(d))
	}
	if d.node == nil {
		return v, MissingValue(d.Path(), "value", "key not found")
	}
	ks := d.sess.keyStrategy()
	b, err := gojson.Marshal(fieldKeyed(d.node, ks))
	if err != nil {
		return v, DataCorrupted(d.Path(), err.Error())
	}
	if err := gojson.Unmarshal(b, &v); err != nil {
		var zero T
		var te *gojson.UnmarshalTypeError
		if errors.As(err, &te) {
			p := d.Path()
			if te.Field != "" {
				p = append(p, documentPath(d.node, te.Field, ks)...)
			}
			return zero, &DecodeError{Kind: KindTypeMismatch, Path: p, Expected: te.Type.String(), Detail: "found " + te.Value, Cause: err}
		}
		return zero, &DecodeError{Kind: KindDataCorrupted, Path: d.Path(), Detail: err.Error(), Cause: err}
	}
	return v, nil
}

// fieldKeyed is Node.Interface with object keys converted by ks.
func fieldKeyed(n *eng.Node, ks KeyStrategy) any {
	switch n.Kind {
	case eng.NodeObject:
		m := make(map[string]any, len(n.Members))
		for _, mb := range n.Members {
			m[ks.FieldKey(mb.Key)] = fieldKeyed(mb.Value, ks)
		}
		return m
	case eng.NodeArray:
		arr := make([]any, len(n.Elems))
		for i, e := range n.Elems {
			arr[i] = fieldKeyed(e, ks)
		}
		return arr
	default:
		return n.Interface(func(s string) any { return json.Number(s) })
	}
}

// documentPath turns a dotted go-json field path back into document keys.
// Segments that cannot be matched are kept as reported.
func documentPath(n *eng.Node, field string, ks KeyStrategy) Path {
	var p Path
	for _, seg := range strings.Split(field, ".") {
		key := seg
		var next *eng.Node
		if n != nil && n.Kind == eng.NodeObject {
			for _, mb := range n.Members {
				if strings.EqualFold(ks.FieldKey(mb.Key), seg) {
					key, next = mb.Key, mb.Value
				}
			}
		}
		p = append(p, Key(key))
		n = next
	}
	return p
}

// Via adapts Decode[T] to a DecodeFunc.
func Via[T any]() DecodeFunc[T] { return Decode[T] }

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

func typeName[T any]() string {
	var v T
	return reflect.TypeOf(&v).Elem().String()
}

func nullOrAbsent(d *Decoder) string {
	if d.Present() {
		return "found null"
	}
	return "key not found"
}
