package schemafile

import (
	"github.com/reoring/resilient"
)

// Record is a document decoded against a list of Fields.
type Record struct {
	fields  []Field
	Entries []Entry
}

// Entry is the decoded state of one schema field.
type Entry struct {
	Name    string
	Shape   string
	Value   any
	Outcome resilient.Outcome
	// Elements holds per-element errors for collection shapes.
	Elements []error
}

// NewRecord returns an empty record for the schema.
func (s *Schema) NewRecord() *Record { return &Record{fields: s.Fields} }

// Entry returns the entry for name.
func (r *Record) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// DecodeResilient implements resilient.Decodable. Only required fields can
// fail the record.
func (r *Record) DecodeResilient(d *resilient.Decoder) error {
	obj, err := d.Object()
	if err != nil {
		return err
	}
	r.Entries = make([]Entry, 0, len(r.fields))
	for _, f := range r.fields {
		e, err := decodeField(obj, f)
		if err != nil {
			return err
		}
		r.Entries = append(r.Entries, e)
	}
	return nil
}

// Values converts the record to plain Go values for printing. Nested
// records become maps; nil pointers from optional shapes stay nil.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		out[e.Name] = plain(e.Value)
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Record:
		if x == nil {
			return nil
		}
		return x.Values()
	case *any:
		if x == nil {
			return nil
		}
		return plain(*x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = plain(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

func decodeField(obj *resilient.ObjectDecoder, f Field) (Entry, error) {
	e := Entry{Name: f.Name, Shape: f.Shape}
	var opts []resilient.FieldOptions
	if f.Strict {
		opts = append(opts, resilient.Strict)
	}
	if f.Type == TypeEnum {
		return decodeEnumField(obj, f, e, opts)
	}
	fn := elementFunc(f)
	switch f.Shape {
	case ShapeRequired:
		v, err := resilient.Required(obj, f.Name, fn)
		if err != nil {
			return e, err
		}
		e.Value, e.Outcome = v.Value, v.Outcome
	case ShapeArray, ShapeOptionalArray:
		var v resilient.ArrayValue[any]
		if f.Shape == ShapeArray {
			v = resilient.Array(obj, f.Name, fn, opts...)
		} else {
			v = resilient.OptionalArray(obj, f.Name, fn, opts...)
		}
		e.Value, e.Outcome, e.Elements = v.Value, v.Outcome, v.Errors()
	case ShapeMap, ShapeOptionalMap:
		var v resilient.MapValue[any]
		if f.Shape == ShapeMap {
			v = resilient.Map(obj, f.Name, fn, opts...)
		} else {
			v = resilient.OptionalMap(obj, f.Name, fn, opts...)
		}
		e.Value, e.Outcome, e.Elements = v.Value, v.Outcome, v.Errors()
	default:
		v := resilient.Optional(obj, f.Name, fn, opts...)
		e.Value, e.Outcome = v.Value, v.Outcome
	}
	return e, nil
}

func decodeEnumField(obj *resilient.ObjectDecoder, f Field, e Entry, opts []resilient.FieldOptions) (Entry, error) {
	spec := resilient.Known(f.Values...)
	if f.Frozen {
		spec = spec.AsFrozen()
	}
	if f.Fallback != nil {
		spec = spec.WithFallback(*f.Fallback)
	}
	switch f.Shape {
	case ShapeRequired:
		v, err := resilient.Enum(obj, f.Name, spec, opts...)
		if err != nil {
			return e, err
		}
		e.Value, e.Outcome = v.Value, v.Outcome
	case ShapeArray, ShapeOptionalArray:
		fn := resilient.EnumElement(spec)
		var v resilient.ArrayValue[string]
		if f.Shape == ShapeArray {
			v = resilient.Array(obj, f.Name, fn, opts...)
		} else {
			v = resilient.OptionalArray(obj, f.Name, fn, opts...)
		}
		e.Value, e.Outcome, e.Elements = v.Value, v.Outcome, v.Errors()
	case ShapeMap, ShapeOptionalMap:
		fn := resilient.EnumElement(spec)
		var v resilient.MapValue[string]
		if f.Shape == ShapeMap {
			v = resilient.Map(obj, f.Name, fn, opts...)
		} else {
			v = resilient.OptionalMap(obj, f.Name, fn, opts...)
		}
		e.Value, e.Outcome, e.Elements = v.Value, v.Outcome, v.Errors()
	default:
		v := resilient.OptionalEnum(obj, f.Name, spec, opts...)
		if v.Value != nil {
			e.Value = *v.Value
		}
		e.Outcome = v.Outcome
	}
	return e, nil
}

func elementFunc(f Field) resilient.DecodeFunc[any] {
	switch f.Type {
	case TypeString:
		return boxed(resilient.String)
	case TypeInt:
		return boxed(resilient.Int64)
	case TypeFloat:
		return boxed(resilient.Float64)
	case TypeBool:
		return boxed(resilient.Bool)
	case TypeNumber:
		return boxed(resilient.Number)
	case TypeObject:
		return func(d *resilient.Decoder) (any, error) {
			r := &Record{fields: f.Fields}
			if err := r.DecodeResilient(d); err != nil {
				return nil, err
			}
			return r, nil
		}
	default:
		return resilient.Any
	}
}

func boxed[T any](fn resilient.DecodeFunc[T]) resilient.DecodeFunc[any] {
	return func(d *resilient.Decoder) (any, error) {
		v, err := fn(d)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
