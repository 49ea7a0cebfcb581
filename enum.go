package resilient

import (
	"fmt"
	"log/slog"
)

// EnumSpec describes a closed-ish set of known raw values R mapped onto T.
//
// Fallback is the value substituted when the enum is decoded as a
// non-optional resilient field. Frozen enums treat unknown raw values as
// ordinary corruption; the others report them as UnknownNovelValue, which
// digests leave out by default.
type EnumSpec[T any, R comparable] struct {
	Raw      DecodeFunc[R]
	Lookup   func(R) (T, bool)
	Fallback *T
	Frozen   bool
}

// WithFallback returns a copy of s that falls back to v.
func (s EnumSpec[T, R]) WithFallback(v T) EnumSpec[T, R] {
	s.Fallback = &v
	return s
}

// AsFrozen returns a copy of s that rejects unknown raw values.
func (s EnumSpec[T, R]) AsFrozen() EnumSpec[T, R] {
	s.Frozen = true
	return s
}

// Decode maps the raw value at d to a known variant. A raw value of the
// wrong type is a hard error whatever Frozen says.
func (s EnumSpec[T, R]) Decode(d *Decoder) (T, error) {
	var zero T
	if s.Raw == nil || s.Lookup == nil {
		return zero, Custom(d.Path(), fmt.Errorf("resilient: EnumSpec[%s] has no Raw or Lookup", typeName[T]()))
	}
	raw, err := s.Raw(d)
	if err != nil {
		return zero, err
	}
	if v, ok := s.Lookup(raw); ok {
		return v, nil
	}
	if s.Frozen {
		return zero, DataCorruptedRaw(d.Path(), fmt.Sprintf("unknown %s value %v", typeName[T](), raw), raw)
	}
	return zero, UnknownNovelValue(d.Path(), raw)
}

// Enum decodes a fallback enum field. Any failure, novel values included,
// substitutes s.Fallback and is reported. Without a Fallback the field has
// nothing to recover with: it behaves like Required and the error is returned.
func Enum[T any, R comparable](obj *ObjectDecoder, key string, s EnumSpec[T, R], opts ...FieldOptions) (Value[T], error) {
	if s.Fallback == nil {
		v, err := Required[T](obj, key, s.Decode)
		if err != nil {
			sessionOf(obj).logger.Warn("enum field has no fallback; error not recovered",
				slog.String("key", key), slog.String("type", typeName[T]()))
		}
		return v, err
	}
	v, out := resolveField[T](obj, key, *s.Fallback, opts, s.Decode)
	return Value[T]{Value: v, Outcome: out}, nil
}

// OptionalEnum decodes an enum field that becomes nil on failure. Fallback
// is never used.
func OptionalEnum[T any, R comparable](obj *ObjectDecoder, key string, s EnumSpec[T, R], opts ...FieldOptions) Value[*T] {
	return Optional[T](obj, key, s.Decode, opts...)
}

// EnumElement returns an element decoder for arrays and maps of the enum.
// Unknown elements are omitted; Fallback is never used for elements.
func EnumElement[T any, R comparable](s EnumSpec[T, R]) DecodeFunc[T] {
	s.Fallback = nil
	return s.Decode
}

// LookupMap adapts a map to an EnumSpec Lookup.
func LookupMap[R comparable, T any](m map[R]T) func(R) (T, bool) {
	return func(r R) (T, bool) {
		v, ok := m[r]
		return v, ok
	}
}

// StringEnum builds an EnumSpec over string raw values.
func StringEnum[T any](values map[string]T) EnumSpec[T, string] {
	return EnumSpec[T, string]{Raw: String, Lookup: LookupMap(values)}
}

// IntEnum builds an EnumSpec over integer raw values.
func IntEnum[T any](values map[int]T) EnumSpec[T, int] {
	return EnumSpec[T, int]{Raw: Int, Lookup: LookupMap(values)}
}

// Known builds an EnumSpec for a string-backed type whose variants are
// spelled exactly like their raw values.
func Known[T ~string](variants ...T) EnumSpec[T, string] {
	m := make(map[string]T, len(variants))
	for _, v := range variants {
		m[string(v)] = v
	}
	return StringEnum(m)
}
