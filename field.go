package resilient

import "log/slog"

// FieldOptions tunes a resilient field. The zero value behaves like an
// optional field: absent keys and nulls take the fallback silently.
type FieldOptions struct {
	// BehaveLikeOptional, when set to false, makes absent keys and nulls
	// ordinary decode failures that are reported before the fallback applies.
	BehaveLikeOptional *bool
}

// Strict turns off the absent/null shortcuts for one field.
var Strict = FieldOptions{BehaveLikeOptional: new(bool)}

func behavesLikeOptional(opts []FieldOptions) bool {
	if len(opts) == 0 {
		return true
	}
	o := opts[len(opts)-1]
	return o.BehaveLikeOptional == nil || *o.BehaveLikeOptional
}

// resolveField runs the field algorithm shared by every resilient variant and
// returns the value together with its outcome.
func resolveField[T any](obj *ObjectDecoder, key string, fallback T, opts []FieldOptions, body DecodeFunc[T]) (T, Outcome) {
	optional := behavesLikeOptional(opts)
	if optional && !obj.Has(key) {
		return fallback, outcomeMissing
	}
	d, err := obj.Field(key)
	if err != nil {
		// No path-bearing decoder exists, so the error stays out of the reporter.
		sessionOf(obj).logger.Warn("resilient field without sub-decoder", slog.String("key", key), slog.String("error", err.Error()))
		return fallback, recovered(err, false)
	}
	if optional && d.IsNull() {
		return fallback, outcomeNil
	}
	v, err := body(d)
	if err != nil {
		return fallback, recovered(d.sess.report(err, d.path), true)
	}
	return v, outcomeSuccess
}

var detachedSession = NewSession()

func sessionOf(obj *ObjectDecoder) *Session {
	if obj == nil || obj.sess == nil {
		return detachedSession
	}
	return obj.sess
}

// Required decodes a field that has no fallback. It exists so plain fields
// read like resilient ones: any error, including a missing key, is returned
// unchanged and nothing is reported.
func Required[T any](obj *ObjectDecoder, key string, fn DecodeFunc[T]) (Value[T], error) {
	d, err := obj.Field(key)
	if err != nil {
		return Value[T]{}, err
	}
	v, err := fn(d)
	if err != nil {
		return Value[T]{}, err
	}
	return Value[T]{Value: v, Outcome: outcomeSuccess}, nil
}

// Optional decodes a field whose fallback is nil.
func Optional[T any](obj *ObjectDecoder, key string, fn DecodeFunc[T], opts ...FieldOptions) Value[*T] {
	v, out := resolveField[*T](obj, key, nil, opts, func(d *Decoder) (*T, error) {
		v, err := fn(d)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
	return Value[*T]{Value: v, Outcome: out}
}

// Array decodes a sequence field element by element. Elements that fail are
// reported and omitted; a value that is not a sequence falls back to an
// empty slice.
func Array[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], opts ...FieldOptions) ArrayValue[E] {
	return arrayField(obj, key, fn, []E{}, opts)
}

// OptionalArray is Array with a nil fallback.
func OptionalArray[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], opts ...FieldOptions) ArrayValue[E] {
	return arrayField(obj, key, fn, nil, opts)
}

func arrayField[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], fallback []E, opts []FieldOptions) ArrayValue[E] {
	var results []Result[E]
	v, out := resolveField[[]E](obj, key, fallback, opts, func(d *Decoder) ([]E, error) {
		vals, res, err := decodeElements(d, fn)
		results = res
		return vals, err
	})
	if out.Kind == RecoveredFromError {
		results = []Result[E]{{Err: out.Err}}
	}
	if !introspection {
		results = nil
	}
	return ArrayValue[E]{Value: v, Outcome: out, results: results}
}

// Map decodes a string-keyed map field entry by entry. Keys keep the exact
// document spelling. Failing entries are reported and omitted; a value that
// is not a map falls back to an empty map.
func Map[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], opts ...FieldOptions) MapValue[E] {
	return mapField(obj, key, fn, map[string]E{}, opts)
}

// OptionalMap is Map with a nil fallback.
func OptionalMap[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], opts ...FieldOptions) MapValue[E] {
	return mapField(obj, key, fn, nil, opts)
}

func mapField[E any](obj *ObjectDecoder, key string, fn DecodeFunc[E], fallback map[string]E, opts []FieldOptions) MapValue[E] {
	var results []KeyedResult[E]
	v, out := resolveField[map[string]E](obj, key, fallback, opts, func(d *Decoder) (map[string]E, error) {
		vals, res, err := decodeEntries(d, fn)
		results = res
		return vals, err
	})
	if out.Kind == RecoveredFromError {
		results = []KeyedResult[E]{{Result: Result[E]{Err: out.Err}}}
	}
	if !introspection {
		results = nil
	}
	return MapValue[E]{Value: v, Outcome: out, results: results}
}
