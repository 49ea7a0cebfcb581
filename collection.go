package resilient

import (
	"cmp"
	"slices"
)

// positioned tags an element outcome with where it came from so successes
// and failures collected separately can be merged back in document order.
type positioned[R any] struct {
	offset int64
	seq    int
	res    R
}

func comparePositioned[R any](a, b positioned[R]) int {
	if c := cmp.Compare(a.offset, b.offset); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

// interleave merges successes and failures into one slice ordered by
// (offset, seq). The sort is stable so equal keys keep insertion order.
func interleave[R any](ok, failed []positioned[R]) []R {
	if !introspection {
		return nil
	}
	all := make([]positioned[R], 0, len(ok)+len(failed))
	all = append(all, ok...)
	all = append(all, failed...)
	for i := range all {
		if all[i].offset < 0 {
			// Some source did not report offsets; fall back to insertion order.
			for j := range all {
				all[j].offset = 0
			}
			break
		}
	}
	slices.SortStableFunc(all, comparePositioned[R])
	out := make([]R, len(all))
	for i, p := range all {
		out[i] = p.res
	}
	return out
}

// decodeElements decodes every element of the sequence at d independently.
// Only a value that cannot be opened as a sequence fails the call; failing
// elements are reported at their own path and left out of the returned values.
func decodeElements[E any](d *Decoder, fn DecodeFunc[E]) ([]E, []Result[E], error) {
	arr, err := d.Array()
	if err != nil {
		return nil, nil, err
	}
	n := arr.Len()
	vals := make([]E, 0, n)
	var ok, failed []positioned[Result[E]]
	for i := 0; i < n; i++ {
		ed, err := arr.At(i)
		if err != nil {
			de := d.sess.report(err, arr.path.Child(Index(i)))
			failed = append(failed, positioned[Result[E]]{offset: -1, seq: i, res: Result[E]{Err: de}})
			continue
		}
		v, err := fn(ed)
		if err != nil {
			de := d.sess.report(err, ed.path)
			failed = append(failed, positioned[Result[E]]{offset: ed.Offset(), seq: i, res: Result[E]{Err: de}})
			continue
		}
		vals = append(vals, v)
		ok = append(ok, positioned[Result[E]]{offset: ed.Offset(), seq: i, res: Result[E]{Value: v}})
	}
	return vals, interleave(ok, failed), nil
}

// decodeEntries is decodeElements for string-keyed maps. Entries come from
// RawEntries so the session key strategy never touches map keys. With
// duplicate keys the last occurrence decides the entry.
func decodeEntries[E any](d *Decoder, fn DecodeFunc[E]) (map[string]E, []KeyedResult[E], error) {
	obj, err := d.Object()
	if err != nil {
		return nil, nil, err
	}
	entries := obj.RawEntries()
	vals := make(map[string]E, len(entries))
	var ok, failed []positioned[KeyedResult[E]]
	for i, e := range entries {
		v, err := fn(e.Decoder)
		if err != nil {
			de := d.sess.report(err, e.Decoder.path)
			delete(vals, e.Key)
			failed = append(failed, positioned[KeyedResult[E]]{offset: e.Decoder.Offset(), seq: i, res: KeyedResult[E]{Key: e.Key, Result: Result[E]{Err: de}}})
			continue
		}
		vals[e.Key] = v
		ok = append(ok, positioned[KeyedResult[E]]{offset: e.Decoder.Offset(), seq: i, res: KeyedResult[E]{Key: e.Key, Result: Result[E]{Value: v}}})
	}
	return vals, interleave(ok, failed), nil
}

// Elements lifts an element decoder to a sequence decoder with per-element
// recovery, for nesting inside other wrappers (for example an array of
// arrays). Element results are not retained.
func Elements[E any](fn DecodeFunc[E]) DecodeFunc[[]E] {
	return func(d *Decoder) ([]E, error) {
		vals, _, err := decodeElements(d, fn)
		return vals, err
	}
}

// Entries is Elements for string-keyed maps.
func Entries[E any](fn DecodeFunc[E]) DecodeFunc[map[string]E] {
	return func(d *Decoder) (map[string]E, error) {
		vals, _, err := decodeEntries(d, fn)
		return vals, err
	}
}

// DecodeArray applies the element algorithm to the value at d, typically a
// document root that is itself a sequence. A value that is not a sequence
// is reported and yields an empty slice.
func DecodeArray[E any](d *Decoder, fn DecodeFunc[E]) ArrayValue[E] {
	vals, res, err := decodeElements(d, fn)
	if err != nil {
		de := d.sess.report(err, d.path)
		av := ArrayValue[E]{Value: []E{}, Outcome: recovered(de, true)}
		if introspection {
			av.results = []Result[E]{{Err: de}}
		}
		return av
	}
	return ArrayValue[E]{Value: vals, Outcome: outcomeSuccess, results: res}
}

// DecodeMap is DecodeArray for string-keyed maps.
func DecodeMap[E any](d *Decoder, fn DecodeFunc[E]) MapValue[E] {
	vals, res, err := decodeEntries(d, fn)
	if err != nil {
		de := d.sess.report(err, d.path)
		mv := MapValue[E]{Value: map[string]E{}, Outcome: recovered(de, true)}
		if introspection {
			mv.results = []KeyedResult[E]{{Result: Result[E]{Err: de}}}
		}
		return mv
	}
	return MapValue[E]{Value: vals, Outcome: outcomeSuccess, results: res}
}
