package resilient

// Value is a resilient field: the decoded or fallback value plus how it was
// obtained. Value is always set, even when decoding failed.
type Value[T any] struct {
	Value   T
	Outcome Outcome
}

// Get returns the held value.
func (v Value[T]) Get() T { return v.Value }

// Err returns the recovered error, or nil.
func (v Value[T]) Err() error {
	if v.Outcome.Kind != RecoveredFromError {
		return nil
	}
	return v.Outcome.Err
}

// Result is one collection element: either Value or Err is meaningful.
type Result[E any] struct {
	Value E
	Err   error
}

// OK reports whether the element decoded.
func (r Result[E]) OK() bool { return r.Err == nil }

// KeyedResult is a Result for a map entry; Key keeps the document spelling.
type KeyedResult[E any] struct {
	Key string
	Result[E]
}

// ArrayValue is a resilient array field. Value holds the successfully decoded
// elements in document order; failed elements are omitted.
type ArrayValue[E any] struct {
	Value   []E
	Outcome Outcome
	results []Result[E]
}

// Get returns the surviving elements.
func (a ArrayValue[E]) Get() []E { return a.Value }

// Err returns the whole-field error, or nil. Element failures do not count.
func (a ArrayValue[E]) Err() error { return Value[[]E]{Outcome: a.Outcome}.Err() }

// Results returns every element outcome in document order. When the whole
// field failed it holds a single failure. Results is nil in release builds.
func (a ArrayValue[E]) Results() []Result[E] { return a.results }

// Errors returns the element (or whole-field) failures in order of occurrence.
func (a ArrayValue[E]) Errors() []error {
	var errs []error
	for _, r := range a.results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// MapValue is a resilient string-keyed map field. Failed entries are omitted.
type MapValue[E any] struct {
	Value   map[string]E
	Outcome Outcome
	results []KeyedResult[E]
}

// Get returns the surviving entries.
func (m MapValue[E]) Get() map[string]E { return m.Value }

// Err returns the whole-field error, or nil. Entry failures do not count.
func (m MapValue[E]) Err() error { return Value[map[string]E]{Outcome: m.Outcome}.Err() }

// Results returns every entry outcome in document order. When the whole
// field failed it holds a single failure with an empty key. Results is nil
// in release builds.
func (m MapValue[E]) Results() []KeyedResult[E] { return m.results }

// Errors returns the entry (or whole-field) failures in order of occurrence.
func (m MapValue[E]) Errors() []error {
	var errs []error
	for _, r := range m.results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
