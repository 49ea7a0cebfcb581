package resilient

import "context"

// Unmarshal decodes a JSON document into a new T. Recovered errors are only
// visible through the resilient fields of T.
func Unmarshal[T any, PT interface {
	*T
	Decodable
}](data []byte, opts ...Options) (T, error) {
	var v T
	err := NewSession(opts...).Decode(context.Background(), JSONBytes(data), PT(&v))
	return v, err
}

// UnmarshalWithDigest is Unmarshal with error reporting enabled. The Digest
// is nil when nothing was recovered.
func UnmarshalWithDigest[T any, PT interface {
	*T
	Decodable
}](data []byte, opts ...Options) (T, *Digest, error) {
	var v T
	sess := NewSession(opts...)
	rep := sess.EnableErrorReporting()
	if err := sess.Decode(context.Background(), JSONBytes(data), PT(&v)); err != nil {
		return v, nil, err
	}
	return v, rep.Flush(), nil
}

// UnmarshalFrom decodes one document from src into v within sess. The
// session keeps its reporter, so several documents can be decoded before a
// single Flush.
func UnmarshalFrom(ctx context.Context, sess *Session, src Source, v Decodable) error {
	if sess == nil {
		sess = NewSession()
	}
	return sess.Decode(ctx, src, v)
}

// DecodeRoot parses src within sess and decodes its root with fn. Errors
// from fn propagate.
func DecodeRoot[T any](ctx context.Context, sess *Session, src Source, fn DecodeFunc[T]) (T, error) {
	var zero T
	if sess == nil {
		sess = NewSession()
	}
	d, err := sess.Root(ctx, src)
	if err != nil {
		return zero, err
	}
	return fn(d)
}
