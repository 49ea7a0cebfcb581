package resilient_test

import (
	"context"
	"testing"

	"github.com/reoring/resilient"
)

// withObject parses doc within sess and hands the root object to fn.
func withObject(t *testing.T, sess *resilient.Session, doc string, fn func(obj *resilient.ObjectDecoder)) {
	t.Helper()
	d, err := sess.Root(context.Background(), resilient.JSONBytes([]byte(doc)))
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	obj, err := d.Object()
	if err != nil {
		t.Fatalf("object: %v", err)
	}
	fn(obj)
}

// reporting returns a session with error reporting enabled.
func reporting() (*resilient.Session, *resilient.ErrorReporter) {
	s := resilient.NewSession()
	return s, s.EnableErrorReporting()
}

func pointers(errs []*resilient.DecodeError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Path.Pointer()
	}
	return out
}
