package resilient_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/resilient"
)

func TestReporter_FlushReturnsEachErrorOnce(t *testing.T) {
	sess, rep := reporting()
	withObject(t, sess, `{"age":"old","tags":[1,"a"]}`, func(obj *resilient.ObjectDecoder) {
		_ = resilient.Optional(obj, "age", resilient.Int)
		_ = resilient.Array(obj, "tags", resilient.String)
	})
	if rep.Pending() != 2 {
		t.Fatalf("Pending = %d, want 2", rep.Pending())
	}
	d := rep.Flush()
	if d == nil {
		t.Fatalf("expected a digest")
	}
	if diff := cmp.Diff([]string{"/age", "/tags/0"}, pointers(d.Errors(false))); diff != "" {
		t.Fatalf("digest paths (-want +got):\n%s", diff)
	}
	if d.SessionID() != sess.ID() {
		t.Fatalf("digest session id mismatch")
	}
	if again := rep.Flush(); again != nil {
		t.Fatalf("second flush must be empty, got %v", again.Errors(true))
	}
}

func TestReporter_ReusableAcrossDecodes(t *testing.T) {
	sess, rep := reporting()
	for i, doc := range []string{`{"n":"x"}`, `{"n":1}`, `{"n":true}`} {
		withObject(t, sess, doc, func(obj *resilient.ObjectDecoder) {
			_ = resilient.Optional(obj, "n", resilient.Int)
		})
		d := rep.Flush()
		if (i == 1) != (d == nil) {
			t.Fatalf("doc %d: unexpected digest %v", i, d)
		}
	}
}

func TestReporter_DoubleRegistrationMarksEarlierReporter(t *testing.T) {
	sess := resilient.NewSession()
	first := sess.EnableErrorReporting()
	withObject(t, sess, `{"a":"x"}`, func(obj *resilient.ObjectDecoder) {
		_ = resilient.Optional(obj, "a", resilient.Int)
	})
	second := sess.EnableErrorReporting()
	if sess.Reporter() != second {
		t.Fatalf("session must use the newest reporter")
	}
	withObject(t, sess, `{"b":"x"}`, func(obj *resilient.ObjectDecoder) {
		_ = resilient.Optional(obj, "b", resilient.Int)
	})

	d2 := second.Flush()
	if d2 == nil || d2.MayBeMissingErrors() {
		t.Fatalf("second reporter must be unaffected, got %v", d2)
	}
	if diff := cmp.Diff([]string{"/b"}, pointers(d2.Errors(false))); diff != "" {
		t.Fatalf("second digest (-want +got):\n%s", diff)
	}

	d1 := first.Flush()
	if d1 == nil || !d1.MayBeMissingErrors() {
		t.Fatalf("first reporter must be marked, got %v", d1)
	}
	errs := d1.Errors(false)
	if len(errs) != 2 {
		t.Fatalf("want original error plus marker, got %v", errs)
	}
	var marker *resilient.DecodeError
	for _, e := range errs {
		if errors.Is(e, resilient.ErrMayBeMissingReportedErrors) {
			marker = e
		}
	}
	if marker == nil || marker.Kind != resilient.KindCustom || marker.Path.Pointer() != "/" {
		t.Fatalf("missing marker entry: %v", errs)
	}
	if first.Flush() != nil {
		t.Fatalf("marker must be flushed exactly once")
	}
}

func TestReporter_MarkerWithoutErrors(t *testing.T) {
	sess := resilient.NewSession()
	first := sess.EnableErrorReporting()
	_ = sess.EnableErrorReporting()
	d := first.Flush()
	if d == nil || !d.MayBeMissingErrors() {
		t.Fatalf("marked reporter must produce a digest even without errors")
	}
}

func TestDigest_UnknownNovelValuesExcludedByDefault(t *testing.T) {
	rep := resilient.NewSession().EnableErrorReporting()
	rep.Report(resilient.UnknownNovelValue(resilient.ParsePointer("/kind"), "novel"), resilient.ParsePointer("/kind"))
	rep.Report(errors.New("boom"), resilient.ParsePointer("/x"))
	d := rep.Flush()

	if diff := cmp.Diff([]string{"/x"}, pointers(d.Errors(false))); diff != "" {
		t.Fatalf("default errors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/kind", "/x"}, pointers(d.Errors(true))); diff != "" {
		t.Fatalf("all errors (-want +got):\n%s", diff)
	}
	if got := d.Errors(false)[0]; got.Kind != resilient.KindCustom || got.Cause.Error() != "boom" {
		t.Fatalf("foreign errors must be wrapped as custom, got %v", got)
	}
	if strings.Contains(d.String(), "novel") {
		t.Fatalf("String must exclude novel values:\n%s", d)
	}
	if !strings.Contains(d.PrettyPrint(true), `unknown value "novel"`) {
		t.Fatalf("PrettyPrint(true) must include novel values:\n%s", d.PrettyPrint(true))
	}
	iss := d.Issues(false)
	if len(iss) != 1 || iss[0].Code != resilient.CodeCustom || iss[0].Path != "/x" {
		t.Fatalf("unexpected issues: %v", iss)
	}
	if got := d.ErrorsAt(resilient.ParsePointer("/kind"), true); len(got) != 1 {
		t.Fatalf("ErrorsAt(/kind) = %v", got)
	}
}

func TestReporter_ConcurrentFlush(t *testing.T) {
	rep := resilient.NewSession().EnableErrorReporting()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				rep.Report(resilient.DataCorrupted(resilient.Path{resilient.Index(i)}, "x"), resilient.Path{resilient.Index(i)})
			}
		}(i)
	}
	total := 0
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	for {
		if d := rep.Flush(); d != nil {
			total += len(d.Errors(true))
		}
		select {
		case <-done:
			if d := rep.Flush(); d != nil {
				total += len(d.Errors(true))
			}
			if total != 400 {
				t.Fatalf("collected %d errors, want 400", total)
			}
			return
		default:
		}
	}
}

func TestDigest_ReturnsCopies(t *testing.T) {
	sess, rep := reporting()
	withObject(t, sess, `{"age":"old"}`, func(obj *resilient.ObjectDecoder) {
		_ = resilient.Optional(obj, "age", resilient.Int)
	})
	d := rep.Flush()
	first := d.Errors(false)[0]
	first.Kind = resilient.KindCustom
	first.Detail = "edited"
	first.Path[0] = resilient.Key("elsewhere")

	again := d.ErrorsAt(resilient.ParsePointer("/age"), false)
	if len(again) != 1 || again[0].Kind != resilient.KindTypeMismatch || again[0].Detail == "edited" {
		t.Fatalf("digest changed through a returned error: %+v", again)
	}
	if diff := cmp.Diff([]string{"/age"}, pointers(d.Errors(true))); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
	if !strings.Contains(d.PrettyPrint(false), "/age") {
		t.Fatalf("pretty print:\n%s", d.PrettyPrint(false))
	}
}
