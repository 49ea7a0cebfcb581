package source_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/resilient"
	_ "github.com/reoring/resilient/source"
	"github.com/reoring/resilient/source/gojson"
)

func TestDefaultDriverIsGoJSON(t *testing.T) {
	if got := resilient.CurrentJSONDriver().Name(); got != "go-json" {
		t.Fatalf("driver = %q", got)
	}
}

func TestDriversAgree(t *testing.T) {
	doc := []byte(`{"ids":[1,"x",3],"tags":{"a":"b","c":2},"name":null}`)
	type result struct {
		IDs    []int
		Tags   map[string]string
		Name   resilient.OutcomeKind
		Errors []string
	}
	run := func(src resilient.Source) result {
		sess := resilient.NewSession()
		rep := sess.EnableErrorReporting()
		d, err := sess.Root(context.Background(), src)
		if err != nil {
			t.Fatal(err)
		}
		obj, err := d.Object()
		if err != nil {
			t.Fatal(err)
		}
		var r result
		r.IDs = resilient.Array(obj, "ids", resilient.Int).Value
		r.Tags = resilient.Map(obj, "tags", resilient.String).Value
		r.Name = resilient.Optional(obj, "name", resilient.String).Outcome.Kind
		for _, e := range rep.Flush().Errors(false) {
			r.Errors = append(r.Errors, e.Path.Pointer())
		}
		return r
	}

	goJSON := run(gojson.Driver().NewBytes(doc))
	resilient.UseDefaultJSONDriver()
	defer resilient.SetJSONDriver(gojson.Driver())
	std := run(resilient.JSONBytes(doc))

	want := result{
		IDs:    []int{1, 3},
		Tags:   map[string]string{"a": "b"},
		Name:   resilient.ValueWasNil,
		Errors: []string{"/ids/1", "/tags/c"},
	}
	if diff := cmp.Diff(want, goJSON); diff != "" {
		t.Fatalf("go-json (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, std); diff != "" {
		t.Fatalf("encoding/json (-want +got):\n%s", diff)
	}
}
