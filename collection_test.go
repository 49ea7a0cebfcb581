package resilient_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/resilient"
)

func TestArray_PartialFailureKeepsOrder(t *testing.T) {
	sess, rep := reporting()
	var v resilient.ArrayValue[int]
	withObject(t, sess, `{"numbers":[1,"2",3,"4",5]}`, func(obj *resilient.ObjectDecoder) {
		v = resilient.Array(obj, "numbers", resilient.Int)
	})
	if diff := cmp.Diff([]int{1, 3, 5}, v.Value); diff != "" {
		t.Fatalf("value (-want +got):\n%s", diff)
	}
	if v.Outcome.Kind != resilient.DecodedSuccessfully || v.Err() != nil {
		t.Fatalf("element omission must not fail the field: %v", v.Outcome)
	}
	d := rep.Flush()
	if diff := cmp.Diff([]string{"/numbers/1", "/numbers/3"}, pointers(d.Errors(false))); diff != "" {
		t.Fatalf("reported (-want +got):\n%s", diff)
	}
}

func TestArray_WholeFieldFailure(t *testing.T) {
	sess, rep := reporting()
	var v resilient.ArrayValue[int]
	withObject(t, sess, `{"numbers":{"a":1}}`, func(obj *resilient.ObjectDecoder) {
		v = resilient.Array(obj, "numbers", resilient.Int)
	})
	if v.Outcome.Kind != resilient.RecoveredFromError || !v.Outcome.WasReported {
		t.Fatalf("outcome = %+v", v.Outcome)
	}
	if v.Value == nil || len(v.Value) != 0 {
		t.Fatalf("fallback = %#v", v.Value)
	}
	if diff := cmp.Diff([]string{"/numbers"}, pointers(rep.Flush().Errors(false))); diff != "" {
		t.Fatalf("reported (-want +got):\n%s", diff)
	}
}

func TestMap_KeysKeepDocumentSpelling(t *testing.T) {
	sess := resilient.NewSession(resilient.Options{KeyStrategy: resilient.KeysFromSnakeCase})
	rep := sess.EnableErrorReporting()
	var m resilient.MapValue[int]
	var nested resilient.Value[*int]
	withObject(t, sess, `{"number_map":{"the_number_one":1,"the_number_two":"two"},"nested_value":3}`, func(obj *resilient.ObjectDecoder) {
		if obj.Has("number_map") || !obj.Has("numberMap") {
			t.Fatalf("struct keys must go through the key strategy")
		}
		m = resilient.Map(obj, "numberMap", resilient.Int)
		nested = resilient.Optional(obj, "nestedValue", resilient.Int)
	})
	if diff := cmp.Diff(map[string]int{"the_number_one": 1}, m.Value); diff != "" {
		t.Fatalf("map (-want +got):\n%s", diff)
	}
	if nested.Value == nil || *nested.Value != 3 {
		t.Fatalf("nested = %v", nested.Outcome)
	}
	if diff := cmp.Diff([]string{"/number_map/the_number_two"}, pointers(rep.Flush().Errors(false))); diff != "" {
		t.Fatalf("reported (-want +got):\n%s", diff)
	}
}

func TestMap_WholeFieldFailure(t *testing.T) {
	sess, rep := reporting()
	var v, opt resilient.MapValue[string]
	withObject(t, sess, `{"labels":[1,2],"more":"x"}`, func(obj *resilient.ObjectDecoder) {
		v = resilient.Map(obj, "labels", resilient.String)
		opt = resilient.OptionalMap(obj, "more", resilient.String)
	})
	if v.Value == nil || len(v.Value) != 0 {
		t.Fatalf("map fallback = %#v", v.Value)
	}
	if opt.Value != nil {
		t.Fatalf("optional map fallback must be nil, got %#v", opt.Value)
	}
	if !v.Outcome.WasReported || !opt.Outcome.WasReported {
		t.Fatalf("whole-map failures are reported: %+v %+v", v.Outcome, opt.Outcome)
	}
	if rep.Pending() != 2 {
		t.Fatalf("Pending = %d", rep.Pending())
	}
}

func TestElements_NestedArrays(t *testing.T) {
	sess, rep := reporting()
	var v resilient.ArrayValue[[]int]
	withObject(t, sess, `{"grid":[[1,"x"],"row",[3]]}`, func(obj *resilient.ObjectDecoder) {
		v = resilient.Array(obj, "grid", resilient.Elements(resilient.Int))
	})
	if diff := cmp.Diff([][]int{{1}, {3}}, v.Value); diff != "" {
		t.Fatalf("grid (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/grid/0/1", "/grid/1"}, pointers(rep.Flush().Errors(false))); diff != "" {
		t.Fatalf("reported (-want +got):\n%s", diff)
	}
}

func TestDecodeArray_Root(t *testing.T) {
	sess, rep := reporting()
	d, err := sess.Root(context.Background(), resilient.JSONBytes([]byte(`["a",1,"b"]`)))
	if err != nil {
		t.Fatal(err)
	}
	v := resilient.DecodeArray(d, resilient.String)
	if diff := cmp.Diff([]string{"a", "b"}, v.Value); diff != "" {
		t.Fatalf("value (-want +got):\n%s", diff)
	}
	if rep.Pending() != 1 {
		t.Fatalf("Pending = %d", rep.Pending())
	}

	d, err = sess.Root(context.Background(), resilient.JSONBytes([]byte(`"scalar"`)))
	if err != nil {
		t.Fatal(err)
	}
	m := resilient.DecodeMap(d, resilient.String)
	if m.Outcome.Kind != resilient.RecoveredFromError || len(m.Value) != 0 {
		t.Fatalf("outcome = %+v", m.Outcome)
	}
}

func TestMap_DuplicateKeysLastWins(t *testing.T) {
	sess, _ := reporting()
	var m resilient.MapValue[int]
	withObject(t, sess, `{"m":{"a":1,"a":"x","b":2,"b":3}}`, func(obj *resilient.ObjectDecoder) {
		m = resilient.Map(obj, "m", resilient.Int)
	})
	if diff := cmp.Diff(map[string]int{"b": 3}, m.Value); diff != "" {
		t.Fatalf("map (-want +got):\n%s", diff)
	}
}
