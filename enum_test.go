package resilient_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/resilient"
)

type color string

const (
	red     color = "red"
	green   color = "green"
	unknown color = "unknown"
)

var colorSpec = resilient.Known(red, green)

func TestEnum_NovelVersusFrozen(t *testing.T) {
	cases := []struct {
		name          string
		spec          resilient.EnumSpec[color, string]
		wantKind      resilient.ErrorKind
		inDefaultView bool
	}{
		{"novel", colorSpec.WithFallback(unknown), resilient.KindUnknownNovelValue, false},
		{"frozen", colorSpec.WithFallback(unknown).AsFrozen(), resilient.KindDataCorrupted, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess, rep := reporting()
			var v resilient.Value[color]
			withObject(t, sess, `{"color":"novel"}`, func(obj *resilient.ObjectDecoder) {
				var err error
				v, err = resilient.Enum(obj, "color", tc.spec)
				if err != nil {
					t.Fatalf("enum with fallback must not fail: %v", err)
				}
			})
			if v.Value != unknown {
				t.Fatalf("value = %q, want fallback", v.Value)
			}
			if v.Outcome.Kind != resilient.RecoveredFromError || !v.Outcome.WasReported {
				t.Fatalf("outcome = %+v", v.Outcome)
			}
			de, _ := resilient.AsDecodeError(v.Err())
			if de == nil || de.Kind != tc.wantKind || de.Raw != "novel" {
				t.Fatalf("error = %v", v.Err())
			}
			d := rep.Flush()
			if got := len(d.Errors(false)); (got == 1) != tc.inDefaultView {
				t.Fatalf("default digest has %d errors", got)
			}
			if len(d.Errors(true)) != 1 {
				t.Fatalf("digest with novel values = %v", d.Errors(true))
			}
		})
	}
}

func TestEnum_RawTypeMismatchIsHardError(t *testing.T) {
	sess, rep := reporting()
	var v resilient.Value[color]
	withObject(t, sess, `{"color":7}`, func(obj *resilient.ObjectDecoder) {
		v, _ = resilient.Enum(obj, "color", colorSpec.WithFallback(unknown))
	})
	de, _ := resilient.AsDecodeError(v.Err())
	if de == nil || de.Kind != resilient.KindTypeMismatch {
		t.Fatalf("error = %v", v.Err())
	}
	if len(rep.Flush().Errors(false)) != 1 {
		t.Fatalf("type mismatch must be in the default digest")
	}
}

func TestEnum_WithoutFallbackPropagates(t *testing.T) {
	sess, rep := reporting()
	withObject(t, sess, `{"color":"novel"}`, func(obj *resilient.ObjectDecoder) {
		_, err := resilient.Enum(obj, "color", colorSpec)
		if !resilient.IsUnknownNovelValue(err) {
			t.Fatalf("error must propagate unchanged, got %v", err)
		}
	})
	if rep.Pending() != 0 {
		t.Fatalf("propagated errors must not be reported")
	}
}

func TestOptionalEnum(t *testing.T) {
	sess, rep := reporting()
	var ok, novel, frozen resilient.Value[*color]
	withObject(t, sess, `{"a":"red","b":"novel","c":"novel"}`, func(obj *resilient.ObjectDecoder) {
		ok = resilient.OptionalEnum(obj, "a", colorSpec)
		novel = resilient.OptionalEnum(obj, "b", colorSpec.WithFallback(unknown))
		frozen = resilient.OptionalEnum(obj, "c", colorSpec.AsFrozen())
	})
	if ok.Value == nil || *ok.Value != red {
		t.Fatalf("a = %v", ok.Outcome)
	}
	if novel.Value != nil || !resilient.IsUnknownNovelValue(novel.Err()) {
		t.Fatalf("optional enums never use the fallback: %+v", novel)
	}
	if frozen.Value != nil || resilient.IsUnknownNovelValue(frozen.Err()) {
		t.Fatalf("frozen: %+v", frozen)
	}
	d := rep.Flush()
	if diff := cmp.Diff([]string{"/c"}, pointers(d.Errors(false))); diff != "" {
		t.Fatalf("default digest (-want +got):\n%s", diff)
	}
}

func TestEnumElement_OmitsUnknown(t *testing.T) {
	sess, rep := reporting()
	var v resilient.ArrayValue[color]
	var m resilient.MapValue[color]
	withObject(t, sess, `{"list":["red","novel",1,"green"],"by_id":{"x":"green","y":"blue"}}`, func(obj *resilient.ObjectDecoder) {
		el := resilient.EnumElement(colorSpec.WithFallback(unknown))
		v = resilient.Array(obj, "list", el)
		m = resilient.Map(obj, "by_id", el)
	})
	if diff := cmp.Diff([]color{red, green}, v.Value); diff != "" {
		t.Fatalf("list (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]color{"x": green}, m.Value); diff != "" {
		t.Fatalf("map (-want +got):\n%s", diff)
	}
	d := rep.Flush()
	if diff := cmp.Diff([]string{"/list/2"}, pointers(d.Errors(false))); diff != "" {
		t.Fatalf("default digest (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/by_id/y", "/list/1", "/list/2"}, pointers(d.Errors(true))); diff != "" {
		t.Fatalf("full digest (-want +got):\n%s", diff)
	}
}

func TestIntEnum(t *testing.T) {
	spec := resilient.IntEnum(map[int]string{1: "one", 2: "two"}).WithFallback("other")
	sess, _ := reporting()
	var a, b resilient.Value[string]
	withObject(t, sess, `{"a":2,"b":9}`, func(obj *resilient.ObjectDecoder) {
		a, _ = resilient.Enum(obj, "a", spec)
		b, _ = resilient.Enum(obj, "b", spec)
	})
	if a.Value != "two" || b.Value != "other" {
		t.Fatalf("a=%q b=%q", a.Value, b.Value)
	}
	de, _ := resilient.AsDecodeError(b.Err())
	if de == nil || de.Raw != 9 {
		t.Fatalf("raw = %v", b.Err())
	}
}
