package resilient_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/resilient"
)

func TestDuplicateKeys_None(t *testing.T) {
	iss, err := resilient.DuplicateKeys(resilient.JSONBytes([]byte(`{"a":1,"b":{"a":2}}`)), -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 0 {
		t.Fatalf("expected 0 issues, got %d: %v", len(iss), iss)
	}
}

func TestDuplicateKeys_Paths(t *testing.T) {
	iss, err := resilient.DuplicateKeys(resilient.JSONBytes([]byte(`{"a":1,"a":2,"l":[{"x":1,"x":2}]}`)), -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	var paths []string
	for _, i := range iss {
		if i.Code != resilient.CodeDuplicateKey {
			t.Fatalf("expected duplicate_key, got %s", i.Code)
		}
		paths = append(paths, i.Path)
	}
	if diff := cmp.Diff([]string{"/a", "/l/0/x"}, paths); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeys_Limit(t *testing.T) {
	iss, err := resilient.DuplicateKeys(resilient.JSONBytes([]byte(`{"a":1,"a":2,"b":1,"b":2}`)), 1)
	if err != nil || len(iss) != 1 {
		t.Fatalf("iss=%v err=%v", iss, err)
	}
}

func TestDuplicateKeys_SyntaxError(t *testing.T) {
	_, err := resilient.DuplicateKeys(resilient.JSONBytes([]byte(`{"a":1,"a"`)), -1)
	if iss, ok := resilient.AsIssues(err); !ok || iss[0].Code != resilient.CodeParseError {
		t.Fatalf("expected parse_error, got %v", err)
	}
}
