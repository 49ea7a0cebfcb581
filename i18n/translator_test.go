package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("type_mismatch", nil); msg == "type_mismatch" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("type_mismatch", nil); msg == "type mismatch" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	if msg := T("type_mismatch", map[string]string{"expected": "int"}); msg != "expected int" {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := T("unknown_novel_value", map[string]string{"raw": "novel"}); msg != `unknown value "novel"` {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown codes should echo the code, got %q", msg)
	}
}

type fixedTranslator struct{}

func (fixedTranslator) Message(code string, data map[string]string) string { return "fixed" }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(fixedTranslator{})
	if msg := T("type_mismatch", nil); msg != "fixed" {
		t.Fatalf("expected custom translator, got %q", msg)
	}
	SetTranslator(nil)
	if msg := T("custom", nil); msg != "decode failed" {
		t.Fatalf("expected default translator after reset, got %q", msg)
	}
}
