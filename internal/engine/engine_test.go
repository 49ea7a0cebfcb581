package engine

import (
	"errors"
	"io"
	"testing"
)

type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *sliceSource) Location() int64 {
	if s.pos == 0 {
		return -1
	}
	return s.toks[s.pos-1].Offset
}

func src(toks ...Token) *sliceSource { return &sliceSource{toks: toks} }

func begin() Token { return Token{Kind: KindBeginObject} }
func end() Token { return Token{Kind: KindEndObject} }
func key(k string) Token { return Token{Kind: KindKey, String: k} }
func num(n string) Token { return Token{Kind: KindNumber, Number: n} }
func str(s string) Token { return Token{Kind: KindString, String: s} }
func arr() Token { return Token{Kind: KindBeginArray} }
func endArr() Token { return Token{Kind: KindEndArray} }
func at(t Token, off int64) Token {
	t.Offset = off
	return t
}

func TestBuildTree_ObjectKeepsOrderAndDuplicates(t *testing.T) {
	root, err := BuildTree(src(begin(), key("b"), num("1"), key("a"), arr(), str("x"), endArr(), key("b"), num("2"), end()))
	if err != nil {
		t.Fatal(err)
	}
	if root.Kind != NodeObject || len(root.Members) != 3 {
		t.Fatalf("unexpected root %+v", root)
	}
	if root.Members[0].Key != "b" || root.Members[1].Key != "a" {
		t.Fatalf("order lost: %+v", root.Members)
	}
	v, ok := root.Lookup("b")
	if !ok || v.Number != "2" {
		t.Fatalf("last duplicate must win, got %+v", v)
	}
	a, _ := root.Lookup("a")
	if a.Kind != NodeArray || len(a.Elems) != 1 || a.Elems[0].String != "x" {
		t.Fatalf("array = %+v", a)
	}
}

func TestBuildTree_Errors(t *testing.T) {
	if _, err := BuildTree(src()); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := BuildTree(src(begin(), key("a"))); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("truncated: %v", err)
	}
	if _, err := BuildTree(src(num("1"), num("2"))); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("trailing: %v", err)
	}
}

func TestNode_Interface(t *testing.T) {
	root, err := BuildTree(src(begin(), key("n"), num("3"), key("l"), arr(), Token{Kind: KindNull}, Token{Kind: KindBool, Bool: true}, endArr(), end()))
	if err != nil {
		t.Fatal(err)
	}
	m, ok := root.Interface(nil).(map[string]any)
	if !ok || m["n"] != "3" {
		t.Fatalf("interface = %#v", root.Interface(nil))
	}
	l := m["l"].([]any)
	if l[0] != nil || l[1] != true {
		t.Fatalf("list = %#v", l)
	}
}

func TestEnforce_DuplicateWarnGoesToSink(t *testing.T) {
	var got []SimpleIssue
	s := WrapWithEnforcement(src(begin(), key("a"), num("1"), key("a"), num("2"), end()), EnforceOptions{
		OnDuplicate: DupWarn,
		IssueSink:   func(si SimpleIssue) { got = append(got, si) },
	})
	if _, err := BuildTree(s); err != nil {
		t.Fatalf("warn must not abort: %v", err)
	}
	if len(got) != 1 || got[0].Code != "duplicate_key" || got[0].Path != "/a" {
		t.Fatalf("issues = %+v", got)
	}
}

func TestEnforce_DuplicateIgnoredInSiblingObjects(t *testing.T) {
	s := WrapWithEnforcement(src(arr(), begin(), key("a"), num("1"), end(), begin(), key("a"), num("2"), end(), endArr()), EnforceOptions{OnDuplicate: DupError})
	if _, err := BuildTree(s); err != nil {
		t.Fatalf("keys in sibling objects are not duplicates: %v", err)
	}
}

func TestEnforce_MaxBytes(t *testing.T) {
	s := WrapWithEnforcement(src(at(begin(), 0), at(key("a"), 1), at(str("long"), 100), at(end(), 110)), EnforceOptions{MaxBytes: 50})
	_, err := BuildTree(s)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" || ie.Path != "/a" {
		t.Fatalf("expected truncated at /a, got %v", err)
	}
}

func TestKeyTracker(t *testing.T) {
	var kt KeyTracker
	toks := []Token{
		kt.Open(true, 0),
		kt.String("k", 1),
		kt.String("v", 2),
		kt.String("list", 3),
		kt.Open(false, 4),
		kt.String("e", 5),
		kt.Close(false, 6),
		kt.String("n", 7),
		kt.Scalar(Token{Kind: KindNumber, Number: "1"}),
		kt.Close(true, 8),
	}
	want := []Kind{KindBeginObject, KindKey, KindString, KindKey, KindBeginArray, KindString, KindEndArray, KindKey, KindNumber, KindEndObject}
	for i, tok := range toks {
		if tok.Kind != want[i] {
			t.Fatalf("token %d kind %v, want %v", i, tok.Kind, want[i])
		}
	}
}

func TestPointerHelpers(t *testing.T) {
	if got := JoinPointer("/a", "b/c~"); got != "/a/b~1c~0" {
		t.Fatalf("JoinPointer = %q", got)
	}
}
