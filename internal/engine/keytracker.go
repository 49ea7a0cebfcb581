package engine

// KeyTracker turns the flat token stream of encoding/json-style decoders,
// where object keys arrive as plain strings, into key-aware Tokens.
type KeyTracker struct {
	stack []trackFrame
}

type trackFrame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object (object=true) or array.
func (t *KeyTracker) Open(object bool, off int64) Token {
	t.stack = append(t.stack, trackFrame{object: object, expectingKey: object})
	if object {
		return Token{Kind: KindBeginObject, Offset: off}
	}
	return Token{Kind: KindBeginArray, Offset: off}
}

// Close records the end of the innermost container.
func (t *KeyTracker) Close(object bool, off int64) Token {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
	t.valueDone()
	if object {
		return Token{Kind: KindEndObject, Offset: off}
	}
	return Token{Kind: KindEndArray, Offset: off}
}

// String classifies s as an object key or a string value.
func (t *KeyTracker) String(s string, off int64) Token {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return Token{Kind: KindKey, String: s, Offset: off}
		}
	}
	t.valueDone()
	return Token{Kind: KindString, String: s, Offset: off}
}

// Scalar passes through a non-string scalar token.
func (t *KeyTracker) Scalar(tok Token) Token {
	t.valueDone()
	return tok
}

func (t *KeyTracker) valueDone() {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.object && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
