package engine

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// NodeKind classifies a document node.
type NodeKind int

const (
	NodeNull NodeKind = iota
	NodeBool
	NodeNumber
	NodeString
	NodeObject
	NodeArray
)

func (k NodeKind) String() string {
	switch k {
	case NodeNull:
		return "null"
	case NodeBool:
		return "bool"
	case NodeNumber:
		return "number"
	case NodeString:
		return "string"
	case NodeObject:
		return "object"
	case NodeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Member is a single object entry. Members keep document order, duplicates included.
type Member struct {
	Key   string
	Value *Node
}

// Node is a parsed document value. Objects keep their members in document
// order so that callers can observe the original key spelling and position.
type Node struct {
	Kind    NodeKind
	String  string
	Number  string
	Bool    bool
	Members []Member
	Elems   []*Node
	// Offset is the input offset of the token that opened this node (-1 when unknown).
	Offset int64
}

// Lookup returns the value stored under key. When a key is duplicated the last one wins.
func (n *Node) Lookup(key string) (*Node, bool) {
	if n == nil || n.Kind != NodeObject {
		return nil, false
	}
	for i := len(n.Members) - 1; i >= 0; i-- {
		if n.Members[i].Key == key {
			return n.Members[i].Value, true
		}
	}
	return nil, false
}

// Interface converts the node into the JSON-like any tree (map[string]any,
// []any, string, bool, nil) with numbers rendered through conv.
func (n *Node) Interface(conv func(string) any) any {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case NodeBool:
		return n.Bool
	case NodeNumber:
		if conv == nil {
			return n.Number
		}
		return conv(n.Number)
	case NodeString:
		return n.String
	case NodeObject:
		m := make(map[string]any, len(n.Members))
		for _, mb := range n.Members {
			m[mb.Key] = mb.Value.Interface(conv)
		}
		return m
	case NodeArray:
		arr := make([]any, len(n.Elems))
		for i, e := range n.Elems {
			arr[i] = e.Interface(conv)
		}
		return arr
	default:
		return nil
	}
}

// ErrTrailingData reports tokens left in the source after the root value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// BuildTree consumes exactly one value from src and returns it as a Node.
// Any token after the root value is reported as ErrTrailingData.
func BuildTree(src TokenSource) (*Node, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	root, err := buildValue(src, tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); err == nil {
		return nil, ErrTrailingData
	} else if !errors.Is(err, io.EOF) {
		return nil, err
	}
	return root, nil
}

func buildValue(src TokenSource, tok Token) (*Node, error) {
	switch tok.Kind {
	case KindBeginObject:
		return buildObject(src, tok.Offset)
	case KindBeginArray:
		return buildArray(src, tok.Offset)
	case KindString:
		return &Node{Kind: NodeString, String: tok.String, Offset: tok.Offset}, nil
	case KindNumber:
		return &Node{Kind: NodeNumber, Number: tok.Number, Offset: tok.Offset}, nil
	case KindBool:
		return &Node{Kind: NodeBool, Bool: tok.Bool, Offset: tok.Offset}, nil
	case KindNull:
		return &Node{Kind: NodeNull, Offset: tok.Offset}, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func buildObject(src TokenSource, off int64) (*Node, error) {
	n := &Node{Kind: NodeObject, Offset: off}
	for {
		tok, err := nextToken(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return n, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := nextToken(src)
		if err != nil {
			return nil, err
		}
		v, err := buildValue(src, vt)
		if err != nil {
			return nil, err
		}
		n.Members = append(n.Members, Member{Key: tok.String, Value: v})
	}
}

func buildArray(src TokenSource, off int64) (*Node, error) {
	n := &Node{Kind: NodeArray, Offset: off}
	for {
		tok, err := nextToken(src)
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndArray {
			return n, nil
		}
		v, err := buildValue(src, tok)
		if err != nil {
			return nil, err
		}
		n.Elems = append(n.Elems, v)
	}
}

// nextToken turns a premature EOF inside a container into io.ErrUnexpectedEOF.
func nextToken(src TokenSource) (Token, error) {
	tok, err := src.NextToken()
	if errors.Is(err, io.EOF) {
		return Token{}, io.ErrUnexpectedEOF
	}
	return tok, err
}
