// Package yaml provides a token source for YAML documents backed by
// gopkg.in/yaml.v3. Mapping order is kept as written; offsets are byte
// positions computed from the line and column of each node.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	y "gopkg.in/yaml.v3"

	"github.com/reoring/resilient"
	eng "github.com/reoring/resilient/internal/engine"
)

const (
	maxAliasDepth = 64

	// A document may expand to minTokenBudget tokens plus tokensPerByte
	// for every input byte. Alias-free input stays well below that.
	minTokenBudget = 1 << 16
	tokensPerByte  = 16
)

var (
	// ErrAliasDepth is returned when alias expansion nests deeper than the
	// source allows, which usually means a cyclic anchor.
	ErrAliasDepth = errors.New("yaml: alias nesting too deep")
	// ErrAliasExpansion is returned when aliases expand a document far
	// beyond the size of its input.
	ErrAliasExpansion = errors.New("yaml: alias expansion too large")
)

type source struct {
	toks []eng.Token
	pos  int
	err  error
	last int64
}

// Source returns a resilient.Source reading YAML from r.
func Source(r io.Reader) resilient.Source { return resilient.SourceFromEngine(NewReader(r)) }

// Bytes returns a resilient.Source reading YAML from b.
func Bytes(b []byte) resilient.Source { return resilient.SourceFromEngine(NewBytes(b)) }

// NewReader wraps an io.Reader into an engine.TokenSource for YAML. The
// input is read fully before the first token is produced.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return &source{err: err, last: -1}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into an engine.TokenSource for YAML. A stream
// with several documents yields all of them, which the tree builder rejects
// as trailing data.
func NewBytes(b []byte) eng.TokenSource {
	s := &source{last: -1}
	lines := lineStarts(b)
	dec := y.NewDecoder(bytes.NewReader(b))
	for {
		var doc y.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.err = err
			break
		}
		f := flattener{lines: lines, budget: minTokenBudget + tokensPerByte*len(b)}
		if err := f.node(&doc, 0); err != nil {
			s.err = err
			break
		}
		s.toks = append(s.toks, f.toks...)
	}
	return s
}

func (s *source) NextToken() (eng.Token, error) {
	if s.pos < len(s.toks) {
		t := s.toks[s.pos]
		s.pos++
		s.last = t.Offset
		return t, nil
	}
	if s.err != nil {
		return eng.Token{}, s.err
	}
	return eng.Token{}, io.EOF
}

func (s *source) Location() int64 { return s.last }

type flattener struct {
	lines  []int64
	toks   []eng.Token
	budget int
}

func (f *flattener) offset(n *y.Node) int64 {
	if n.Line <= 0 || n.Line > len(f.lines) {
		return -1
	}
	return f.lines[n.Line-1] + int64(n.Column-1)
}

func (f *flattener) emit(t eng.Token) { f.toks = append(f.toks, t) }

func (f *flattener) node(n *y.Node, aliases int) error {
	if len(f.toks) > f.budget {
		return ErrAliasExpansion
	}
	off := f.offset(n)
	switch n.Kind {
	case y.DocumentNode:
		for _, c := range n.Content {
			if err := f.node(c, aliases); err != nil {
				return err
			}
		}
		return nil
	case y.AliasNode:
		if aliases >= maxAliasDepth {
			return ErrAliasDepth
		}
		return f.node(n.Alias, aliases+1)
	case y.MappingNode:
		f.emit(eng.Token{Kind: eng.KindBeginObject, Offset: off})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind == y.AliasNode && k.Alias != nil {
				k = k.Alias
			}
			f.emit(eng.Token{Kind: eng.KindKey, String: k.Value, Offset: f.offset(k)})
			if err := f.node(n.Content[i+1], aliases); err != nil {
				return err
			}
		}
		f.emit(eng.Token{Kind: eng.KindEndObject, Offset: off})
		return nil
	case y.SequenceNode:
		f.emit(eng.Token{Kind: eng.KindBeginArray, Offset: off})
		for _, c := range n.Content {
			if err := f.node(c, aliases); err != nil {
				return err
			}
		}
		f.emit(eng.Token{Kind: eng.KindEndArray, Offset: off})
		return nil
	case y.ScalarNode:
		t, err := scalar(n)
		if err != nil {
			return err
		}
		t.Offset = off
		f.emit(t)
		return nil
	default:
		return fmt.Errorf("yaml: unsupported node kind %d at line %d", n.Kind, n.Line)
	}
}

// scalar resolves a plain scalar by its tag so numbers and booleans keep
// their YAML meaning (0x1F, .inf, yes/no under yaml.v3 rules).
func scalar(n *y.Node) (eng.Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return eng.Token{Kind: eng.KindNull}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return eng.Token{}, err
		}
		return eng.Token{Kind: eng.KindBool, Bool: b}, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			var u uint64
			if err2 := n.Decode(&u); err2 != nil {
				return eng.Token{}, err
			}
			return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatUint(u, 10)}, nil
		}
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatInt(i, 10)}, nil
	case "!!float":
		var fl float64
		if err := n.Decode(&fl); err != nil {
			return eng.Token{}, err
		}
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(fl, 'g', -1, 64)}, nil
	default:
		return eng.Token{Kind: eng.KindString, String: n.Value}, nil
	}
}

func lineStarts(b []byte) []int64 {
	starts := []int64{0}
	for i, c := range b {
		if c == '\n' {
			starts = append(starts, int64(i+1))
		}
	}
	return starts
}
