// Package msgpack provides a streaming token source for MessagePack input
// backed by github.com/vmihailenco/msgpack/v5. Map entries are produced in
// wire order; non-string map keys are rendered with fmt.
package msgpack

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	mp "github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/reoring/resilient"
	eng "github.com/reoring/resilient/internal/engine"
)

// Source returns a resilient.Source reading MessagePack from r.
func Source(r io.Reader) resilient.Source { return resilient.SourceFromEngine(NewReader(r)) }

// Bytes returns a resilient.Source reading MessagePack from b.
func Bytes(b []byte) resilient.Source { return resilient.SourceFromEngine(NewBytes(b)) }

type frame struct {
	object    bool
	remaining int
	wantKey   bool
}

type source struct {
	cr    *countingReader
	dec   *mp.Decoder
	stack []frame
	last  int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for MessagePack.
func NewReader(r io.Reader) eng.TokenSource {
	cr := &countingReader{r: bufio.NewReader(r)}
	return &source{cr: cr, dec: mp.NewDecoder(cr), last: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for MessagePack.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) Location() int64 { return s.last }

func (s *source) NextToken() (eng.Token, error) {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.remaining == 0 {
			kind := eng.KindEndArray
			if top.object {
				kind = eng.KindEndObject
			}
			s.stack = s.stack[:n-1]
			s.valueDone()
			return eng.Token{Kind: kind, Offset: s.cr.n}, nil
		}
		if top.object && top.wantKey {
			return s.key()
		}
	}
	return s.value()
}

// valueDone accounts for a finished value in the enclosing container.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		top.remaining--
		if top.object {
			top.wantKey = true
		}
	}
}

func (s *source) key() (eng.Token, error) {
	off := s.cr.n
	v, err := s.dec.DecodeInterfaceLoose()
	if err != nil {
		return eng.Token{}, unexpectedEOF(err)
	}
	s.stack[len(s.stack)-1].wantKey = false
	s.last = off
	k, ok := v.(string)
	if !ok {
		k = fmt.Sprint(v)
	}
	return eng.Token{Kind: eng.KindKey, String: k, Offset: off}, nil
}

func (s *source) value() (eng.Token, error) {
	off := s.cr.n
	c, err := s.dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) && len(s.stack) == 0 {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, unexpectedEOF(err)
	}
	s.last = off
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := s.dec.DecodeMapLen()
		if err != nil {
			return eng.Token{}, unexpectedEOF(err)
		}
		s.stack = append(s.stack, frame{object: true, remaining: n, wantKey: true})
		return eng.Token{Kind: eng.KindBeginObject, Offset: off}, nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := s.dec.DecodeArrayLen()
		if err != nil {
			return eng.Token{}, unexpectedEOF(err)
		}
		s.stack = append(s.stack, frame{remaining: n})
		return eng.Token{Kind: eng.KindBeginArray, Offset: off}, nil
	case msgpcode.IsBin(c):
		// DecodeInterfaceLoose hands bin payloads back as string.
		b, err := s.dec.DecodeBytes()
		if err != nil {
			return eng.Token{}, unexpectedEOF(err)
		}
		s.valueDone()
		return eng.Token{Kind: eng.KindString, String: base64.StdEncoding.EncodeToString(b), Offset: off}, nil
	}

	v, err := s.dec.DecodeInterfaceLoose()
	if err != nil {
		return eng.Token{}, unexpectedEOF(err)
	}
	s.valueDone()
	tok := eng.Token{Offset: off}
	switch x := v.(type) {
	case nil:
		tok.Kind = eng.KindNull
	case bool:
		tok.Kind, tok.Bool = eng.KindBool, x
	case int64:
		tok.Kind, tok.Number = eng.KindNumber, strconv.FormatInt(x, 10)
	case uint64:
		tok.Kind, tok.Number = eng.KindNumber, strconv.FormatUint(x, 10)
	case float64:
		tok.Kind, tok.Number = eng.KindNumber, strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		tok.Kind, tok.Number = eng.KindNumber, strconv.FormatFloat(float64(x), 'g', -1, 32)
	case string:
		tok.Kind, tok.String = eng.KindString, x
	case time.Time:
		tok.Kind, tok.String = eng.KindString, x.UTC().Format(time.RFC3339Nano)
	default:
		return eng.Token{}, fmt.Errorf("msgpack: unsupported value %T at offset %d", v, off)
	}
	return tok, nil
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// countingReader tracks consumed bytes. It implements io.ByteScanner so the
// msgpack decoder reads through it without adding its own buffer.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (c *countingReader) UnreadByte() error {
	if err := c.r.UnreadByte(); err != nil {
		return err
	}
	c.n--
	return nil
}
