// Package gojson provides a token source backed by goccy/go-json.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/resilient"
	eng "github.com/reoring/resilient/internal/engine"
)

// Driver returns a resilient.JSONDriver backed by goccy/go-json.
func Driver() resilient.JSONDriver { return driverGoJSON{} }

type driverGoJSON struct{}

func (driverGoJSON) NewReader(r io.Reader) resilient.Source {
	return resilient.SourceFromEngine(NewReader(r))
}
func (driverGoJSON) NewBytes(b []byte) resilient.Source {
	return resilient.SourceFromEngine(NewBytes(b))
}
func (driverGoJSON) Name() string { return "go-json" }

type source struct {
	dec  *j.Decoder
	keys eng.KeyTracker
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// NextToken reports Offset -1: go-json does not expose token positions.
func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return s.keys.Open(true, -1), nil
		case '[':
			return s.keys.Open(false, -1), nil
		case '}':
			return s.keys.Close(true, -1), nil
		default:
			return s.keys.Close(false, -1), nil
		}
	case string:
		return s.keys.String(v, -1), nil
	case bool:
		return s.keys.Scalar(eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}), nil
	case j.Number:
		return s.keys.Scalar(eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}), nil
	case float64:
		return s.keys.Scalar(eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}), nil
	default:
		return s.keys.Scalar(eng.Token{Kind: eng.KindNull, Offset: -1}), nil
	}
}

func (s *source) Location() int64 { return -1 }
