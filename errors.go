package resilient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/resilient/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Recoverable decode failures (DecodeError kinds).
	CodeTypeMismatch      = "type_mismatch"
	CodeMissingValue      = "missing_value"
	CodeDataCorrupted     = "data_corrupted"
	CodeUnknownNovelValue = "unknown_novel_value"
	CodeCustom            = "custom"
	// Structural failures that abort a whole decode.
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTruncated    = "truncated"
)

// ErrorKind classifies a DecodeError.
type ErrorKind uint8

const (
	KindTypeMismatch      ErrorKind = iota // Value has the wrong shape for the requested type.
	KindMissingValue                       // Key absent or value null where a value was required.
	KindDataCorrupted                      // Well-typed but invalid (out of range, frozen enum member unknown).
	KindUnknownNovelValue                  // Well-typed, unrecognized enum raw value; forward-compatible.
	KindCustom                             // Wraps an arbitrary error from user decode code.
)

// Code returns the stable issue code for the kind.
func (k ErrorKind) Code() string {
	switch k {
	case KindTypeMismatch:
		return CodeTypeMismatch
	case KindMissingValue:
		return CodeMissingValue
	case KindDataCorrupted:
		return CodeDataCorrupted
	case KindUnknownNovelValue:
		return CodeUnknownNovelValue
	default:
		return CodeCustom
	}
}

func (k ErrorKind) String() string { return k.Code() }

// DecodeError is a recoverable failure at a single document position.
// The constructors set every field; treat received values as read-only.
// Digest accessors return copies, so edits never reach the collected tree.
type DecodeError struct {
	Kind     ErrorKind
	Path     Path
	Expected string // expected type for TypeMismatch and MissingValue
	Detail   string
	Raw      any   // offending raw value for UnknownNovelValue and DataCorrupted
	Cause    error // wrapped error for Custom
}

func (e *DecodeError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s at %s", e.Kind.Code(), e.Path.Pointer())
	if msg := e.message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

// message renders the localized, path-less description.
func (e *DecodeError) message() string {
	data := map[string]string{}
	if e.Expected != "" {
		data["expected"] = e.Expected
	}
	if e.Raw != nil {
		data["raw"] = fmt.Sprint(e.Raw)
	}
	msg := i18n.T(e.Kind.Code(), data)
	switch {
	case e.Detail != "":
		msg += " (" + e.Detail + ")"
	case e.Cause != nil:
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) clone() *DecodeError {
	c := *e
	c.Path = e.Path.Clone()
	return &c
}

// Issue projects the error into the Issue model.
func (e *DecodeError) Issue() Issue {
	return Issue{Path: e.Path.Pointer(), Code: e.Kind.Code(), Message: e.message(), Cause: e.Cause}
}

// TypeMismatch builds a KindTypeMismatch error.
func TypeMismatch(path Path, expected, detail string) *DecodeError {
	return &DecodeError{Kind: KindTypeMismatch, Path: path, Expected: expected, Detail: detail}
}

// MissingValue builds a KindMissingValue error.
func MissingValue(path Path, expected, detail string) *DecodeError {
	return &DecodeError{Kind: KindMissingValue, Path: path, Expected: expected, Detail: detail}
}

// DataCorrupted builds a KindDataCorrupted error.
func DataCorrupted(path Path, detail string) *DecodeError {
	return &DecodeError{Kind: KindDataCorrupted, Path: path, Detail: detail}
}

// DataCorruptedRaw builds a KindDataCorrupted error that keeps the
// offending raw value.
func DataCorruptedRaw(path Path, detail string, raw any) *DecodeError {
	return &DecodeError{Kind: KindDataCorrupted, Path: path, Detail: detail, Raw: raw}
}

// UnknownNovelValue builds a KindUnknownNovelValue error for raw.
func UnknownNovelValue(path Path, raw any) *DecodeError {
	return &DecodeError{Kind: KindUnknownNovelValue, Path: path, Raw: raw}
}

// Custom wraps err as a KindCustom error.
func Custom(path Path, err error) *DecodeError {
	return &DecodeError{Kind: KindCustom, Path: path, Cause: err}
}

// AsDecodeError extracts a *DecodeError from err using errors.As.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsUnknownNovelValue reports whether err is an UnknownNovelValue DecodeError.
func IsUnknownNovelValue(err error) bool {
	de, ok := AsDecodeError(err)
	return ok && de.Kind == KindUnknownNovelValue
}

// normalizeError returns err as a *DecodeError, wrapping foreign errors as Custom at path.
func normalizeError(err error, path Path) *DecodeError {
	if de, ok := AsDecodeError(err); ok {
		return de
	}
	return Custom(path, err)
}

// ErrMayBeMissingReportedErrors marks a Digest whose reporter was replaced on
// its Session while decoding, so errors after the replacement went elsewhere.
var ErrMayBeMissingReportedErrors = errors.New("resilient: another error reporter was enabled on this session; errors may be missing")

// Issue represents a single structural or recovered error entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
