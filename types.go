package resilient

import "log/slog"

// Strictness configures structural enforcement while the document is read.
type Strictness struct {
	OnDuplicateKey Severity // Ignore, Warn (logged) or Error (aborts the decode).
}

// Severity expresses the severity level for structural issues.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	// KeyStrategy maps document keys before struct field lookup, both for
	// ObjectDecoder.Field and for the json tags seen by Decode/Via. Map
	// entries decoded through Map/OptionalMap keep the document spelling.
	KeyStrategy KeyStrategy
	// Logger receives recovery and misuse diagnostics. Defaults to the
	// "resilient" component logger.
	Logger     *slog.Logger
	Strictness Strictness
	MaxDepth   int   // 0 = unlimited
	MaxBytes   int64 // 0 = unlimited; requires a source that reports offsets
}

// lastOptions returns the last element of opts, mirroring the variadic
// options convention used by the entry points.
func lastOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[len(opts)-1]
}
