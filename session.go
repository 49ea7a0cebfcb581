package resilient

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	eng "github.com/reoring/resilient/internal/engine"
	"github.com/reoring/resilient/internal/logging"
)

// Session is one decode context. It carries the options every nested
// Decoder sees and an optional ErrorReporter that collects recoveries.
//
// A Session decodes one document at a time; use separate Sessions for
// concurrent decodes. The reporter may be flushed from any goroutine once a
// decode has returned.
type Session struct {
	id     uuid.UUID
	opt    Options
	logger *slog.Logger

	mu       sync.Mutex
	reporter *ErrorReporter
}

// NewSession creates a Session. When several Options are given the last one wins.
func NewSession(opts ...Options) *Session {
	opt := lastOptions(opts)
	if opt.KeyStrategy == nil {
		opt.KeyStrategy = KeysAsIs
	}
	id := uuid.New()
	return &Session{id: id, opt: opt, logger: logging.ForSession(opt.Logger, id)}
}

// ID identifies the session in logs and digests.
func (s *Session) ID() uuid.UUID { return s.id }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

func (s *Session) keyStrategy() KeyStrategy {
	if s == nil || s.opt.KeyStrategy == nil {
		return KeysAsIs
	}
	return s.opt.KeyStrategy
}

// EnableErrorReporting attaches a fresh ErrorReporter to the session and
// returns it. Enabling twice is a misuse: the earlier reporter stops
// receiving errors and its next Digest carries ErrMayBeMissingReportedErrors.
func (s *Session) EnableErrorReporting() *ErrorReporter {
	r := newErrorReporter(s.id)
	s.mu.Lock()
	prev := s.reporter
	s.reporter = r
	s.mu.Unlock()
	if prev != nil {
		prev.markMayBeMissing()
		s.logger.Warn("error reporter replaced; earlier reporter may miss errors")
	}
	return r
}

// Reporter returns the active reporter, or nil when reporting is disabled.
func (s *Session) Reporter() *ErrorReporter {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reporter
}

// report forwards err to the active reporter (no-op without one) and
// returns it normalized to a *DecodeError.
func (s *Session) report(err error, path Path) *DecodeError {
	de := normalizeError(err, path)
	if s == nil {
		return de
	}
	s.logger.Debug("recovered decode error", slog.String("path", path.Pointer()), slog.String("code", de.Kind.Code()))
	if r := s.Reporter(); r != nil {
		r.Report(de, path)
	}
	return de
}

// Decode reads one document from src and hands its root to v. Structural
// problems (syntax, duplicate keys under Error strictness, limits) return
// Issues and abort; errors returned by v propagate unchanged.
func (s *Session) Decode(ctx context.Context, src Source, v Decodable) error {
	if v == nil {
		return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: "nil Decodable"})
	}
	d, err := s.Root(ctx, src)
	if err != nil {
		return err
	}
	return v.DecodeResilient(d)
}

// Root parses src and returns a Decoder at the document root.
func (s *Session) Root(ctx context.Context, src Source) (*Decoder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := s.parse(src)
	if err != nil {
		s.logger.DebugContext(ctx, "document rejected", slog.String("error", err.Error()))
		return nil, err
	}
	return &Decoder{node: root, path: Path{}, sess: s}, nil
}

func (s *Session) parse(src Source) (*eng.Node, error) {
	if src == nil {
		return nil, AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: "nil source"})
	}
	enforced := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: toEngineDup(s.opt.Strictness.OnDuplicateKey),
		MaxDepth:    s.opt.MaxDepth,
		MaxBytes:    s.opt.MaxBytes,
		IssueSink: func(si eng.SimpleIssue) {
			s.logger.Warn("document issue", slog.String("path", si.Path), slog.String("code", si.Code), slog.String("message", si.Message))
		},
	})
	root, err := eng.BuildTree(enforced)
	if err != nil {
		return nil, toIssues(err)
	}
	return root, nil
}

func toIssues(err error) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message})
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err})
}
