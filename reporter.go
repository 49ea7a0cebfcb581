package resilient

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrorReporter collects every error recovered by resilient wrappers during
// the decodes of one Session, keyed by document path. Obtain one with
// Session.EnableErrorReporting.
type ErrorReporter struct {
	sessionID uuid.UUID

	mu           sync.Mutex
	tree         *ErrorTree
	mayBeMissing bool
}

func newErrorReporter(sessionID uuid.UUID) *ErrorReporter {
	return &ErrorReporter{sessionID: sessionID, tree: NewErrorTree()}
}

// Report records err at path. Foreign errors are wrapped as Custom.
func (r *ErrorReporter) Report(err error, path Path) {
	if err == nil {
		return
	}
	de := normalizeError(err, path)
	r.mu.Lock()
	r.tree.Insert(de, path.Clone())
	r.mu.Unlock()
}

// Pending returns the number of errors collected since the last Flush.
func (r *ErrorReporter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree.Len()
}

func (r *ErrorReporter) markMayBeMissing() {
	r.mu.Lock()
	r.mayBeMissing = true
	r.mu.Unlock()
}

// Flush hands out everything collected since the previous Flush and resets
// the reporter. It returns nil when nothing was collected.
func (r *ErrorReporter) Flush() *Digest {
	r.mu.Lock()
	tree, missing := r.tree, r.mayBeMissing
	r.tree, r.mayBeMissing = NewErrorTree(), false
	r.mu.Unlock()

	if tree.Len() == 0 && !missing {
		return nil
	}
	if missing {
		tree.Insert(Custom(Path{}, ErrMayBeMissingReportedErrors), Path{})
	}
	return &Digest{sessionID: r.sessionID, tree: tree, mayBeMissing: missing}
}

// Digest is an immutable snapshot of the errors collected between two flushes.
// The read methods accept a nil Digest, as returned by an empty Flush.
type Digest struct {
	sessionID    uuid.UUID
	tree         *ErrorTree
	mayBeMissing bool
}

// SessionID identifies the session the errors came from.
func (d *Digest) SessionID() uuid.UUID {
	if d == nil {
		return uuid.Nil
	}
	return d.sessionID
}

// MayBeMissingErrors reports whether another reporter replaced this one on
// its session before the flush.
func (d *Digest) MayBeMissingErrors() bool { return d != nil && d.mayBeMissing }

// Errors returns copies of the collected errors in path order.
// UnknownNovelValue errors are left out unless includeUnknownNovelValues is set.
func (d *Digest) Errors(includeUnknownNovelValues bool) []*DecodeError {
	return cloneErrors(d.view(includeUnknownNovelValues).Errors())
}

// ErrorsAt returns copies of the errors collected exactly at path.
func (d *Digest) ErrorsAt(path Path, includeUnknownNovelValues bool) []*DecodeError {
	return cloneErrors(d.view(includeUnknownNovelValues).At(path))
}

func cloneErrors(errs []*DecodeError) []*DecodeError {
	for i, e := range errs {
		errs[i] = e.clone()
	}
	return errs
}

// Issues projects Errors into the Issue model.
func (d *Digest) Issues(includeUnknownNovelValues bool) Issues {
	errs := d.Errors(includeUnknownNovelValues)
	if len(errs) == 0 {
		return nil
	}
	out := make(Issues, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Issue())
	}
	return out
}

// PrettyPrint renders the errors grouped by path with deterministic ordering.
func (d *Digest) PrettyPrint(includeUnknownNovelValues bool) string {
	b := &strings.Builder{}
	_ = d.view(includeUnknownNovelValues).Format(b)
	return b.String()
}

func (d *Digest) String() string { return d.PrettyPrint(false) }

func (d *Digest) view(includeUnknownNovelValues bool) *ErrorTree {
	if d == nil {
		return NewErrorTree()
	}
	if includeUnknownNovelValues {
		return d.tree
	}
	return d.tree.Filter(func(e *DecodeError) bool { return e.Kind != KindUnknownNovelValue })
}
