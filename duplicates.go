package resilient

import (
	"errors"
	"io"

	eng "github.com/reoring/resilient/internal/engine"
)

// DuplicateKeys scans src for keys repeated within one object and returns
// them as duplicate_key issues, up to maxIssues (negative means no limit).
// The document is not kept in memory. Syntax errors abort the scan.
func DuplicateKeys(src Source, maxIssues int) (Issues, error) {
	if src == nil {
		return nil, AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: "nil source"})
	}
	var found []eng.SimpleIssue
	ts := eng.WrapWithEnforcement(engineTokenSource(src), eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   func(si eng.SimpleIssue) { found = append(found, si) },
	})
	depth, seen := 0, false
	for maxIssues < 0 || len(found) < maxIssues {
		tok, err := ts.NextToken()
		if errors.Is(err, io.EOF) && (depth > 0 || !seen) {
			err = io.ErrUnexpectedEOF
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fromEngineIssues(found), toIssues(err)
		}
		seen = true
		switch tok.Kind {
		case eng.KindBeginObject, eng.KindBeginArray:
			depth++
		case eng.KindEndObject, eng.KindEndArray:
			depth--
		}
	}
	if maxIssues >= 0 && len(found) > maxIssues {
		found = found[:maxIssues]
	}
	return fromEngineIssues(found), nil
}

func toEngineDup(s Severity) eng.DuplicateStrictness {
	switch s {
	case Error:
		return eng.DupError
	case Warn:
		return eng.DupWarn
	default:
		return eng.DupIgnore
	}
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: s.Message})
	}
	return iss
}
