package resilient

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyStrategy maps a document object key to the key that struct decode code
// asks for. It affects ObjectDecoder.Has/Field and the object keys Decode
// hands to go-json; RawEntries and the Map/OptionalMap wrappers always
// observe the document spelling.
type KeyStrategy interface {
	FieldKey(documentKey string) string
}

// KeyStrategyFunc adapts a function to KeyStrategy.
type KeyStrategyFunc func(string) string

func (f KeyStrategyFunc) FieldKey(k string) string { return f(k) }

// KeysAsIs uses document keys unchanged.
var KeysAsIs KeyStrategy = KeyStrategyFunc(func(k string) string { return k })

// KeysFromSnakeCase converts snake_case document keys to camelCase
// ("the_number_one" -> "theNumberOne"). Leading and trailing underscores are
// kept; keys without underscores pass through untouched.
var KeysFromSnakeCase KeyStrategy = KeyStrategyFunc(snakeToCamel)

func snakeToCamel(k string) string {
	if !strings.Contains(k, "_") {
		return k
	}
	core := strings.Trim(k, "_")
	if core == "" {
		return k
	}
	start := strings.Index(k, core)
	lead, trail := k[:start], k[start+len(core):]

	// Casers carry transform state and are not safe for concurrent use.
	title := cases.Title(language.Und)
	b := &strings.Builder{}
	b.WriteString(lead)
	first := true
	for _, w := range strings.Split(core, "_") {
		if w == "" {
			continue
		}
		if first {
			b.WriteString(w)
			first = false
			continue
		}
		b.WriteString(title.String(w))
	}
	b.WriteString(trail)
	return b.String()
}
