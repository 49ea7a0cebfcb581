package resilient

// OutcomeKind classifies how a resilient field obtained its value.
type OutcomeKind uint8

const (
	DecodedSuccessfully OutcomeKind = iota // Value came from the document.
	KeyNotFound                            // Key absent; fallback used, nothing recorded.
	ValueWasNil                            // Value null; fallback used, nothing recorded.
	RecoveredFromError                     // Decode failed; fallback used, error recorded.
)

func (k OutcomeKind) String() string {
	switch k {
	case DecodedSuccessfully:
		return "decoded"
	case KeyNotFound:
		return "key_not_found"
	case ValueWasNil:
		return "value_was_nil"
	case RecoveredFromError:
		return "recovered"
	default:
		return "unknown"
	}
}

// Outcome is the result classification of one resilient field. Err and
// WasReported are only meaningful for RecoveredFromError.
type Outcome struct {
	Kind OutcomeKind
	Err  error
	// WasReported is false when the error was kept away from the session
	// reporter because no path-bearing decoder existed for it.
	WasReported bool
}

func (o Outcome) String() string {
	if o.Kind == RecoveredFromError && o.Err != nil {
		return o.Kind.String() + ": " + o.Err.Error()
	}
	return o.Kind.String()
}

// Presence is a bit set describing what the document contained for a field.
type Presence uint8

const (
	PresenceSeen            Presence = 1 << iota // Field appeared in the input.
	PresenceWasNull                              // Field value was null.
	PresenceFallbackApplied                      // Fallback value was substituted.
)

// Presence projects the outcome onto presence flags.
func (o Outcome) Presence() Presence {
	switch o.Kind {
	case DecodedSuccessfully:
		return PresenceSeen
	case KeyNotFound:
		return PresenceFallbackApplied
	case ValueWasNil:
		return PresenceSeen | PresenceWasNull | PresenceFallbackApplied
	default:
		// Recovered sub-decoder anomalies never reached the value; still the key was looked up.
		return PresenceSeen | PresenceFallbackApplied
	}
}

var (
	outcomeSuccess = Outcome{Kind: DecodedSuccessfully}
	outcomeMissing = Outcome{Kind: KeyNotFound}
	outcomeNil     = Outcome{Kind: ValueWasNil}
)

func recovered(err error, reported bool) Outcome {
	return Outcome{Kind: RecoveredFromError, Err: err, WasReported: reported}
}
