//go:build !resilient_release

package resilient

// introspection keeps per-element Results for ArrayValue and MapValue.
// Build with -tags resilient_release to drop them.
const introspection = true
