//go:build resilient_release

package resilient

const introspection = false
