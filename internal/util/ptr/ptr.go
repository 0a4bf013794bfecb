// Package ptr provides helper functions for creating pointers to primitive types.
package ptr

// To returns a pointer to the given value, for Kubernetes object fields
// that take pointers (*bool, *int32, *int64). The object builders reach it
// through Bool, for an owner reference's Controller flag.
func To[T any](v T) *T { return &v }

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return To(b) }
