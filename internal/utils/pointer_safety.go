package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NilIfEmpty maps an absent form or query value to nil so it can be stored as
// NULL.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
