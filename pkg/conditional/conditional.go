// package conditional
//
// small generic helpers for picking values
package conditional

// Ternary : returns a if cond is true otherwise b
func Ternary[T any](cond bool, a T, b T) T {
	if cond {
		return a
	}
	return b
}

// Coalesce : returns the first value that is not the zero value for T
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
