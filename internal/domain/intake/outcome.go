package intake

// Outcome is the result of a pipeline stage that absorbs its own failures.
// Degraded is set when Value came from a fallback tier; Cause keeps the absorbed error.
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Cause    error
}

func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func Degraded[T any](v T, cause error) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Cause: cause}
}
