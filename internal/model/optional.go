package model

// Opt is a field that is either absent, present and null, or present with a value.
type Opt[T any] struct {
	Present bool
	Value   *T
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Present: true, Value: &v}
}

func Null[T any]() Opt[T] {
	return Opt[T]{Present: true}
}

// OrZero returns the value, or the zero value when absent or null.
func (o Opt[T]) OrZero() T {
	var zero T
	if o.Value == nil {
		return zero
	}
	return *o.Value
}
