package catalog

// Status classifies the outcome of an adapter call.
type Status int

const (
	// StatusOK means the value is valid.
	StatusOK Status = iota
	// StatusNotFound means the catalog has no such record. Cached.
	StatusNotFound
	// StatusTransient means the catalog could not be reached or answered badly. Never cached.
	StatusTransient
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Result is the outcome of an adapter call. Err is set only for StatusTransient.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK wraps a successful value.
func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

// NotFound is the result for a missing record.
func NotFound[T any]() Result[T] {
	return Result[T]{Status: StatusNotFound}
}

// Transient wraps a failure that may go away on retry.
func Transient[T any](err error) Result[T] {
	return Result[T]{Status: StatusTransient, Err: err}
}

// IsOK reports whether the result carries a value.
func (r Result[T]) IsOK() bool { return r.Status == StatusOK }
