// Package result carries the outcome of a service operation: either a value
// or a human-readable message tagged with an ErrorType category.
package result

import (
	"fmt"
	"strings"
)

// ErrorType categorizes a failure. The HTTP layer maps each category to a
// status code.
type ErrorType int

const (
	BadRequest ErrorType = iota
	NotFound
	Conflict
	Unauthorized
	Forbidden
	Validation
	InternalError
)

func (t ErrorType) String() string {
	switch t {
	case BadRequest:
		return "bad_request"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case Validation:
		return "validation"
	case InternalError:
		return "internal_error"
	default:
		return fmt.Sprintf("error_type(%d)", int(t))
	}
}

// Result is the outcome of an operation producing a T.
// The zero value is not meaningful; build one with Ok or Fail.
type Result[T any] struct {
	value   T
	message string
	errType ErrorType
	ok      bool
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Fail builds a failed result. A failure without a message is a programming
// error and panics.
func Fail[T any](message string, errType ErrorType) Result[T] {
	mustMessage(message)
	return Result[T]{message: message, errType: errType}
}

// FailFrom carries the failure of r into a result of another value type.
// r must be a failure.
func FailFrom[T, U any](r Result[U]) Result[T] {
	if r.ok {
		panic("result: FailFrom called with a successful result")
	}
	return Result[T]{message: r.message, errType: r.errType}
}

func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the wrapped value, or the zero T for a failure.
func (r Result[T]) Value() T { return r.value }

// Error returns the failure message, or "" for a success.
func (r Result[T]) Error() string { return r.message }

// ErrorType returns the failure category. Only meaningful for failures.
func (r Result[T]) ErrorType() ErrorType { return r.errType }

// Status drops the value and keeps the outcome.
func (r Result[T]) Status() Status {
	return Status{message: r.message, errType: r.errType, ok: r.ok}
}

// OnSuccess runs fn with the value when r succeeded and returns r unchanged.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.ok {
		fn(r.value)
	}
	return r
}

// OnFailure runs fn with the message and category when r failed and returns
// r unchanged.
func (r Result[T]) OnFailure(fn func(message string, errType ErrorType)) Result[T] {
	if !r.ok {
		fn(r.message, r.errType)
	}
	return r
}

// Map transforms the value of a successful result. Failures pass through
// with their message and category intact.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return FailFrom[U](r)
	}
	return Ok(fn(r.value))
}

// AndThen chains a result-producing step onto r. The step is skipped when r
// failed.
func AndThen[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if !r.ok {
		return FailFrom[U](r)
	}
	return fn(r.value)
}

// Status is the outcome of an operation that produces no value.
type Status struct {
	message string
	errType ErrorType
	ok      bool
}

// Success is the successful Status.
func Success() Status { return Status{ok: true} }

// Failure builds a failed Status. An empty message panics.
func Failure(message string, errType ErrorType) Status {
	mustMessage(message)
	return Status{message: message, errType: errType}
}

func (s Status) IsSuccess() bool      { return s.ok }
func (s Status) IsFailure() bool      { return !s.ok }
func (s Status) Error() string        { return s.message }
func (s Status) ErrorType() ErrorType { return s.errType }

// AndThen runs fn only when s succeeded.
func (s Status) AndThen(fn func() Status) Status {
	if !s.ok {
		return s
	}
	return fn()
}

// OnFailure runs fn when s failed and returns s unchanged.
func (s Status) OnFailure(fn func(message string, errType ErrorType)) Status {
	if !s.ok {
		fn(s.message, s.errType)
	}
	return s
}

// Then produces a value-carrying result after a successful Status.
func Then[T any](s Status, fn func() Result[T]) Result[T] {
	if !s.ok {
		return Result[T]{message: s.message, errType: s.errType}
	}
	return fn()
}

// FromStatus attaches value to a successful Status.
func FromStatus[T any](s Status, value T) Result[T] {
	if !s.ok {
		return Result[T]{message: s.message, errType: s.errType}
	}
	return Ok(value)
}

// SuccessIf succeeds when cond holds and fails with message otherwise.
func SuccessIf(cond bool, message string, errType ErrorType) Status {
	if cond {
		return Success()
	}
	return Failure(message, errType)
}

// FailureIf fails with message when cond holds.
func FailureIf(cond bool, message string, errType ErrorType) Status {
	return SuccessIf(!cond, message, errType)
}

func mustMessage(message string) {
	if strings.TrimSpace(message) == "" {
		panic("result: failure requires a non-empty message")
	}
}
