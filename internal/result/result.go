// Package result provides the success/failure container returned by every
// use-case and repository operation.
//
// A Result holds either a value or a failure message, never both. Callers
// branch on IsFailure before touching either side:
//
//	res := uc.Execute(ctx, req)
//	if res.IsFailure() {
//		return res.ErrorMessage()
//	}
//	book := res.Value()
//
// Reading the value of a failure, or the message of a success, is a
// programming error and panics with ErrInvariantViolation.
package result

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// ErrInvariantViolation is the panic value wrapped when a Result is read
// from the wrong side.
var ErrInvariantViolation = errors.New("result invariant violation")

// Kind classifies a failure so transports can map it to a status code.
type Kind string

const (
	KindNone         Kind = ""
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindUnauthorized Kind = "unauthorized"
	KindConflict     Kind = "conflict"
	KindTransport    Kind = "transport"
	KindServer       Kind = "server"
	KindInternal     Kind = "internal"
)

// Result is an immutable success/failure value.
type Result[T any] struct {
	ok    bool
	value T
	msg   string
	kind  Kind
}

// Success wraps a value.
func Success[T any](value T) Result[T] {
	return Result[T]{ok: true, value: value}
}

// Failure builds an internal failure with the given message.
func Failure[T any](message string) Result[T] {
	return Fail[T](KindInternal, message)
}

// Fail builds a failure of a specific kind.
func Fail[T any](kind Kind, message string) Result[T] {
	if kind == KindNone {
		kind = KindInternal
	}
	return Result[T]{msg: message, kind: kind}
}

// Invalid builds a validation failure.
func Invalid[T any](message string) Result[T] {
	return Fail[T](KindValidation, message)
}

// NotFound builds a not-found failure.
func NotFound[T any](message string) Result[T] {
	return Fail[T](KindNotFound, message)
}

// Propagate re-types a failure, keeping its kind and message.
func Propagate[U, T any](r Result[T]) Result[U] {
	if r.ok {
		panic(fmt.Errorf("%w: cannot propagate a successful result", ErrInvariantViolation))
	}
	return Result[U]{msg: r.msg, kind: r.kind}
}

func (r Result[T]) IsSuccess() bool { return r.ok }

func (r Result[T]) IsFailure() bool { return !r.ok }

// Value returns the success value. Panics on a failure.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Errorf("%w: cannot get value from failed result", ErrInvariantViolation))
	}
	return r.value
}

// ErrorMessage returns the failure message. Panics on a success.
func (r Result[T]) ErrorMessage() string {
	if r.ok {
		panic(fmt.Errorf("%w: cannot get error from successful result", ErrInvariantViolation))
	}
	return r.msg
}

// Kind returns the failure kind, or KindNone for a success.
func (r Result[T]) Kind() Kind {
	return r.kind
}

// String is meant for logs.
func (r Result[T]) String() string {
	if r.ok {
		return fmt.Sprintf("success(%v)", r.value)
	}
	return fmt.Sprintf("failure(%s: %s)", r.kind, r.msg)
}

// Recover converts a panic raised inside a use-case into a failure with a
// fixed message, logging the panic value and stack. It must be deferred
// directly:
//
//	defer result.Recover(&res, "Failed to create book")
func Recover[T any](res *Result[T], message string) {
	if rec := recover(); rec != nil {
		logrus.WithFields(logrus.Fields{
			"panic": fmt.Sprint(rec),
			"stack": string(debug.Stack()),
		}).Error(message)
		*res = Failure[T](message)
	}
}
