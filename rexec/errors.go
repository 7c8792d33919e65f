package rexec

import "errors"

var (
	// ErrNilTask is returned when attempting to wrap or submit a nil task; misconfiguration surfaces at wrap time,
	// never at first execution.
	ErrNilTask = errors.New("task must not be nil")

	// ErrNilDelegate is returned when constructing a decorator around a nil underlying surface.
	ErrNilDelegate = errors.New("delegate must not be nil")

	// ErrNilAugment is returned when constructing a decorator with a nil augment function.
	ErrNilAugment = errors.New("augment must not be nil")

	// ErrFutureCancelled is returned when waiting on a future which was cancelled before its task ever ran.
	ErrFutureCancelled = errors.New("future was cancelled")
)
