package rctx

import (
	"context"
)

// slot is a single value holder recording the retry context which is currently ambient on the goroutine owning it.
//
// NOTE: A slot is deliberately unsynchronized. Each worker goroutine attaches its own slot to its own
// 'context.Context' chain and is the only goroutine which ever reads or writes it, so confinement, not locking, is
// the safety mechanism.
type slot struct {
	current Context
}

type slotKey struct{}

// WithSlot returns a copy of the given context carrying a fresh, empty ambient slot. Every worker goroutine which
// executes delegated work should derive its own slot exactly once, before processing its first task.
func WithSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, &slot{})
}

// HasSlot returns a boolean indicating whether the given context carries an ambient slot.
func HasSlot(ctx context.Context) bool {
	return lookup(ctx) != nil
}

// Current returns the retry context currently installed in the calling goroutine's slot, or nil when the slot is empty
// or the given context carries no slot at all.
func Current(ctx context.Context) Context {
	s := lookup(ctx)
	if s == nil {
		return nil
	}

	return s.current
}

// Set replaces the value held by the calling goroutine's slot, a nil value empties the slot. Callers which need the
// previous value must fetch it with 'Current' beforehand. Calling 'Set' on a context without a slot is a no-op.
func Set(ctx context.Context, c Context) {
	s := lookup(ctx)
	if s == nil {
		return
	}

	s.current = c
}

func lookup(ctx context.Context) *slot {
	s, _ := ctx.Value(slotKey{}).(*slot)
	return s
}
