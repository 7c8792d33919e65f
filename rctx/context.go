// Package rctx exposes the retry context type along with the ambient registry used to make a context visible to the
// goroutine currently executing a piece of delegated work.
package rctx

import (
	"fmt"

	"github.com/google/uuid"
)

// Context represents the state of a single logical retry, it's treated as an opaque handle by the propagation layer
// which only ever stores/retrieves references to it.
type Context interface {
	// ID returns a unique identifier for this context, useful when correlating log statements.
	ID() string

	// Attempt returns the current attempt number, starting at one.
	Attempt() int

	// Parent returns the context this context was derived from, or nil for a root context.
	Parent() Context

	// Attribute returns the value stored against the given key, and a boolean indicating whether it was present.
	Attribute(key string) (any, bool)

	// SetAttribute stores the given value against the given key, replacing any existing value.
	SetAttribute(key string, value any)

	// RemoveAttribute removes the value stored against the given key, returning a boolean indicating whether it was
	// present.
	RemoveAttribute(key string) bool

	fmt.Stringer
}

// retryContext is the default 'Context' implementation.
type retryContext struct {
	id         string
	attempt    int
	parent     Context
	attributes map[string]any
}

var _ Context = (*retryContext)(nil)

// New returns a new root retry context on its first attempt.
func New() Context {
	return &retryContext{id: uuid.NewString(), attempt: 1}
}

// NewChild returns a new retry context derived from the given parent; used when a retryable block is entered whilst
// another retryable block is already in flight.
func NewChild(parent Context) Context {
	return &retryContext{id: uuid.NewString(), attempt: 1, parent: parent}
}

func (r *retryContext) ID() string {
	return r.id
}

func (r *retryContext) Attempt() int {
	return r.attempt
}

func (r *retryContext) advance() {
	r.attempt++
}

// Advance increments the attempt counter of contexts created by this package, returning a boolean indicating whether
// the given context was one. Expected to be driven by the retry policy layer, never by the propagation layer.
func Advance(c Context) bool {
	ctx, ok := c.(*retryContext)
	if ok {
		ctx.advance()
	}

	return ok
}

func (r *retryContext) Parent() Context {
	return r.parent
}

func (r *retryContext) Attribute(key string) (any, bool) {
	value, ok := r.attributes[key]
	return value, ok
}

func (r *retryContext) SetAttribute(key string, value any) {
	if r.attributes == nil {
		r.attributes = make(map[string]any)
	}

	r.attributes[key] = value
}

func (r *retryContext) RemoveAttribute(key string) bool {
	_, ok := r.attributes[key]
	delete(r.attributes, key)

	return ok
}

func (r *retryContext) String() string {
	return fmt.Sprintf("retry context %s (attempt %d)", r.id, r.attempt)
}
