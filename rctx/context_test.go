package rctx

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New()

	require.NotEmpty(t, c.ID())
	require.Equal(t, 1, c.Attempt())
	require.Nil(t, c.Parent())
}

func TestNewChild(t *testing.T) {
	var (
		parent = New()
		child  = NewChild(parent)
	)

	require.NotEqual(t, parent.ID(), child.ID())
	require.Equal(t, 1, child.Attempt())
	require.Same(t, parent, child.Parent())
}

func TestAdvance(t *testing.T) {
	c := New()

	require.True(t, Advance(c))
	require.True(t, Advance(c))
	require.Equal(t, 3, c.Attempt())
}

func TestAdvanceForeignImplementation(t *testing.T) {
	require.False(t, Advance(foreignContext{}))
}

func TestAttributes(t *testing.T) {
	c := New()

	_, ok := c.Attribute("key")
	require.False(t, ok)

	c.SetAttribute("key", 42)

	value, ok := c.Attribute("key")
	require.True(t, ok)
	require.Equal(t, 42, value)

	c.SetAttribute("key", "replaced")

	value, ok = c.Attribute("key")
	require.True(t, ok)
	require.Equal(t, "replaced", value)

	require.True(t, c.RemoveAttribute("key"))
	require.False(t, c.RemoveAttribute("key"))
}

func TestString(t *testing.T) {
	c := New()
	require.Equal(t, fmt.Sprintf("retry context %s (attempt 1)", c.ID()), c.String())
}

// foreignContext is a 'Context' implementation from outside this package; 'Advance' should leave it alone.
type foreignContext struct{}

func (foreignContext) ID() string                   { return "foreign" }
func (foreignContext) Attempt() int                 { return 1 }
func (foreignContext) Parent() Context              { return nil }
func (foreignContext) Attribute(string) (any, bool) { return nil, false }
func (foreignContext) SetAttribute(string, any)     {}
func (foreignContext) RemoveAttribute(string) bool  { return false }
func (foreignContext) String() string               { return "foreign" }
