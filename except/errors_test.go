package except_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyjs/corevm/except"
)

func TestECMAErrorMessage(t *testing.T) {
	e := except.New(except.TypeError, "cannot read property %q of undefined", "x")
	assert.Equal(t, "TypeError: cannot read property \"x\" of undefined", e.Error())
}

func TestECMAErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	e := except.Wrap(except.SyntaxError, cause, "parse failed")
	require.ErrorIs(t, e, cause)
}

func TestUncatchableKinds(t *testing.T) {
	assert.True(t, except.OutOfMemory.Uncatchable())
	assert.True(t, except.Terminated.Uncatchable())
	assert.False(t, except.TypeError.Uncatchable())
}

func TestErrorSentinelsAreOfMemoryKind(t *testing.T) {
	require.ErrorIs(t, except.ErrOutOfMemory, except.ErrOutOfMemory)
	assert.Equal(t, except.OutOfMemory, except.ErrOutOfMemory.Kind)
}
