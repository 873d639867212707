package vortexerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesStack(t *testing.T) {
	err := New(ErrorTypeInternal, "something broke")
	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeInternal, err.Type)
	assert.Equal(t, "internal: something broke", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestWrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, ErrorTypeData, "processing failed")
	require.NotNil(t, err)
	assert.Equal(t, "data: processing failed: root cause", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWrapPreservesOriginalStack(t *testing.T) {
	inner := New(ErrorTypeValidation, "bad input")
	outer := Wrap(inner, ErrorTypeInternal, "layer above")
	assert.Equal(t, inner.Stack, outer.Stack)

	var typed *Error
	require.True(t, errors.As(outer.Unwrap(), &typed))
	assert.Equal(t, ErrorTypeValidation, typed.Type)
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeInternal, "count mismatch").
		WithDetail("expected", 10).
		WithDetail("got", 7)
	assert.Equal(t, 10, err.Details["expected"])
	assert.Equal(t, 7, err.Details["got"])
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeCapability, "not supported")
	assert.True(t, IsType(err, ErrorTypeCapability))
	assert.False(t, IsType(err, ErrorTypeInternal))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeCapability))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeInternal))
}
