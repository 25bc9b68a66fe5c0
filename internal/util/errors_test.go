package util

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchErrorKinds(t *testing.T) {
	failure := NewFetchFailure(io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(failure, ErrFetchFailure))
	assert.True(t, errors.Is(failure, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(failure, ErrMalformedResponse))
	assert.Equal(t, "fetch failure: unexpected EOF", failure.Error())

	malformed := NewMalformedResponse("missing %q", "wait_time")
	assert.True(t, errors.Is(malformed, ErrMalformedResponse))
	assert.False(t, errors.Is(malformed, ErrFetchFailure))
	assert.Contains(t, malformed.Error(), `missing "wait_time"`)

	var fe *FetchError
	wrapped := errors.Join(errors.New("context"), malformed)
	assert.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, ErrMalformedResponse, fe.Kind)
}
