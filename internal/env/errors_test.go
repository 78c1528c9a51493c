package env

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Messages(t *testing.T) {
	assert.Equal(t,
		"BAD_STATUS: https://a.example/x.json returned status 404",
		NewStatusError("https://a.example/x.json", 404).Error())
	assert.Equal(t,
		"FETCH_FAILED: https://a.example/x.json: boom",
		NewFetchError("https://a.example/x.json", errors.New("boom")).Error())
	assert.Equal(t,
		"STORAGE_DECODE: key profile: bad",
		NewStorageDecodeError("profile", errors.New("bad")).Error())
}

func TestError_ClassifiersSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("get catalog: %w", NewDecodeError("u", errors.New("x")))

	assert.True(t, IsTransportError(wrapped))
	assert.False(t, IsInvalidRequest(wrapped))
	assert.Equal(t, ErrCodeDecode, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewFetchError("u", cause)
	assert.ErrorIs(t, err, cause)
}
