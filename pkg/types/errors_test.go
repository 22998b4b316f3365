package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeRoundTrip(t *testing.T) {
	for _, err := range []error{
		ErrInvalidPage,
		ErrInvalidPageSize,
		ErrStatusRequired,
		ErrInvalidStatus,
		ErrInvalidRequest,
		ErrNotFound,
	} {
		code := ErrorCode(err)
		assert.NotEqual(t, CodeInternal, code, err.Error())
		assert.Same(t, err, ErrorForCode(code))
	}
}

func TestErrorCodeWrapped(t *testing.T) {
	_, err := ParseStatus("Archived")
	assert.Equal(t, CodeInvalidStatus, ErrorCode(err))
	assert.Equal(t, CodeNotFound, ErrorCode(fmt.Errorf("update 7: %w", ErrNotFound)))
	assert.Equal(t, CodeInvalidRequest, ErrorCode(fmt.Errorf("%w: bad id", ErrValidation)))
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("disk full")))
	assert.Nil(t, ErrorForCode("bogus"))
}

func TestRemoteError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("list: %w", &RemoteError{Op: "list cases", Err: cause})
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")

	var re *RemoteError
	withStatus := &RemoteError{Op: "update status", StatusCode: 502, Reason: "Bad Gateway", Body: "upstream down"}
	assert.True(t, errors.As(error(withStatus), &re))
	assert.Equal(t, "update status failed: 502 Bad Gateway. upstream down", withStatus.Error())
	assert.NotErrorIs(t, withStatus, ErrValidation)
}
