package edge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeErr(t *testing.T) {
	assert.NoError(t, Ok.Err())
	assert.ErrorIs(t, ErrorInvalidArgument.Err(), ErrInvalidArgument)
	assert.ErrorIs(t, ErrorConnectFailure.Err(), ErrConnectFailure)
	assert.ErrorIs(t, ErrorNoVideoID.Err(), ErrNoVideoID)

	err := ErrorCode(99).Err()
	assert.EqualError(t, err, "edge: unknown error, code 99")
	assert.Error(t, ErrorCode(-2).Err())

	for c := ErrorInvalidArgument; c <= ErrorConnectFailure; c++ {
		err := c.Err()
		assert.Error(t, err)
		for d := ErrorInvalidArgument; d <= ErrorConnectFailure; d++ {
			if d != c {
				assert.False(t, errors.Is(err, d.Err()), "%d aliases %d", c, d)
			}
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "ok", Ok.String())
	assert.Equal(t, "edge: request has timed out", ErrorRequestTimeout.String())
}
