package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudRegisterHandler(t *testing.T) {
	fb, inv := installFake(t)

	assert.Equal(t, ErrorInvalidArgument, CloudRegisterCustomMsgHandler(0))
	assert.Nil(t, fb.cloud.handler)

	require.Equal(t, Ok, CloudRegisterCustomMsgHandler(0x1000))
	require.NotNil(t, fb.cloud.handler)
	fb.cloud.handler([]byte(`{"cmd":"ping"}`))
	require.Len(t, inv.messages, 1)
	assert.Equal(t, `{"cmd":"ping"}`, string(inv.messages[0]))
}

func TestCloudSendMessage(t *testing.T) {
	fb, _ := installFake(t)

	assert.Equal(t, ErrorInvalidArgument, CloudSendCustomEventsMessage(nil, 4))
	assert.Empty(t, fb.cloud.sent)

	msg := []byte("event")
	require.Equal(t, Ok, CloudSendCustomEventsMessage(&msg[0], uint32(len(msg))))
	assert.Equal(t, Ok, CloudSendCustomEventsMessage(nil, 0))
	require.Len(t, fb.cloud.sent, 2)
	assert.Equal(t, "event", string(fb.cloud.sent[0]))
	assert.Empty(t, fb.cloud.sent[1])
}
