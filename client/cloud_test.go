package client

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendCustomMessageToCloud(t *testing.T) {
	s := useSim(t, "", false)
	assert.ErrorIs(t, SendCustomMessageToCloud([]byte("x")), ErrSDKNotInit)

	require.NoError(t, InitSDK(testConfig()))
	assert.ErrorIs(t, SendCustomMessageToCloud(make([]byte, MaxCustomMessageSize+1)), ErrMessageTooLarge)
	require.NoError(t, SendCustomMessageToCloud([]byte("status:ok")))
	require.NoError(t, SendCustomMessageToCloud(bytes.Repeat([]byte{'a'}, MaxCustomMessageSize)))
	require.NoError(t, SendCustomMessageToCloud(nil))

	out := s.Cloud().Outbox()
	require.Len(t, out, 3)
	assert.Equal(t, []byte("status:ok"), out[0])
	assert.Empty(t, out[2])
}

func TestRegisterCloudCustomMsgHandlerNil(t *testing.T) {
	assert.ErrorIs(t, RegisterCloudCustomMsgHandler(nil), ErrInvalidParameter)
}

func TestOnCloudMessageCopies(t *testing.T) {
	var got []byte
	h := func(b []byte) { got = b }
	cloudHandler.Store(&h)
	t.Cleanup(func() { cloudHandler.Store(nil) })

	buf := []byte("from cloud")
	onCloudMessage(uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	buf[0] = 'X'
	assert.Equal(t, []byte("from cloud"), got)

	onCloudMessage(uintptr(unsafe.Pointer(&buf[0])), 4)
	assert.Equal(t, []byte("Xrom"), got)

	onCloudMessage(0, 0)
	assert.Empty(t, got)
}
