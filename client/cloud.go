package client

import (
	"sync/atomic"

	"github.com/thesyncim/edge"
)

// MaxCustomMessageSize is the largest custom message the cloud accepts.
const MaxCustomMessageSize = 256

var cloudHandler atomic.Pointer[func([]byte)]

// SendCustomMessageToCloud sends up to 256 bytes to the cloud. The SDK
// wraps data in the cloud protocol envelope.
func SendCustomMessageToCloud(data []byte) error {
	if !Initialized() {
		return ErrSDKNotInit
	}
	if len(data) > MaxCustomMessageSize {
		return ErrMessageTooLarge
	}
	var p *byte
	if len(data) > 0 {
		p = &data[0]
	}
	return codeErr(edge.CloudSendCustomEventsMessage(p, uint32(len(data))))
}

// RegisterCloudCustomMsgHandler sets the handler for messages from the
// cloud. The handler runs on the SDK's receive path; hand data off to a
// queue rather than processing it inline.
func RegisterCloudCustomMsgHandler(handler func([]byte)) error {
	if handler == nil {
		return ErrInvalidParameter
	}
	initCallbacks()
	prev := cloudHandler.Swap(&handler)
	if err := codeErr(edge.CloudRegisterCustomMsgHandler(cloudCallback)); err != nil {
		cloudHandler.Store(prev)
		return err
	}
	return nil
}
