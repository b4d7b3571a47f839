package edge

import "unsafe"

// CloudRegisterCustomMsgHandler registers a C handler for custom messages
// from the cloud. handler has the C signature
// void (*)(const uint8_t *data, uint32_t len).
func CloudRegisterCustomMsgHandler(handler CFunc) ErrorCode {
	if handler == 0 {
		return ErrorInvalidArgument
	}
	c := cloud()
	if c == nil {
		return ErrorNullPointer
	}
	t := &messageTrampoline{fn: handler}
	return c.RegisterCustomServicesMessageHandler(t.onMessage)
}

// CloudSendCustomEventsMessage sends length bytes at data to the cloud.
func CloudSendCustomEventsMessage(data *byte, length uint32) ErrorCode {
	if data == nil && length > 0 {
		return ErrorInvalidArgument
	}
	c := cloud()
	if c == nil {
		return ErrorNullPointer
	}
	var b []byte
	if length > 0 {
		b = unsafe.Slice(data, length)
	}
	return c.SendCustomEventsMessage(b)
}
