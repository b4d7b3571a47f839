package edge

import (
	"errors"
	"fmt"
)

// ErrorCode is the single integer result of every facade call.
// Values other than the ones declared here are native codes forwarded verbatim.
type ErrorCode int32

const (
	Ok                     ErrorCode = 0
	ErrorInvalidArgument   ErrorCode = 1
	ErrorSystemError       ErrorCode = 2
	ErrorInvalidOperation  ErrorCode = 3
	ErrorRepeatOperation   ErrorCode = 4
	ErrorNullPointer       ErrorCode = 5
	ErrorParamOutOfRange   ErrorCode = 6
	ErrorParamGetFailure   ErrorCode = 7
	ErrorParamSetFailure   ErrorCode = 8
	ErrorSendPackFailure   ErrorCode = 9
	ErrorRequestTimeout    ErrorCode = 10
	ErrorAuthVerifyFailure ErrorCode = 11
	ErrorEncryptFailure    ErrorCode = 12
	ErrorDecryptFailure    ErrorCode = 13
	ErrorInvalidRespond    ErrorCode = 14
	ErrorRemoteFailure     ErrorCode = 15
	ErrorNoVideoID         ErrorCode = 16
	ErrorConnectFailure    ErrorCode = 17
)

// Sentinel errors for the native error codes.
var (
	ErrInvalidArgument   = errors.New("edge: invalid argument")
	ErrSystemError       = errors.New("edge: system error")
	ErrInvalidOperation  = errors.New("edge: invalid operation")
	ErrRepeatOperation   = errors.New("edge: repeated operation")
	ErrNullPointer       = errors.New("edge: null pointer")
	ErrParamOutOfRange   = errors.New("edge: parameter has exceeded the expected range")
	ErrParamGetFailure   = errors.New("edge: failed to get a parameter")
	ErrParamSetFailure   = errors.New("edge: failed to set or modify a parameter")
	ErrSendPackFailure   = errors.New("edge: failed to send pack")
	ErrRequestTimeout    = errors.New("edge: request has timed out")
	ErrAuthVerifyFailure = errors.New("edge: failed to verify the authorization information")
	ErrEncryptFailure    = errors.New("edge: failed to encrypt data")
	ErrDecryptFailure    = errors.New("edge: failed to decrypt data")
	ErrInvalidRespond    = errors.New("edge: invalid respond")
	ErrRemoteFailure     = errors.New("edge: failure on the remote server or remote process")
	ErrNoVideoID         = errors.New("edge: no valid video ID while starting a live stream")
	ErrConnectFailure    = errors.New("edge: failed to establish a connection")
)

var codeErrors = [...]error{
	ErrorInvalidArgument:   ErrInvalidArgument,
	ErrorSystemError:       ErrSystemError,
	ErrorInvalidOperation:  ErrInvalidOperation,
	ErrorRepeatOperation:   ErrRepeatOperation,
	ErrorNullPointer:       ErrNullPointer,
	ErrorParamOutOfRange:   ErrParamOutOfRange,
	ErrorParamGetFailure:   ErrParamGetFailure,
	ErrorParamSetFailure:   ErrParamSetFailure,
	ErrorSendPackFailure:   ErrSendPackFailure,
	ErrorRequestTimeout:    ErrRequestTimeout,
	ErrorAuthVerifyFailure: ErrAuthVerifyFailure,
	ErrorEncryptFailure:    ErrEncryptFailure,
	ErrorDecryptFailure:    ErrDecryptFailure,
	ErrorInvalidRespond:    ErrInvalidRespond,
	ErrorRemoteFailure:     ErrRemoteFailure,
	ErrorNoVideoID:         ErrNoVideoID,
	ErrorConnectFailure:    ErrConnectFailure,
}

// Err converts the code to an error. Ok converts to nil.
func (c ErrorCode) Err() error {
	if c == Ok {
		return nil
	}
	if c > 0 && int(c) < len(codeErrors) && codeErrors[c] != nil {
		return codeErrors[c]
	}
	return fmt.Errorf("edge: unknown error, code %d", int32(c))
}

func (c ErrorCode) String() string {
	if c == Ok {
		return "ok"
	}
	return c.Err().Error()
}
