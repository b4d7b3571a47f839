package client

import (
	"errors"

	"github.com/thesyncim/edge"
)

var (
	ErrSDKNotInit        = errors.New("client: sdk is not initialized")
	ErrFileReaderNotOpen = errors.New("client: file reader is not opened")
	ErrLiveViewNotInit   = errors.New("client: live view is not initialized")
	ErrMessageTooLarge   = errors.New("client: message exceeds 256 bytes")
	ErrStateAbnormal     = errors.New("client: state abnormal")
	ErrInvalidParameter  = errors.New("client: invalid parameter")
	ErrNoBackend         = errors.New("client: no native object available")
)

// codeErr converts a facade result to an error; see edge.ErrorCode.Err.
func codeErr(code edge.ErrorCode) error {
	return code.Err()
}
