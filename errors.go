package integra

import (
	"errors"
	"fmt"

	"github.com/gosatel/integra/pkg/channel"
	"github.com/gosatel/integra/pkg/proto"
)

var (
	ErrIllegalArgument   = errors.New("integra: illegal argument")
	ErrNotConnected      = errors.New("integra: client is not connected")
	ErrConnectInProgress = errors.New("integra: connect already in progress")
	ErrAlreadyConnected  = errors.New("integra: client is already connected")
)

// RequestError is returned by a typed control/read method when the panel
// answered but rejected the request: a READ_RESULT error code, or a
// synthetic NO_RESPONSE after a request timeout. It carries the rejected
// command and code so callers can inspect why. While a Client.RequestNoError
// scope is open, send logs the rejection and returns no error instead.
//
// Grounded on original_source/satel_integra_api/base.py
// (IntegraRequestError) and messages.py (IntegraResponseErrorCode).
type RequestError struct {
	Command proto.Command
	Code    channel.ErrorCode
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("integra: command 0x%02X rejected: %v", byte(e.Command), e.Code)
}

// ChannelError is the client-facing alias for a transport/protocol-level
// channel failure (connection, read, write, encryption).
type ChannelError = channel.Error
