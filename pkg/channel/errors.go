package channel

import "fmt"

// CloseSource identifies what triggered a channel close, so close
// orchestration knows which of its own goroutines (if any) not to wait on
// (a task doesn't wait on itself).
//
// Grounded on original_source/satel_integra_api/channel.py
// (IntegraChannel.CloseSource).
type CloseSource string

const (
	CloseConnect    CloseSource = "connect"
	CloseConnTask   CloseSource = "conn_task"
	CloseDisconnect CloseSource = "disconnect"
	ClosePingTask   CloseSource = "ping_task"
	CloseReadTask   CloseSource = "read_task"
	CloseRequest    CloseSource = "request"
)

// ErrCode classifies a channel-level failure.
type ErrCode int

const (
	ErrCodeNotConnected ErrCode = iota
	ErrCodeConnTimeout
	ErrCodeConnRefused
	ErrCodeReadError
	ErrCodeWriteError
	ErrCodeInvalidEncryptionKey
	ErrCodeRemoteClosed
	ErrCodeRemoteBusy
)

var errCodeText = map[ErrCode]string{
	ErrCodeNotConnected:         "remote endpoint is not connected",
	ErrCodeConnTimeout:          "connection cannot be established",
	ErrCodeConnRefused:          "connection refused",
	ErrCodeReadError:            "error reading data from remote endpoint",
	ErrCodeWriteError:           "error writing data to remote endpoint",
	ErrCodeInvalidEncryptionKey: "invalid encryption key",
	ErrCodeRemoteClosed:         "remote endpoint closed connection",
	ErrCodeRemoteBusy:           "remote endpoint returned busy",
}

// Error is a channel-level failure: a connection, read, write or
// encryption problem tied to a specific remote endpoint.
//
// Grounded on original_source/satel_integra_api/channel.py
// (IntegraChannelError).
type Error struct {
	ChannelID string
	Code      ErrCode
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("channel %s: %s", e.ChannelID, errCodeText[e.Code])
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(channelID string, code ErrCode, err error) *Error {
	return &Error{ChannelID: channelID, Code: code, Err: err}
}
