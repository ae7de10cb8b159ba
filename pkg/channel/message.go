package channel

import (
	"fmt"

	"github.com/gosatel/integra/pkg/proto"
)

// Request is one outbound command. Broadcast and ResultAllowed are
// per-request overrides layered on top of the opcode's own defaults.
//
// Grounded on original_source/satel_integra_api/messages.py (IntegraRequest).
type Request struct {
	Command       proto.Command
	Payload       []byte
	Broadcast     bool
	ResultAllowed bool
}

// IsBroadcast reports whether responses to this request should also be
// treated as spontaneous notifications, combining the request's own flag
// with the opcode's inherent broadcast range.
func (r Request) IsBroadcast() bool {
	return r.Broadcast || r.Command.Broadcast()
}

// ErrorCode is the single-byte result carried by a READ_RESULT (0xEF)
// response, or one of the two synthetic values this client adds for
// conditions the wire protocol itself has no opcode for.
//
// Grounded on original_source/satel_integra_api/messages.py
// (IntegraResponseErrorCode).
type ErrorCode int

const (
	ErrNoError                      ErrorCode = 0x00
	ErrUserCodeNotFound              ErrorCode = 0x01
	ErrNoAccess                      ErrorCode = 0x02
	ErrUserNotExists                 ErrorCode = 0x03
	ErrUserAlreadyExists              ErrorCode = 0x04
	ErrWrongCodeOrCodeAlreadyExists   ErrorCode = 0x05
	ErrTelephoneCodeAlreadyExists     ErrorCode = 0x06
	ErrChangedCodeIsTheSame           ErrorCode = 0x07
	ErrOtherError                    ErrorCode = 0x08
	ErrCannotArmUseForce             ErrorCode = 0x11
	ErrCannotArm                     ErrorCode = 0x12
	ErrCommandAccepted               ErrorCode = 0xFF
	// ErrNoResponse and ErrUnknownError don't appear on the wire; they are
	// synthesized locally when a request times out or the panel returns an
	// error-code byte this enumeration doesn't otherwise name.
	ErrNoResponse  ErrorCode = 0x100
	ErrUnknownError ErrorCode = 0x101
)

var errorCodeText = map[ErrorCode]string{
	ErrNoError:                      "no error",
	ErrUserCodeNotFound:             "user code not found",
	ErrNoAccess:                     "no access",
	ErrUserNotExists:                "user does not exist",
	ErrUserAlreadyExists:            "user already exists",
	ErrWrongCodeOrCodeAlreadyExists: "wrong code or code already exists",
	ErrTelephoneCodeAlreadyExists:   "telephone code already exists",
	ErrChangedCodeIsTheSame:         "changed code is the same",
	ErrOtherError:                   "other error",
	ErrCannotArmUseForce:            "cannot arm, use force",
	ErrCannotArm:                    "cannot arm",
	ErrCommandAccepted:              "command accepted",
	ErrNoResponse:                   "no response from panel",
	ErrUnknownError:                 "unknown error code",
}

// String renders e for logging and error messages.
func (e ErrorCode) String() string {
	if s, ok := errorCodeText[e]; ok {
		return s
	}
	if e >= 0x80 && e <= 0x8F {
		return "other error"
	}
	return fmt.Sprintf("error code 0x%02X", int(e))
}

func knownErrorCode(n int) (ErrorCode, bool) {
	switch ErrorCode(n) {
	case ErrNoError, ErrUserCodeNotFound, ErrNoAccess, ErrUserNotExists, ErrUserAlreadyExists,
		ErrWrongCodeOrCodeAlreadyExists, ErrTelephoneCodeAlreadyExists, ErrChangedCodeIsTheSame,
		ErrOtherError, ErrCannotArmUseForce, ErrCannotArm, ErrCommandAccepted:
		return ErrorCode(n), true
	}
	if n >= 0x80 && n <= 0x8F {
		return ErrorCode(n), true
	}
	return 0, false
}

// Response is one inbound frame, either a direct reply to an outstanding
// Request or a spontaneous notification.
//
// Grounded on original_source/satel_integra_api/messages.py (IntegraResponse).
type Response struct {
	Command     proto.Command
	Data        []byte
	ErrorCode   ErrorCode
	ErrorCodeNo int
	request     *Request
}

// BindRequest records which outstanding request this response completes.
func (r *Response) BindRequest(req *Request) { r.request = req }

// Request returns the request this response completes, or nil for an
// unsolicited notification.
func (r *Response) Request() *Request { return r.request }

// Broadcast reports whether this response should also fan out as a
// notification, even when it completed an outstanding request.
func (r *Response) Broadcast() bool {
	if r.request != nil && r.request.Broadcast {
		return true
	}
	return r.Command.Broadcast()
}

// Success reports whether the response's error code indicates the command
// was accepted.
func (r *Response) Success() bool {
	return r.ErrorCode == ErrNoError || r.ErrorCode == ErrCommandAccepted
}

func newResponse(command proto.Command, data []byte) *Response {
	return &Response{Command: command, Data: data, ErrorCode: ErrNoError}
}

// resultResponse builds the synthetic response for a READ_RESULT-collapsed
// command: the original opcode with the one-byte result code interpreted
// as an ErrorCode.
func resultResponse(command proto.Command, errorCodeNo int) *Response {
	code, ok := knownErrorCode(errorCodeNo)
	if !ok {
		code = ErrUnknownError
	}
	return &Response{Command: command, ErrorCode: code, ErrorCodeNo: errorCodeNo}
}

// noResponse synthesizes the response a timed-out request collapses to.
func noResponse(command proto.Command) *Response {
	return &Response{Command: command, ErrorCode: ErrNoResponse}
}
