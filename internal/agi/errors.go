package agi

import (
	"errors"
	"fmt"
)

// ErrHangup reports that the caller hung up the channel; no further
// command exchange is possible on the session.
var ErrHangup = errors.New("session hung up")

// ClientError marks a failure caused by the caller (unknown route,
// unknown door, failed authentication). The server reports it back over
// the session as a diagnostic and does not log it as a container fault.
type ClientError struct {
	Msg string
	Err error // optional cause, kept for errors.Is in tests
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError builds a ClientError with a caller-visible message.
func NewClientError(msg string) *ClientError {
	return &ClientError{Msg: msg}
}

// ProtocolError reports a non-200 status line from Asterisk, such as
// 510 (invalid command) or 520 (usage error).
type ProtocolError struct {
	Code int
	Line string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("AGI status %d: %s", e.Code, e.Line)
}
