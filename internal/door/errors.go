package door

import (
	"errors"
	"fmt"
)

// ErrUnknownDoor reports a door name that has no configured mapping.
// This is a caller error, not a container fault.
var ErrUnknownDoor = errors.New("door is not known")

// ErrChannelBind reports failure to acquire an outbound UDP socket.
var ErrChannelBind = errors.New("cannot bind a UDP socket to send frames from")

// Phase names the half of the pulse a transport failure happened in.
type Phase string

const (
	PhaseOn  Phase = "on"
	PhaseOff Phase = "off"
)

// SendError wraps a transport failure during one pulse phase. An OFF
// phase failure means the actuator may still be latched on; callers
// must be able to tell the phases apart.
type SendError struct {
	Phase Phase
	Err   error
}

func (e *SendError) Error() string {
	if e.Phase == PhaseOff {
		return fmt.Sprintf("cannot send the %s frame (the door may still be open): %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("cannot send the %s frame: %v", e.Phase, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
