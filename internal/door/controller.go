package door

import (
	"context"
	"log/slog"
	"time"

	"github.com/door-control/dcc/internal/coe"
	"github.com/door-control/dcc/internal/config"
)

// Controller drives the two-phase timed pulse on a resolved mapping.
//
// Per actuation: acquire a fresh outbound channel, send the ON frame,
// hold, send the OFF frame. Nothing is retried; a failed actuation is
// terminal and a new caller request starts from scratch. Concurrent
// pulses, including on the same door, run fully independently.
type Controller struct {
	newSender SenderFactory
	hold      time.Duration
	logger    *slog.Logger
}

// NewController creates a pulse controller. hold is how long the door
// stays open between the ON and OFF frames.
func NewController(newSender SenderFactory, hold time.Duration, logger *slog.Logger) *Controller {
	return &Controller{
		newSender: newSender,
		hold:      hold,
		logger:    logger,
	}
}

// Pulse opens the door defined by mapping and closes it again after the
// hold.
//
// The hold and the OFF frame deliberately ignore ctx cancellation: a
// caller hanging up mid-hold must not leave the door latched open, so
// the close pulse is always attempted once the ON frame went out. An
// OFF-phase failure still surfaces as a distinct SendError.
func (c *Controller) Pulse(ctx context.Context, mapping config.DoorMapping) error {
	sender, err := c.newSender()
	if err != nil {
		return err
	}
	defer func() { _ = sender.Close() }()

	on := coe.Packet{Node: mapping.VirtualNode, PDO: mapping.PDO, On: true}
	if err := sender.Send(on.Marshal(), mapping.Host()); err != nil {
		return &SendError{Phase: PhaseOn, Err: err}
	}
	c.logger.Info("opened door", "door", mapping.Name, "cmi", mapping.Host(), "hold", c.hold)

	timer := time.NewTimer(c.hold)
	defer timer.Stop()
	<-timer.C

	off := coe.Packet{Node: mapping.VirtualNode, PDO: mapping.PDO, On: false}
	if err := sender.Send(off.Marshal(), mapping.Host()); err != nil {
		c.logger.Error("failed to close door, it may still be open", "door", mapping.Name, "err", err)
		return &SendError{Phase: PhaseOff, Err: err}
	}
	c.logger.Debug("closed door", "door", mapping.Name)

	return nil
}
