package config

import (
	"os"
	"time"
)

// Timing holds the duration knobs of the container. PulseHold is a
// design constant of the actuation contract; the others bound how long
// the container waits on its peers.
type Timing struct {
	// PulseHold is how long a door stays open between the ON and OFF
	// frames. 15s is the contractual default.
	PulseHold time.Duration

	// AuthTimeout bounds the digest round-trip with the dialplan.
	AuthTimeout time.Duration

	// SessionReadTimeout bounds reading the AGI environment block of a
	// new session.
	SessionReadTimeout time.Duration

	// ShutdownGrace bounds draining in-flight sessions on shutdown.
	// It must exceed PulseHold so a pulse in its hold phase can still
	// send the close frame.
	ShutdownGrace time.Duration
}

// DefaultTiming returns the baseline timing values.
func DefaultTiming() *Timing {
	return &Timing{
		PulseHold:          15 * time.Second,
		AuthTimeout:        10 * time.Second,
		SessionReadTimeout: 30 * time.Second,
		ShutdownGrace:      20 * time.Second,
	}
}

// LoadTiming returns the baseline with DCC_TIMING_* environment
// overrides applied. Unparsable values are ignored.
func LoadTiming() *Timing {
	timing := DefaultTiming()

	if val := os.Getenv("DCC_TIMING_PULSE_HOLD"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			timing.PulseHold = d
		}
	}

	if val := os.Getenv("DCC_TIMING_AUTH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			timing.AuthTimeout = d
		}
	}

	if val := os.Getenv("DCC_TIMING_SESSION_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			timing.SessionReadTimeout = d
		}
	}

	if val := os.Getenv("DCC_TIMING_SHUTDOWN_GRACE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			timing.ShutdownGrace = d
		}
	}

	return timing
}
