package config

import (
	"testing"
	"time"
)

func TestDefaultTiming(t *testing.T) {
	timing := DefaultTiming()

	if timing.PulseHold != 15*time.Second {
		t.Errorf("PulseHold = %v, want 15s", timing.PulseHold)
	}
	if timing.AuthTimeout != 10*time.Second {
		t.Errorf("AuthTimeout = %v, want 10s", timing.AuthTimeout)
	}
	if timing.ShutdownGrace <= timing.PulseHold {
		t.Errorf("ShutdownGrace = %v, must exceed PulseHold %v", timing.ShutdownGrace, timing.PulseHold)
	}
}

func TestLoadTimingEnvOverrides(t *testing.T) {
	t.Setenv("DCC_TIMING_PULSE_HOLD", "2s")
	t.Setenv("DCC_TIMING_AUTH_TIMEOUT", "1s")
	t.Setenv("DCC_TIMING_SESSION_READ_TIMEOUT", "5s")
	t.Setenv("DCC_TIMING_SHUTDOWN_GRACE", "4s")

	timing := LoadTiming()

	if timing.PulseHold != 2*time.Second {
		t.Errorf("PulseHold = %v, want 2s", timing.PulseHold)
	}
	if timing.AuthTimeout != 1*time.Second {
		t.Errorf("AuthTimeout = %v, want 1s", timing.AuthTimeout)
	}
	if timing.SessionReadTimeout != 5*time.Second {
		t.Errorf("SessionReadTimeout = %v, want 5s", timing.SessionReadTimeout)
	}
	if timing.ShutdownGrace != 4*time.Second {
		t.Errorf("ShutdownGrace = %v, want 4s", timing.ShutdownGrace)
	}
}

func TestLoadTimingIgnoresGarbage(t *testing.T) {
	t.Setenv("DCC_TIMING_PULSE_HOLD", "soon")
	t.Setenv("DCC_TIMING_AUTH_TIMEOUT", "-3s")

	timing := LoadTiming()

	if timing.PulseHold != 15*time.Second {
		t.Errorf("PulseHold = %v, want baseline 15s", timing.PulseHold)
	}
	if timing.AuthTimeout != 10*time.Second {
		t.Errorf("AuthTimeout = %v, want baseline 10s", timing.AuthTimeout)
	}
}
