package door_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/door-control/dcc/internal/coe"
	"github.com/door-control/dcc/internal/config"
	"github.com/door-control/dcc/internal/door"
	"github.com/door-control/dcc/internal/door/fake"
)

const testHold = 20 * time.Millisecond

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func frontMapping() config.DoorMapping {
	return config.DoorMapping{
		Name:        "front",
		CMIAddress:  "10.0.0.5",
		CMIPort:     5442,
		VirtualNode: 2,
		PDO:         2,
	}
}

func TestPulseSendsOnThenOff(t *testing.T) {
	factory := &fake.Factory{}
	controller := door.NewController(factory.New, testHold, discardLogger())

	err := controller.Pulse(context.Background(), frontMapping())
	require.NoError(t, err)

	sends := factory.AllSends()
	require.Len(t, sends, 2)

	on, err := coe.Decode(sends[0].Frame)
	require.NoError(t, err)
	assert.Equal(t, coe.Packet{Node: 2, PDO: 2, On: true}, on)
	assert.Equal(t, "10.0.0.5:5442", sends[0].Addr)

	off, err := coe.Decode(sends[1].Frame)
	require.NoError(t, err)
	assert.Equal(t, coe.Packet{Node: 2, PDO: 2, On: false}, off)
	assert.Equal(t, "10.0.0.5:5442", sends[1].Addr)
}

func TestPulseHoldsBetweenFrames(t *testing.T) {
	factory := &fake.Factory{}
	hold := 80 * time.Millisecond
	controller := door.NewController(factory.New, hold, discardLogger())

	start := time.Now()
	require.NoError(t, controller.Pulse(context.Background(), frontMapping()))

	assert.GreaterOrEqual(t, time.Since(start), hold)
}

func TestPulseChannelPerActuation(t *testing.T) {
	factory := &fake.Factory{}
	controller := door.NewController(factory.New, testHold, discardLogger())

	require.NoError(t, controller.Pulse(context.Background(), frontMapping()))
	require.NoError(t, controller.Pulse(context.Background(), frontMapping()))

	senders := factory.Senders()
	require.Len(t, senders, 2, "every pulse must acquire its own channel")
	for _, sender := range senders {
		assert.True(t, sender.Closed(), "channels are discarded after use")
	}
}

func TestPulseBindFailure(t *testing.T) {
	factory := &fake.Factory{BindErr: door.ErrChannelBind}
	controller := door.NewController(factory.New, testHold, discardLogger())

	err := controller.Pulse(context.Background(), frontMapping())

	assert.ErrorIs(t, err, door.ErrChannelBind)
	assert.Empty(t, factory.AllSends())
}

func TestPulseOnPhaseFailure(t *testing.T) {
	boom := errors.New("network unreachable")
	factory := &fake.Factory{FailSendOn: map[int]error{0: boom}}
	controller := door.NewController(factory.New, testHold, discardLogger())

	err := controller.Pulse(context.Background(), frontMapping())

	var sendErr *door.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, door.PhaseOn, sendErr.Phase)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, factory.AllSends(), "no off frame after a failed on frame")
}

func TestPulseOffPhaseFailureIsDistinct(t *testing.T) {
	boom := errors.New("network unreachable")
	factory := &fake.Factory{FailSendOn: map[int]error{1: boom}}
	controller := door.NewController(factory.New, testHold, discardLogger())

	err := controller.Pulse(context.Background(), frontMapping())

	var sendErr *door.SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, door.PhaseOff, sendErr.Phase, "a stuck-open door must be distinguishable")

	sends := factory.AllSends()
	require.Len(t, sends, 1)
	on, err2 := coe.Decode(sends[0].Frame)
	require.NoError(t, err2)
	assert.True(t, on.On)
}

func TestPulseIgnoresCancellationDuringHold(t *testing.T) {
	factory := &fake.Factory{}
	controller := door.NewController(factory.New, 50*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // canceled before the pulse even starts

	require.NoError(t, controller.Pulse(ctx, frontMapping()))

	sends := factory.AllSends()
	require.Len(t, sends, 2, "the close pulse must be sent even when the caller is gone")
}

func TestConcurrentPulsesRunIndependently(t *testing.T) {
	factory := &fake.Factory{}
	controller := door.NewController(factory.New, 200*time.Millisecond, discardLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := time.Now()
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = controller.Pulse(context.Background(), frontMapping())
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	for i, err := range errs {
		require.NoError(t, err, "pulse %d", i)
	}

	// Each pulse sends its own on/off pair; nothing deduplicates or
	// serializes overlapping pulses on the same door.
	assert.Len(t, factory.AllSends(), 4)
	assert.Len(t, factory.Senders(), 2)
	assert.Less(t, elapsed, 390*time.Millisecond, "pulses must overlap, not queue")
}
