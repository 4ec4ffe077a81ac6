package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itohio/tegctl/pkg/actuator"
	"github.com/itohio/tegctl/pkg/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	tr         *hal.FakeTransport
	d          *Dispatcher
	leftPWM    *hal.RecordingPWM
	rightPWM   *hal.RecordingPWM
	leftA      *hal.RecordingPin
	leftB      *hal.RecordingPin
	rightA     *hal.RecordingPin
	rightB     *hal.RecordingPin
	dispatched []byte
	sleeps     []time.Duration
}

func newRig(cfg Config) *rig {
	r := &rig{
		tr:       &hal.FakeTransport{},
		leftPWM:  &hal.RecordingPWM{},
		rightPWM: &hal.RecordingPWM{},
		leftA:    &hal.RecordingPin{},
		leftB:    &hal.RecordingPin{},
		rightA:   &hal.RecordingPin{},
		rightB:   &hal.RecordingPin{},
	}
	left := actuator.New("TEG_L", r.leftPWM, r.leftA, r.leftB)
	right := actuator.New("TEG_R", r.rightPWM, r.rightA, r.rightB)
	r.d = New(cfg, r.tr, left, right)
	r.d.Sleep = func(d time.Duration) { r.sleeps = append(r.sleeps, d) }
	r.d.OnDispatch = func(c byte, _ Action) { r.dispatched = append(r.dispatched, c) }
	return r
}

func TestNew_Defaults(t *testing.T) {
	r := newRig(Config{})

	assert.Equal(t, DefaultPollDelay, r.d.delay)
	assert.Equal(t, uint8(DefaultLeftPower), r.d.table['a'].Power)
	assert.Equal(t, uint8(DefaultRightPower), r.d.table['w'].Power)
}

func TestStep_NothingBuffered(t *testing.T) {
	r := newRig(DefaultConfig())

	c, read, err := r.d.Step()
	require.NoError(t, err)
	assert.False(t, read)
	assert.Equal(t, byte(0), c)
	assert.Empty(t, r.tr.Out.String())
}

func TestStep_LeftForward(t *testing.T) {
	r := newRig(DefaultConfig())
	r.tr.Feed("a")

	c, read, err := r.d.Step()
	require.NoError(t, err)
	assert.True(t, read)
	assert.Equal(t, byte('a'), c)

	assert.Equal(t, "a\n", r.tr.Out.String())
	assert.Equal(t, []uint8{255}, r.leftPWM.History)
	assert.True(t, r.leftA.Level)
	assert.False(t, r.leftB.Level)
	assert.Equal(t, actuator.Forward, r.d.Left().State())
	assert.Empty(t, r.rightPWM.History, "right actuator must not be touched")
	assert.Equal(t, []byte{'a'}, r.dispatched)
}

func TestStep_CommandTable(t *testing.T) {
	tests := []struct {
		cmd       string
		wantLeft  actuator.State
		wantRight actuator.State
		wantLDuty uint8
		wantRDuty uint8
	}{
		{"a", actuator.Forward, actuator.Uninitialized, 255, 0},
		{"d", actuator.Backward, actuator.Uninitialized, 255, 0},
		{"w", actuator.Uninitialized, actuator.Forward, 0, 135},
		{"x", actuator.Uninitialized, actuator.Backward, 0, 135},
		{"s", actuator.Stopped, actuator.Stopped, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			r := newRig(DefaultConfig())
			r.tr.Feed(tt.cmd)

			_, _, err := r.d.Step()
			require.NoError(t, err)

			assert.Equal(t, tt.cmd+"\n", r.tr.Out.String())
			assert.Equal(t, tt.wantLeft, r.d.Left().State())
			assert.Equal(t, tt.wantRight, r.d.Right().State())
			assert.Equal(t, tt.wantLDuty, r.d.Left().Power())
			assert.Equal(t, tt.wantRDuty, r.d.Right().Power())
		})
	}
}

func TestStep_ConfiguredPower(t *testing.T) {
	r := newRig(Config{LeftPower: Power(100), RightPower: Power(200)})
	r.tr.Feed("dw")

	_, _, err := r.d.Step()
	require.NoError(t, err)
	_, _, err = r.d.Step()
	require.NoError(t, err)

	assert.Equal(t, uint8(100), r.leftPWM.Duty)
	assert.Equal(t, uint8(200), r.rightPWM.Duty)
}

func TestStep_ZeroPowerStaysOff(t *testing.T) {
	r := newRig(Config{LeftPower: Power(0), RightPower: Power(0)})
	r.tr.Feed("aw")

	_, _, err := r.d.Step()
	require.NoError(t, err)
	_, _, err = r.d.Step()
	require.NoError(t, err)

	assert.Equal(t, uint8(0), r.leftPWM.Duty)
	assert.Equal(t, uint8(0), r.rightPWM.Duty)
	assert.Equal(t, actuator.Forward, r.d.Left().State())
	assert.Equal(t, uint8(0), r.d.Left().Power())
	assert.Equal(t, "a\nw\n", r.tr.Out.String())
}

func TestConfig_PowerAccessors(t *testing.T) {
	assert.Equal(t, uint8(DefaultLeftPower), Config{}.Left())
	assert.Equal(t, uint8(DefaultRightPower), Config{}.Right())
	assert.Equal(t, uint8(0), Config{LeftPower: Power(0)}.Left())
	assert.Equal(t, uint8(7), Config{RightPower: Power(7)}.Right())
}

func TestStep_IgnoredInput(t *testing.T) {
	for _, in := range []string{"q", "A", "\n", " ", "1", "\x00"} {
		r := newRig(DefaultConfig())
		r.tr.Feed(in)

		c, read, err := r.d.Step()
		assert.True(t, read)
		assert.Equal(t, in[0], c)
		assert.True(t, errors.Is(err, ErrIgnoredInput))

		assert.Empty(t, r.tr.Out.String(), "no echo for %q", in)
		assert.Empty(t, r.leftPWM.History)
		assert.Empty(t, r.rightPWM.History)
		assert.Empty(t, r.leftA.History)
		assert.Empty(t, r.rightA.History)
		assert.Empty(t, r.dispatched)
	}
}

func TestStep_OneBytePerCall(t *testing.T) {
	r := newRig(DefaultConfig())
	r.tr.Feed("aws")

	_, _, err := r.d.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, r.tr.Buffered())
	assert.Equal(t, "a\n", r.tr.Out.String())
}

func TestStep_ForwardThenStop(t *testing.T) {
	r := newRig(DefaultConfig())
	r.tr.Feed("as")

	for i := 0; i < 2; i++ {
		_, _, err := r.d.Step()
		require.NoError(t, err)
	}

	assert.False(t, r.leftA.Level)
	assert.False(t, r.leftB.Level)
	assert.Equal(t, uint8(0), r.leftPWM.Duty)
	assert.Equal(t, actuator.Stopped, r.d.Left().State())
}

func TestStep_EchoWriteError(t *testing.T) {
	r := newRig(DefaultConfig())
	r.tr.Feed("a")
	r.tr.WriteError = errors.New("line down")

	_, read, err := r.d.Step()
	assert.True(t, read)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrIgnoredInput))
	// Actuator was still driven.
	assert.Equal(t, actuator.Forward, r.d.Left().State())
}

func TestWaitReady_BlocksUntilInput(t *testing.T) {
	r := newRig(DefaultConfig())

	polls := 0
	r.d.Sleep = func(time.Duration) {
		polls++
		if polls == 3 {
			r.tr.Feed("w")
		}
	}

	require.NoError(t, r.d.WaitReady(context.Background()))
	assert.Equal(t, 3, polls)
	assert.Equal(t, Banner+"\n", r.tr.Out.String())
	assert.Equal(t, 1, r.tr.Buffered(), "readiness byte is not consumed")
}

func TestWaitReady_Cancelled(t *testing.T) {
	r := newRig(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	r.d.Sleep = func(time.Duration) { cancel() }

	err := r.d.WaitReady(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.tr.Out.String())
}

func TestRun_FIFOAndDelay(t *testing.T) {
	r := newRig(DefaultConfig())
	r.tr.Feed("aqwxs")

	ctx, cancel := context.WithCancel(context.Background())
	iterations := 0
	r.d.Sleep = func(d time.Duration) {
		r.sleeps = append(r.sleeps, d)
		iterations++
		if iterations == 6 {
			cancel()
		}
	}

	err := r.d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, "a\nw\nx\ns\n", r.tr.Out.String())
	assert.Equal(t, []byte("awxs"), r.dispatched)
	assert.Len(t, r.sleeps, 6)
	for _, d := range r.sleeps {
		assert.Equal(t, DefaultPollDelay, d)
	}
	assert.Equal(t, actuator.Stopped, r.d.Left().State())
	assert.Equal(t, actuator.Stopped, r.d.Right().State())
}

func TestTable_Lookup(t *testing.T) {
	table := NewTable(255, 135)

	a, err := table.Lookup('x')
	require.NoError(t, err)
	assert.Equal(t, Action{Target: Right, Direction: Backward, Power: 135}, a)

	_, err = table.Lookup('z')
	assert.ErrorIs(t, err, ErrIgnoredInput)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "both", Both.String())
	assert.Equal(t, "stop", Stop.String())
	assert.Equal(t, "backward", Backward.String())
}
