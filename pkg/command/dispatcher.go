// Package command reads single-byte commands from a serial stream and maps
// them onto the two TEG actuators.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/itohio/tegctl/pkg/actuator"
)

// Banner is printed once the host has sent its first byte.
const Banner = "Begin command...."

// readyPoll is how often WaitReady re-checks the line.
const readyPoll = time.Millisecond

// Transport is a polled byte stream. machine.UART satisfies it.
type Transport interface {
	Buffered() int
	ReadByte() (byte, error)
	io.Writer
}

// Dispatcher owns both actuators and the command stream. It is driven by a
// single loop and is not safe for concurrent use.
type Dispatcher struct {
	t     Transport
	left  *actuator.Actuator
	right *actuator.Actuator
	table Table
	delay time.Duration
	echo  [2]byte

	// Sleep pauses between iterations. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// OnDispatch, if set, is called after every accepted command.
	OnDispatch func(c byte, a Action)
}

// New creates a dispatcher. Unset powers and a zero poll delay take their
// defaults; a power explicitly set to 0 stays 0.
func New(cfg Config, t Transport, left, right *actuator.Actuator) *Dispatcher {
	if cfg.PollDelay == 0 {
		cfg.PollDelay = DefaultPollDelay
	}

	return &Dispatcher{
		t:     t,
		left:  left,
		right: right,
		table: NewTable(cfg.Left(), cfg.Right()),
		delay: cfg.PollDelay,
		Sleep: time.Sleep,
	}
}

// WaitReady blocks until at least one byte is buffered, then announces
// readiness. The byte is left in place for the first Step.
func (d *Dispatcher) WaitReady(ctx context.Context) error {
	for d.t.Buffered() == 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d.Sleep(readyPoll)
	}

	if _, err := io.WriteString(d.t, Banner+"\n"); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}
	return nil
}

// Step consumes at most one byte. It reports whether a byte was read; an
// unmapped byte yields ErrIgnoredInput and touches nothing.
func (d *Dispatcher) Step() (c byte, read bool, err error) {
	if d.t.Buffered() == 0 {
		return 0, false, nil
	}

	c, err = d.t.ReadByte()
	if err != nil {
		return 0, false, fmt.Errorf("read command: %w", err)
	}

	a, err := d.table.Lookup(c)
	if err != nil {
		return c, true, fmt.Errorf("%w: %q", err, c)
	}

	d.Apply(a)

	d.echo[0], d.echo[1] = c, '\n'
	if _, err := d.t.Write(d.echo[:]); err != nil {
		return c, true, fmt.Errorf("echo %q: %w", c, err)
	}

	if d.OnDispatch != nil {
		d.OnDispatch(c, a)
	}
	return c, true, nil
}

// Apply performs an action on the actuators.
func (d *Dispatcher) Apply(a Action) {
	switch a.Target {
	case Left:
		apply(d.left, a)
	case Right:
		apply(d.right, a)
	case Both:
		apply(d.left, a)
		apply(d.right, a)
	}
}

func apply(act *actuator.Actuator, a Action) {
	switch a.Direction {
	case Forward:
		act.Forward(a.Power)
	case Backward:
		act.Backward(a.Power)
	case Stop:
		act.Stop()
	}
}

// Run steps and sleeps the poll delay until ctx is cancelled. Bytes that
// arrive during the delay queue up and are handled one per iteration in
// arrival order.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, _, err := d.Step(); err != nil && !errors.Is(err, ErrIgnoredInput) {
			log.Printf("Dispatcher: %v", err)
		}

		d.Sleep(d.delay)
	}
}

// Left returns the left actuator.
func (d *Dispatcher) Left() *actuator.Actuator {
	return d.left
}

// Right returns the right actuator.
func (d *Dispatcher) Right() *actuator.Actuator {
	return d.right
}
