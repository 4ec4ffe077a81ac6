// Package hal provides the hardware collaborators the control loops consume:
// a millisecond clock, analog inputs, digital and PWM outputs and byte-stream
// transports. Real backends use periph.io on Linux and go.bug.st/serial for
// serial lines; the fakes allow testing without hardware.
package hal

import "time"

// Uptime is a millisecond counter since construction. Like the MCU counter it
// is 32 bits wide and wraps after ~49.7 days.
type Uptime struct {
	start time.Time
}

// NewUptime starts a counter at zero.
func NewUptime() *Uptime {
	return &Uptime{start: time.Now()}
}

// Millis returns milliseconds since start, truncated to 32 bits.
func (u *Uptime) Millis() uint32 {
	return uint32(time.Since(u.start).Milliseconds())
}

// FakeClock is a test double that returns scripted counter values.
type FakeClock struct {
	// Ticks contains scripted values. Each call to Millis consumes the next one;
	// once exhausted the last value repeats.
	Ticks []uint32

	index int
}

// NewFakeClock creates a FakeClock with the given ticks.
func NewFakeClock(ticks ...uint32) *FakeClock {
	return &FakeClock{Ticks: ticks}
}

// Millis returns the next scripted tick.
func (c *FakeClock) Millis() uint32 {
	if len(c.Ticks) == 0 {
		return 0
	}

	tick := c.Ticks[c.index]
	if c.index < len(c.Ticks)-1 {
		c.index++
	}
	return tick
}

// Set replaces the script with a single value.
func (c *FakeClock) Set(now uint32) {
	c.Ticks = []uint32{now}
	c.index = 0
}
