package hal

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// MaxAnalog is the largest 10-bit count.
const MaxAnalog = 1023

// FakeADC is a test double that returns scripted samples.
type FakeADC struct {
	// Samples are consumed one per read; the last one repeats once exhausted.
	Samples []uint16

	// Channels records the channel of every read.
	Channels []int

	// ReadError, if set, is returned by ReadAnalog.
	ReadError error

	index int
}

// NewFakeADC creates a FakeADC with the given samples.
func NewFakeADC(samples ...uint16) *FakeADC {
	return &FakeADC{Samples: samples}
}

// ReadAnalog returns the next scripted sample.
func (a *FakeADC) ReadAnalog(channel int) (uint16, error) {
	a.Channels = append(a.Channels, channel)

	if a.ReadError != nil {
		return 0, a.ReadError
	}
	if len(a.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	s := a.Samples[a.index]
	if a.index < len(a.Samples)-1 {
		a.index++
	}
	return s, nil
}

// Reset rewinds to the first sample and clears recorded channels.
func (a *FakeADC) Reset() {
	a.index = 0
	a.Channels = nil
}

// SimADC synthesizes a slowly varying noisy signal, standing in for a
// thermocouple amplifier when no hardware is attached.
type SimADC struct {
	Bias   float64       // centre count
	Swing  float64       // sine amplitude in counts
	Period time.Duration // sine period
	Noise  float64       // uniform noise amplitude in counts

	start time.Time
	rnd   *rand.Rand
}

// NewSimADC creates a simulated source.
func NewSimADC(bias, swing, noise float64, period time.Duration) *SimADC {
	if period <= 0 {
		period = 10 * time.Second
	}
	return &SimADC{
		Bias:   bias,
		Swing:  swing,
		Period: period,
		Noise:  noise,
		start:  time.Now(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ReadAnalog returns the simulated count clamped to 0..MaxAnalog. All
// channels read the same signal.
func (a *SimADC) ReadAnalog(int) (uint16, error) {
	phase := 2 * math.Pi * float64(time.Since(a.start)) / float64(a.Period)
	v := a.Bias + a.Swing*math.Sin(phase) + a.Noise*(2*a.rnd.Float64()-1)

	if v < 0 {
		v = 0
	} else if v > MaxAnalog {
		v = MaxAnalog
	}
	return uint16(v + 0.5), nil
}
