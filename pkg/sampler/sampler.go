// Package sampler implements the periodic analog sampling loop: a
// non-blocking interval gate, exponential smoothing and conversion to volts,
// emitting one "<millis>,<volts>" line per sample.
package sampler

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/itohio/tegctl/pkg/smooth"
)

// DefaultIntervalMs is the sampling period in milliseconds.
const DefaultIntervalMs = 50

// Clock is a free-running millisecond counter since start. It wraps at 2^32.
type Clock interface {
	Millis() uint32
}

// AnalogReader returns a 10-bit sample (0..1023) for a channel. The range is
// not validated by the sampler.
type AnalogReader interface {
	ReadAnalog(channel int) (uint16, error)
}

// Config contains sampler parameters.
type Config struct {
	Channel    int     `yaml:"channel"`
	IntervalMs uint32  `yaml:"interval_ms"`
	Alpha      float64 `yaml:"alpha"`
	VRef       float64 `yaml:"vref"`
	FullScale  float64 `yaml:"full_scale"`
}

// DefaultConfig returns the sampler defaults: channel 0 every 50ms, alpha 0.9,
// 5V reference on a 10-bit converter.
func DefaultConfig() Config {
	return Config{
		Channel:    0,
		IntervalMs: DefaultIntervalMs,
		Alpha:      smooth.DefaultAlpha,
		VRef:       DefaultVRef,
		FullScale:  DefaultFullScale,
	}
}

// Reading is one emitted sample.
type Reading struct {
	Millis   uint32  // clock value when the sample was taken
	Raw      uint16  // ADC count as read
	Smoothed float64 // filter output in ADC counts
	Voltage  float64 // Smoothed converted to volts
}

// Sampler ties a clock, an analog input and an output stream together.
// It is not safe for concurrent use; one loop owns it.
type Sampler struct {
	cfg    Config
	clock  Clock
	adc    AnalogReader
	out    io.Writer
	timer  Timer
	filter *smooth.Filter
	line   []byte

	// OnReading, if set, is called after every emitted line.
	OnReading func(Reading)
}

// New creates a sampler. Zero fields in cfg take their defaults and an alpha
// outside (0,1) falls back to smooth.DefaultAlpha.
func New(cfg Config, clock Clock, adc AnalogReader, out io.Writer) *Sampler {
	def := DefaultConfig()
	if cfg.IntervalMs == 0 {
		cfg.IntervalMs = def.IntervalMs
	}
	if cfg.VRef == 0 {
		cfg.VRef = def.VRef
	}
	if cfg.FullScale == 0 {
		cfg.FullScale = def.FullScale
	}

	filter := smooth.New(cfg.Alpha)
	cfg.Alpha = filter.Alpha

	return &Sampler{
		cfg:    cfg,
		clock:  clock,
		adc:    adc,
		out:    out,
		timer:  NewTimer(cfg.IntervalMs),
		filter: filter,
		line:   make([]byte, 0, 32),
	}
}

// Config returns the effective configuration.
func (s *Sampler) Config() Config {
	return s.cfg
}

// Poll runs one iteration. It returns immediately with fired=false when the
// interval has not elapsed; otherwise it takes, smooths, converts and writes
// exactly one sample.
func (s *Sampler) Poll() (r Reading, fired bool, err error) {
	now := s.clock.Millis()
	if !s.timer.Tick(now) {
		return Reading{}, false, nil
	}

	raw, err := s.adc.ReadAnalog(s.cfg.Channel)
	if err != nil {
		return Reading{}, true, fmt.Errorf("read channel %d: %w", s.cfg.Channel, err)
	}

	smoothed := s.filter.Update(float64(raw))
	r = Reading{
		Millis:   now,
		Raw:      raw,
		Smoothed: smoothed,
		Voltage:  ToVoltage(smoothed, s.cfg.VRef, s.cfg.FullScale),
	}

	s.line = AppendLine(s.line[:0], r)
	if _, err := s.out.Write(s.line); err != nil {
		return r, true, fmt.Errorf("write sample: %w", err)
	}

	if s.OnReading != nil {
		s.OnReading(r)
	}

	return r, true, nil
}

// Run polls until ctx is cancelled, pausing idle between iterations so a host
// loop does not spin a core. Sample errors are logged and the loop carries on.
func (s *Sampler) Run(ctx context.Context, idle time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, _, err := s.Poll(); err != nil {
			log.Printf("Sampler: %v", err)
		}

		if idle > 0 {
			time.Sleep(idle)
		}
	}
}
