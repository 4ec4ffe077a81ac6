package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/itohio/tegctl/pkg/actuator"
	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/config"
	"github.com/itohio/tegctl/pkg/hal"
	"github.com/itohio/tegctl/pkg/publish"
	"github.com/itohio/tegctl/pkg/sampler"
	"periph.io/x/conn/v3/physic"
)

// samplerIdle keeps the host sampler loop from spinning a core while still
// hitting 50ms intervals to within a millisecond.
const samplerIdle = time.Millisecond

func runSampler(ctx context.Context, args []string) error {
	fs, common := newFlagSet("sampler")
	mock := fs.Bool("mock", false, "Use a simulated sensor instead of the ADS1115")
	outPort := fs.String("out", "", "Write sample lines to this serial port instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}

	adc, closeADC, err := openAnalog(cfg, *mock)
	if err != nil {
		return err
	}
	defer closeADC()

	var out io.Writer = os.Stdout
	if *outPort != "" {
		port, err := hal.OpenSerial(*outPort, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		defer port.Close()
		out = port
	}

	pub, err := newPublisher(cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Close()

	s := newSampler(cfg, adc, out, pub)
	c := s.Config()
	log.Printf("Sampling channel %d every %dms (alpha %.2f, vref %.2fV)", c.Channel, c.IntervalMs, c.Alpha, c.VRef)
	return s.Run(ctx, samplerIdle)
}

// newSampler builds the sampling loop on a fresh uptime clock.
func newSampler(cfg *config.Config, adc sampler.AnalogReader, out io.Writer, pub publish.Publisher) *sampler.Sampler {
	s := sampler.New(cfg.Sampler, hal.NewUptime(), adc, out)
	s.OnReading = func(r sampler.Reading) {
		if err := pub.PublishReading(r); err != nil {
			log.Printf("Failed to publish reading: %v", err)
		}
	}
	return s
}

func openAnalog(cfg *config.Config, mock bool) (sampler.AnalogReader, func(), error) {
	if mock {
		m := cfg.Mock
		return hal.NewSimADC(m.Bias, m.Swing, m.Noise, m.Period), func() {}, nil
	}

	if err := hal.InitHost(); err != nil {
		return nil, nil, err
	}
	adc, err := hal.OpenADS1115(cfg.Linux.I2CBus, cfg.Linux.ADCAddress, cfg.Sampler.VRef)
	if err != nil {
		return nil, nil, err
	}
	return adc, func() {
		if err := adc.Close(); err != nil {
			log.Printf("Error closing ADC: %v", err)
		}
	}, nil
}

func runDriver(ctx context.Context, args []string) error {
	fs, common := newFlagSet("driver")
	mock := fs.Bool("mock", false, "Log pin changes instead of driving GPIO")
	port := fs.String("p", "", "Read commands from this serial port instead of stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}

	left, right, release, err := openActuators(cfg, *mock)
	if err != nil {
		return err
	}
	defer release()

	var tr *hal.StreamTransport
	if *port != "" {
		p, err := hal.OpenSerial(*port, cfg.Serial.BaudRate)
		if err != nil {
			return err
		}
		tr = hal.NewStreamTransport(p, p, 0)
	} else {
		tr = hal.NewStreamTransport(os.Stdin, os.Stdout, 0)
	}
	defer tr.Close()

	pub, err := newPublisher(cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Close()

	d := newDispatcher(cfg, tr, left, right, pub)

	log.Printf("Waiting for first command")
	if err := d.WaitReady(ctx); err != nil {
		return err
	}
	err = d.Run(ctx)

	left.Stop()
	right.Stop()
	return err
}

// newDispatcher builds the command loop and hooks accepted commands to the
// log and the publisher.
func newDispatcher(cfg *config.Config, tr command.Transport, left, right *actuator.Actuator, pub publish.Publisher) *command.Dispatcher {
	d := command.New(cfg.Driver, tr, left, right)
	d.OnDispatch = func(c byte, a command.Action) {
		log.Printf("%c: %s %s | %s %s %.1f%% | %s %s %.1f%%", c, a.Target, a.Direction,
			left.Name, left.State(), left.Percent(),
			right.Name, right.State(), right.Percent())
		if err := pub.PublishCommand(c, a); err != nil {
			log.Printf("Failed to publish command: %v", err)
		}
	}
	return d
}

// openActuators binds both TEG modules to GPIO through periph, or to logging
// pins in mock mode. release stops PWM on the real pins.
func openActuators(cfg *config.Config, mock bool) (left, right *actuator.Actuator, release func(), err error) {
	if mock {
		left = actuator.New("TEG_L", &hal.LogPWM{Name: "TEG_L pwm"}, &hal.LogPin{Name: "TEG_L a"}, &hal.LogPin{Name: "TEG_L b"})
		right = actuator.New("TEG_R", &hal.LogPWM{Name: "TEG_R pwm"}, &hal.LogPin{Name: "TEG_R a"}, &hal.LogPin{Name: "TEG_R b"})
		return left, right, func() {}, nil
	}

	if err := hal.InitHost(); err != nil {
		return nil, nil, nil, err
	}

	freq := physic.Frequency(cfg.Linux.PWMFrequency) * physic.Hertz
	var pwms []*hal.PeriphPWM
	release = func() {
		for _, p := range pwms {
			if err := p.Halt(); err != nil {
				log.Printf("Error halting pwm: %v", err)
			}
		}
	}

	open := func(name string, pins config.PinConfig) (*actuator.Actuator, error) {
		pwm, err := hal.NewPeriphPWM(pins.PWM, freq)
		if err != nil {
			return nil, err
		}
		pwms = append(pwms, pwm)

		a, err := hal.NewPeriphOutput(pins.DirA)
		if err != nil {
			return nil, err
		}
		b, err := hal.NewPeriphOutput(pins.DirB)
		if err != nil {
			return nil, err
		}
		return actuator.New(name, pwm, a, b), nil
	}

	if left, err = open("TEG_L", cfg.Linux.Left); err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("left actuator: %w", err)
	}
	if right, err = open("TEG_R", cfg.Linux.Right); err != nil {
		release()
		return nil, nil, nil, fmt.Errorf("right actuator: %w", err)
	}
	return left, right, release, nil
}

// isShutdown reports whether err only signals a requested stop.
func isShutdown(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
