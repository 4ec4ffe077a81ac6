// Command tegctl runs the TEG sampler and driver loops on a Linux board and
// talks to the microcontroller builds of the same loops over serial.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/tegctl/pkg/config"
	"github.com/itohio/tegctl/pkg/publish"
)

const usage = `usage: tegctl <command> [flags]

commands:
  monitor   read smoothed voltages from the sampler board
  drive     forward keyboard commands (a d w x s) to the driver board
  sampler   run the sampling loop on this machine (ADS1115, or -mock)
  driver    run the command loop on this machine (GPIO/PWM, or -mock)
  ports     list serial ports

run "tegctl <command> -h" for command flags
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if isShutdown(err) || errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("tegctl %s: %v", os.Args[1], err)
	}
}

func run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "monitor":
		return runMonitor(ctx, args)
	case "drive":
		return runDrive(ctx, args)
	case "sampler":
		return runSampler(ctx, args)
	case "driver":
		return runDriver(ctx, args)
	case "ports":
		return runPorts()
	case "help", "-h", "--help":
		fmt.Fprint(os.Stdout, usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	config *string
	broker *string
}

func newFlagSet(name string) (*flag.FlagSet, commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return fs, commonFlags{
		config: fs.String("config", "config.yaml", "Configuration file path"),
		broker: fs.String("mqtt", "", "MQTT broker override (e.g. tcp://localhost:1883)"),
	}
}

// loadConfig loads the configuration file and applies common overrides.
func (c commonFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if *c.broker != "" {
		cfg.MQTT.Broker = *c.broker
	}
	return cfg, nil
}

// newPublisher connects to the configured broker, or returns a no-op
// publisher when none is configured.
func newPublisher(cfg config.MQTTConfig) (publish.Publisher, error) {
	if cfg.Broker == "" {
		return publish.Nop{}, nil
	}

	p, err := publish.NewReal(cfg.Broker, cfg.ClientID, cfg.Topic)
	if err != nil {
		return nil, fmt.Errorf("init mqtt: %w", err)
	}
	log.Printf("Publishing to %s under %s/", cfg.Broker, cfg.Topic)
	return p, nil
}
