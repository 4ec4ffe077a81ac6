package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/itohio/tegctl/pkg/hal"
	"github.com/itohio/tegctl/pkg/link"
	"github.com/itohio/tegctl/pkg/publish"
	"github.com/itohio/tegctl/pkg/sampler"
)

func runMonitor(ctx context.Context, args []string) error {
	fs, common := newFlagSet("monitor")
	port := fs.String("p", "", "Sampler board serial port override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Serial.SamplerPort = *port
	}

	pub, err := newPublisher(cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Close()

	l := link.NewSamplerLink(cfg.Serial.SamplerPort, cfg.Serial.BaudRate, 0)
	if err := l.Connect(); err != nil {
		return err
	}
	defer l.Close()

	log.Printf("Monitoring %s", cfg.Serial.SamplerPort)
	return monitor(ctx, l.Readings(), os.Stdout, pub)
}

// monitor prints every reading as "<millis>,<volts>" and publishes it until
// the stream ends or ctx is cancelled.
func monitor(ctx context.Context, readings <-chan sampler.Reading, out io.Writer, pub publish.Publisher) error {
	var line []byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-readings:
			if !ok {
				return nil
			}

			line = sampler.AppendLine(line[:0], r)
			if _, err := out.Write(line); err != nil {
				return fmt.Errorf("write reading: %w", err)
			}
			if err := pub.PublishReading(r); err != nil {
				log.Printf("Failed to publish reading: %v", err)
			}
		}
	}
}

func runPorts() error {
	ports, err := hal.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
