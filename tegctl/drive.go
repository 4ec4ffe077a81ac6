package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/link"
)

type commandSender interface {
	Send(c byte) error
}

func runDrive(ctx context.Context, args []string) error {
	fs, common := newFlagSet("drive")
	port := fs.String("p", "", "Driver board serial port override")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.loadConfig()
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Serial.DriverPort = *port
	}

	l := link.NewDriverLink(cfg.Serial.DriverPort, cfg.Serial.BaudRate)
	if err := l.Connect(); err != nil {
		return err
	}
	defer l.Close()

	go reportAcks(l.Ready(), l.Acks(), os.Stdout)

	log.Printf("Connected to %s; type a/d (left), w/x (right), s (stop), then Enter", cfg.Serial.DriverPort)
	return forward(ctx, os.Stdin, l)
}

// forward sends every command byte read from in. Whitespace is skipped, other
// unknown bytes are reported and dropped. Returns nil at end of input.
func forward(ctx context.Context, in io.Reader, s commandSender) error {
	keys := make(chan byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(keys)
		buf := make([]byte, 64)
		for {
			n, err := in.Read(buf)
			for _, b := range buf[:n] {
				select {
				case keys <- b:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-keys:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read input: %w", err)
				default:
					return nil
				}
			}

			switch c {
			case ' ', '\t', '\r', '\n':
				continue
			}

			if err := s.Send(c); err != nil {
				if errors.Is(err, command.ErrIgnoredInput) {
					log.Printf("Ignoring %q", c)
					continue
				}
				return err
			}
		}
	}
}

// reportAcks prints the readiness banner and every acknowledged command until
// the ack channel closes.
func reportAcks(ready <-chan struct{}, acks <-chan byte, out io.Writer) {
	for {
		select {
		case <-ready:
			fmt.Fprintln(out, command.Banner)
			ready = nil
		case c, ok := <-acks:
			if !ok {
				return
			}
			fmt.Fprintf(out, "ack %c\n", c)
		}
	}
}
