package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/hal"
)

// DriverLink sends single-byte commands to the driver board and collects its
// acknowledgements.
type DriverLink struct {
	port     string
	baudRate int
	keys     command.Table

	conn      io.ReadWriteCloser
	acks      chan byte
	ready     chan struct{}
	readyOnce sync.Once
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewDriverLink creates a link for the given port and baud rate (0 = default).
func NewDriverLink(port string, baudRate int) *DriverLink {
	if baudRate == 0 {
		baudRate = hal.DefaultBaudRate
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &DriverLink{
		port:     port,
		baudRate: baudRate,
		// Only the keys matter here; powers live on the board.
		keys:   command.NewTable(0, 0),
		acks:   make(chan byte, DefaultBufferSize),
		ready:  make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Connect opens the serial port and starts reading acknowledgements.
func (l *DriverLink) Connect() error {
	l.mu.RLock()
	connected := l.connected
	l.mu.RUnlock()
	if connected {
		return ErrAlreadyConnected
	}

	port, err := hal.OpenSerial(l.port, l.baudRate)
	if err != nil {
		return err
	}
	return l.Attach(port)
}

// Attach starts using an already open stream.
func (l *DriverLink) Attach(conn io.ReadWriteCloser) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connected {
		return ErrAlreadyConnected
	}

	l.conn = conn
	l.connected = true

	go l.readLines()

	return nil
}

// Send writes one command byte. Bytes the board would ignore are rejected
// here with command.ErrIgnoredInput.
func (l *DriverLink) Send(c byte) error {
	if _, err := l.keys.Lookup(c); err != nil {
		return fmt.Errorf("%w: %q", err, c)
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.connected {
		return ErrNotConnected
	}

	if _, err := l.conn.Write([]byte{c}); err != nil {
		return fmt.Errorf("failed to send command %q: %w", c, err)
	}
	return nil
}

// Acks returns the channel of acknowledged command bytes. It is closed when
// the reader stops.
func (l *DriverLink) Acks() <-chan byte {
	return l.acks
}

// Ready is closed once the board has printed its readiness banner.
func (l *DriverLink) Ready() <-chan struct{} {
	return l.ready
}

// IsConnected returns whether the link is currently connected.
func (l *DriverLink) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

// Close closes the connection and waits for the reader to stop.
func (l *DriverLink) Close() error {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return nil
	}

	l.cancel()
	if err := l.conn.Close(); err != nil {
		log.Printf("Error closing driver port: %v", err)
	}
	l.connected = false
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *DriverLink) readLines() {
	defer close(l.done)
	defer close(l.acks)

	scanner := bufio.NewScanner(l.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == command.Banner:
			l.readyOnce.Do(func() { close(l.ready) })
		case len(line) == 1:
			select {
			case l.acks <- line[0]:
			case <-l.ctx.Done():
				return
			default:
				log.Printf("Ack channel full, dropping %q", line)
			}
		default:
			log.Printf("Unexpected line from driver: '%s'", line)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && l.ctx.Err() == nil {
		log.Printf("Error reading from driver port: %v", err)
	}
}
