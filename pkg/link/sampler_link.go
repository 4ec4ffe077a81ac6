package link

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/itohio/tegctl/pkg/hal"
	"github.com/itohio/tegctl/pkg/sampler"
)

// SamplerLink reads "<millis>,<volts>" lines from the sampler board.
type SamplerLink struct {
	port     string
	baudRate int
	bufSize  int

	conn      io.ReadWriteCloser
	readings  chan sampler.Reading
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}
}

// NewSamplerLink creates a link for the given port, baud rate and buffer size
// (0 = defaults).
func NewSamplerLink(port string, baudRate int, bufSize int) *SamplerLink {
	if baudRate == 0 {
		baudRate = hal.DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &SamplerLink{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		readings: make(chan sampler.Reading, bufSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Connect opens the serial port and starts reading.
func (l *SamplerLink) Connect() error {
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

// Attach starts reading from an already open stream.
func (l *SamplerLink) Attach(conn io.ReadWriteCloser) error {
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

// Close closes the connection and the readings channel once the reader exits.
func (l *SamplerLink) Close() error {
	l.mu.Lock()
	if !l.connected {
		l.mu.Unlock()
		return nil
	}

	l.cancel()
	if err := l.conn.Close(); err != nil {
		log.Printf("Error closing sampler port: %v", err)
	}
	l.connected = false
	l.mu.Unlock()

	<-l.done
	return nil
}

// Readings returns the channel of parsed readings. It is closed when the
// reader stops.
func (l *SamplerLink) Readings() <-chan sampler.Reading {
	return l.readings
}

// IsConnected returns whether the link is currently connected.
func (l *SamplerLink) IsConnected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.connected
}

func (l *SamplerLink) readLines() {
	defer close(l.done)
	defer close(l.readings)

	scanner := bufio.NewScanner(l.conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		r, err := ParseLine(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}

		select {
		case l.readings <- r:
		case <-l.ctx.Done():
			return
		default:
			log.Printf("Readings channel full, dropping reading")
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && l.ctx.Err() == nil {
		log.Printf("Error reading from sampler port: %v", err)
	}
}
