// Package link is the host side of the serial lines to the sampler and
// driver boards.
package link

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/itohio/tegctl/pkg/sampler"
)

const (
	// DefaultBufferSize is the default size for receive channels.
	DefaultBufferSize = 100
)

var (
	// ErrNotConnected is returned when using a link before Connect.
	ErrNotConnected = errors.New("not connected")
	// ErrAlreadyConnected is returned by a second Connect.
	ErrAlreadyConnected = errors.New("already connected")
)

// Link is a connection to one board.
type Link interface {
	Connect() error
	Close() error
	IsConnected() bool
}

// Ensure both links implement Link.
var (
	_ Link = (*SamplerLink)(nil)
	_ Link = (*DriverLink)(nil)
)

// ParseLine parses a line from the sampler board.
// Format: millis,volts
// Example: 1234,2.50
func ParseLine(line string) (sampler.Reading, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return sampler.Reading{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
	}

	millis, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return sampler.Reading{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	volts, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return sampler.Reading{}, fmt.Errorf("invalid voltage: %w", err)
	}
	if volts < 0 {
		return sampler.Reading{}, fmt.Errorf("voltage out of range: %v", volts)
	}

	return sampler.Reading{
		Millis:  uint32(millis),
		Voltage: volts,
	}, nil
}
