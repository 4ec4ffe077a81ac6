package publish

import (
	"sync"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/sampler"
)

// Fake records everything published. Safe for concurrent use.
type Fake struct {
	mu       sync.Mutex
	readings []sampler.Reading
	commands []byte
	closed   bool

	// Err, if set, is returned by every publish call.
	Err error
}

// PublishReading records r.
func (f *Fake) PublishReading(r sampler.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.readings = append(f.readings, r)
	return nil
}

// PublishCommand records c.
func (f *Fake) PublishCommand(c byte, _ command.Action) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.commands = append(f.commands, c)
	return nil
}

// Close marks the publisher closed.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Readings returns a copy of recorded readings.
func (f *Fake) Readings() []sampler.Reading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sampler.Reading(nil), f.readings...)
}

// Commands returns a copy of recorded command bytes.
func (f *Fake) Commands() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.commands...)
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
