// Package publish fans sampler readings and accepted driver commands out to
// MQTT, with an abstraction for testing.
package publish

import (
	"encoding/json"
	"time"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/sampler"
)

// Topic suffixes below the configured prefix.
const (
	TopicReadings = "readings"
	TopicCommands = "commands"
)

// Publisher publishes telemetry.
type Publisher interface {
	// PublishReading sends one sampler reading. Errors must not stop a loop.
	PublishReading(r sampler.Reading) error

	// PublishCommand sends one accepted command with the resulting action.
	PublishCommand(c byte, a command.Action) error

	// Close disconnects from the broker.
	Close() error
}

// ReadingPayload is the JSON body of a reading message.
type ReadingPayload struct {
	Timestamp string  `json:"timestamp"` // host wall clock, RFC3339
	Millis    uint32  `json:"millis"`    // board counter
	Raw       uint16  `json:"raw"`
	Smoothed  float64 `json:"smoothed"`
	Voltage   float64 `json:"voltage"`
}

// CommandPayload is the JSON body of a command message.
type CommandPayload struct {
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
	Target    string `json:"target"`
	Direction string `json:"direction"`
	Power     uint8  `json:"power"`
}

// FormatReading creates the JSON payload for a reading.
func FormatReading(r sampler.Reading, now time.Time) ([]byte, error) {
	return json.Marshal(ReadingPayload{
		Timestamp: now.UTC().Format(time.RFC3339),
		Millis:    r.Millis,
		Raw:       r.Raw,
		Smoothed:  r.Smoothed,
		Voltage:   r.Voltage,
	})
}

// FormatCommand creates the JSON payload for a command.
func FormatCommand(c byte, a command.Action, now time.Time) ([]byte, error) {
	return json.Marshal(CommandPayload{
		Timestamp: now.UTC().Format(time.RFC3339),
		Command:   string(rune(c)),
		Target:    a.Target.String(),
		Direction: a.Direction.String(),
		Power:     a.Power,
	})
}

// Nop discards everything. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishReading(sampler.Reading) error      { return nil }
func (Nop) PublishCommand(byte, command.Action) error { return nil }
func (Nop) Close() error                              { return nil }
