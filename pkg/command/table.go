package command

import (
	"errors"
	"time"
)

const (
	// DefaultLeftPower is the duty cycle for the left module.
	DefaultLeftPower = 255
	// DefaultRightPower is the duty cycle for the right module.
	DefaultRightPower = 135
	// DefaultPollDelay bounds throughput to 10 commands per second.
	DefaultPollDelay = 100 * time.Millisecond
)

// ErrIgnoredInput classifies a byte with no entry in the command table. The
// loop drops such bytes silently: no actuator call, no echo.
var ErrIgnoredInput = errors.New("ignored input")

// Target selects which actuator an action applies to.
type Target uint8

const (
	Left Target = iota
	Right
	Both
)

func (t Target) String() string {
	switch t {
	case Left:
		return "left"
	case Right:
		return "right"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// Direction is what to do with the target.
type Direction uint8

const (
	Forward Direction = iota
	Backward
	Stop
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Action is one table entry.
type Action struct {
	Target    Target
	Direction Direction
	Power     uint8 // ignored for Stop
}

// Table maps a command byte to its action.
type Table map[byte]Action

// Config contains driver parameters. A nil power means "not configured"; 0
// is a valid duty that keeps the module off.
type Config struct {
	LeftPower  *uint8        `yaml:"left_power,omitempty"`
	RightPower *uint8        `yaml:"right_power,omitempty"`
	PollDelay  time.Duration `yaml:"poll_delay"`
}

// DefaultConfig returns full power on the left module, 135/255 on the right
// and a 100ms poll delay.
func DefaultConfig() Config {
	return Config{
		LeftPower:  Power(DefaultLeftPower),
		RightPower: Power(DefaultRightPower),
		PollDelay:  DefaultPollDelay,
	}
}

// Power returns a pointer to duty for use in Config.
func Power(duty uint8) *uint8 {
	return &duty
}

// Left returns the configured left power, or the default when unset.
func (c Config) Left() uint8 {
	if c.LeftPower == nil {
		return DefaultLeftPower
	}
	return *c.LeftPower
}

// Right returns the configured right power, or the default when unset.
func (c Config) Right() uint8 {
	if c.RightPower == nil {
		return DefaultRightPower
	}
	return *c.RightPower
}

// NewTable builds the command table:
//
//	a  left forward     d  left backward
//	w  right forward    x  right backward
//	s  stop both
func NewTable(leftPower, rightPower uint8) Table {
	return Table{
		'a': {Target: Left, Direction: Forward, Power: leftPower},
		'd': {Target: Left, Direction: Backward, Power: leftPower},
		'w': {Target: Right, Direction: Forward, Power: rightPower},
		'x': {Target: Right, Direction: Backward, Power: rightPower},
		's': {Target: Both, Direction: Stop},
	}
}

// Lookup returns the action for c, or ErrIgnoredInput.
func (t Table) Lookup(c byte) (Action, error) {
	a, ok := t[c]
	if !ok {
		return Action{}, ErrIgnoredInput
	}
	return a, nil
}
