// Package actuator drives a bidirectional thermoelectric (TEG) module through
// an H-bridge: one PWM power pin and two direction pins.
package actuator

import "github.com/chewxy/math32"

// MaxDuty is full power.
const MaxDuty = 255

// DigitalOut is a binary output. machine.Pin satisfies it.
type DigitalOut interface {
	Set(level bool)
}

// PWMOut is an 8-bit duty cycle output.
type PWMOut interface {
	SetDuty(duty uint8)
}

// State is the electrical state of an actuator.
type State uint8

const (
	// Uninitialized means no command was applied yet. Pins default low, so
	// it behaves as Stopped.
	Uninitialized State = iota
	Stopped
	Forward
	Backward
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "uninitialized"
	}
}

// Actuator is one TEG module. Direction pins are always driven to a mutually
// exclusive pair: (high, low) forward, (low, high) backward, (low, low) stopped.
type Actuator struct {
	Name string

	power PWMOut
	dirA  DigitalOut
	dirB  DigitalOut

	state State
	duty  uint8
}

// New binds an actuator to its pins. Nothing is driven until the first command.
func New(name string, power PWMOut, dirA, dirB DigitalOut) *Actuator {
	return &Actuator{
		Name:  name,
		power: power,
		dirA:  dirA,
		dirB:  dirB,
	}
}

// Forward drives current A->B at the given duty (0..255, unchecked).
func (a *Actuator) Forward(duty uint8) {
	a.drive(true, false, duty)
	a.state = Forward
}

// Backward drives current B->A at the given duty (0..255, unchecked).
func (a *Actuator) Backward(duty uint8) {
	a.drive(false, true, duty)
	a.state = Backward
}

// Stop releases both direction pins and removes power.
func (a *Actuator) Stop() {
	a.drive(false, false, 0)
	a.state = Stopped
}

// Direction pins go first so the bridge never sees power with both legs on.
func (a *Actuator) drive(levelA, levelB bool, duty uint8) {
	if !levelA {
		a.dirA.Set(false)
	}
	if !levelB {
		a.dirB.Set(false)
	}
	if levelA {
		a.dirA.Set(true)
	}
	if levelB {
		a.dirB.Set(true)
	}
	a.power.SetDuty(duty)
	a.duty = duty
}

// State returns the last commanded state.
func (a *Actuator) State() State {
	return a.state
}

// Power returns the last commanded duty cycle.
func (a *Actuator) Power() uint8 {
	return a.duty
}

// Percent returns the duty cycle as a percentage of full power, rounded to
// one decimal.
func (a *Actuator) Percent() float32 {
	return math32.Round(float32(a.duty)*1000/MaxDuty) / 10
}
