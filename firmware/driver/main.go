//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/tegctl/pkg/actuator"
	"github.com/itohio/tegctl/pkg/command"
)

// pwmGroup is the subset of a TinyGo timer/counter used for PWM.
type pwmGroup interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// pwmOut is one PWM channel scaled to an 8-bit duty cycle.
type pwmOut struct {
	group   pwmGroup
	channel uint8
}

func (p pwmOut) SetDuty(duty uint8) {
	p.group.Set(p.channel, p.group.Top()*uint32(duty)/actuator.MaxDuty)
}

func newPWMOut(group pwmGroup, pin machine.Pin) pwmOut {
	ch, err := group.Channel(pin)
	if err != nil {
		println("pwm channel:", err.Error())
	}
	return pwmOut{group: group, channel: ch}
}

func output(pin machine.Pin) machine.Pin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return pin
}

func main() {
	// Both power pins share one timer so they run on the same carrier
	pwm := machine.TCC0
	if err := pwm.Configure(machine.PWMConfig{Period: PWM_PERIOD_NS}); err != nil {
		println("pwm configure:", err.Error())
	}

	left := actuator.New("TEG_L", newPWMOut(pwm, PIN_TEG_L_PWM), output(PIN_TEG_L_A), output(PIN_TEG_L_B))
	right := actuator.New("TEG_R", newPWMOut(pwm, PIN_TEG_R_PWM), output(PIN_TEG_R_A), output(PIN_TEG_R_B))

	uart := machine.Serial
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	d := command.New(command.Config{
		LeftPower:  command.Power(LEFT_POWER),
		RightPower: command.Power(RIGHT_POWER),
		PollDelay:  POLL_DELAY_MS * time.Millisecond,
	}, uart, left, right)

	ctx := context.Background()

	// Hold until the host sends something, then announce readiness
	d.WaitReady(ctx)

	// Never returns: the loop runs until power-off.
	d.Run(ctx)
}
