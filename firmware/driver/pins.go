//go:build tinygo

package main

import "machine"

const (
	// Left TEG module (H-bridge channel A)
	PIN_TEG_L_PWM = machine.D2
	PIN_TEG_L_A   = machine.D7
	PIN_TEG_L_B   = machine.D8

	// Right TEG module (H-bridge channel B)
	PIN_TEG_R_PWM = machine.D3
	PIN_TEG_R_A   = machine.D9
	PIN_TEG_R_B   = machine.D10

	// PWM carrier period in nanoseconds (1 kHz)
	PWM_PERIOD_NS = 1e6

	// Power levels; still being tuned on the bench
	LEFT_POWER  = 255
	RIGHT_POWER = 135

	// Commands are polled at most every 100ms
	POLL_DELAY_MS = 100

	UART_BAUD_RATE = 9600
)
