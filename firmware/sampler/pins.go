//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 50  // One output line every 50ms
	IDLE_US            = 100 // Pause between polls so the loop does not hog the core

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts
	ADC_RESOLUTION   = 10   // 10-bit converter, counts 0..1023

	// Analog input for the sensor amplifier (channel 0)
	PIN_SENSOR = machine.A0

	// Serial configuration
	// Line format "<millis>,<volts>\n", e.g. "4294967295,4.99\n" = 16 bytes max.
	// 20 lines/sec * 16 bytes = 320 bytes/sec, 3200 baud minimum at 8N1.
	UART_BAUD_RATE = 9600
)
