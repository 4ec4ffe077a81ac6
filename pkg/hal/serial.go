package hal

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate matches UART_BAUD_RATE in both firmware builds.
const DefaultBaudRate = 9600

// OpenSerial opens a serial port in 8N1 at the given baud rate (0 = default).
func OpenSerial(port string, baudRate int) (serial.Port, error) {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	p, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return p, nil
}

// Ports returns the names of the serial ports present on the host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}
