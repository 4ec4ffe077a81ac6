//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"errors"
	"machine"
	"time"

	"github.com/itohio/tegctl/pkg/sampler"
)

var errNoChannel = errors.New("no such analog channel")

// boardClock counts milliseconds since boot on a wrapping 32-bit counter.
type boardClock struct {
	boot time.Time
}

func (c boardClock) Millis() uint32 {
	return uint32(time.Since(c.boot).Milliseconds())
}

// boardADC exposes the configured analog pins as channels 0..n-1.
type boardADC struct {
	adcs []machine.ADC
}

// ReadAnalog returns a 10-bit count. TinyGo scales every ADC to 16 bits.
func (a boardADC) ReadAnalog(channel int) (uint16, error) {
	if channel < 0 || channel >= len(a.adcs) {
		return 0, errNoChannel
	}
	return a.adcs[channel].Get() >> (16 - ADC_RESOLUTION), nil
}

func main() {
	clock := boardClock{boot: time.Now()}

	machine.InitADC()
	PIN_SENSOR.Configure(machine.PinConfig{Mode: machine.PinInput})
	sensor := machine.ADC{Pin: PIN_SENSOR}
	sensor.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart := machine.Serial
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})

	cfg := sampler.DefaultConfig()
	cfg.IntervalMs = SAMPLE_INTERVAL_MS
	cfg.VRef = float64(ADC_REFERENCE_MV) / 1000
	cfg.FullScale = 1 << ADC_RESOLUTION

	s := sampler.New(cfg, clock, boardADC{adcs: []machine.ADC{sensor}}, uart)

	// Never returns: the loop runs until power-off.
	s.Run(context.Background(), IDLE_US*time.Microsecond)
}
