package hal

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// DefaultPWMFrequency is the carrier used for actuator power pins.
const DefaultPWMFrequency = 1 * physic.KiloHertz

// InitHost loads the periph host drivers. Call once before opening pins.
func InitHost() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init failed: %w", err)
	}
	return nil
}

// PeriphOutput is a digital output on a Linux GPIO line.
type PeriphOutput struct {
	name string
	pin  gpio.PinOut
}

// NewPeriphOutput looks up a pin by name (e.g. "GPIO23") and drives it low.
func NewPeriphOutput(name string) (*PeriphOutput, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %s not found", name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("configure %s as output: %w", name, err)
	}
	return &PeriphOutput{name: name, pin: pin}, nil
}

// Set drives the pin. Failures are logged; open-loop outputs have no caller
// that could act on them.
func (o *PeriphOutput) Set(level bool) {
	if err := o.pin.Out(gpio.Level(level)); err != nil {
		log.Printf("Failed to drive %s: %v", o.name, err)
	}
}

// PeriphPWM is a hardware PWM output on a Linux GPIO line.
type PeriphPWM struct {
	name string
	pin  gpio.PinOut
	freq physic.Frequency
}

// NewPeriphPWM looks up a PWM capable pin (e.g. "GPIO12") and holds it at 0%.
func NewPeriphPWM(name string, freq physic.Frequency) (*PeriphPWM, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("pwm pin %s not found", name)
	}
	if freq == 0 {
		freq = DefaultPWMFrequency
	}
	p := &PeriphPWM{name: name, pin: pin, freq: freq}
	if err := pin.PWM(0, freq); err != nil {
		return nil, fmt.Errorf("configure %s as pwm: %w", name, err)
	}
	return p, nil
}

// SetDuty maps an 8-bit duty cycle onto the pin.
func (p *PeriphPWM) SetDuty(duty uint8) {
	if err := p.pin.PWM(DutyFromByte(duty), p.freq); err != nil {
		log.Printf("Failed to set duty on %s: %v", p.name, err)
	}
}

// Halt stops the PWM carrier and leaves the pin low.
func (p *PeriphPWM) Halt() error {
	if err := p.pin.Halt(); err != nil {
		return fmt.Errorf("halt %s: %w", p.name, err)
	}
	return p.pin.Out(gpio.Low)
}

// DutyFromByte scales 0..255 to periph's 0..gpio.DutyMax.
func DutyFromByte(duty uint8) gpio.Duty {
	return gpio.Duty(int64(duty) * int64(gpio.DutyMax) / 255)
}

var adsChannels = [...]ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// ADS1115 reads single-ended channels of an ADS1115 over I2C and rescales
// the measured voltage to the 10-bit count range the sampler expects.
type ADS1115 struct {
	bus  i2c.BusCloser
	dev  *ads1x15.Dev
	vref float64
	pins map[int]ads1x15.PinADC
}

// OpenADS1115 opens the I2C bus (e.g. "1") and the converter at addr
// (0 = 0x48). vref is the voltage that maps to full scale.
func OpenADS1115(busName string, addr uint16, vref float64) (*ADS1115, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("i2c open failed on bus %s: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	if addr != 0 {
		opts.I2cAddress = addr
	}

	dev, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("ads1115 init failed: %w", err)
	}

	return &ADS1115{
		bus:  bus,
		dev:  dev,
		vref: vref,
		pins: make(map[int]ads1x15.PinADC),
	}, nil
}

// ReadAnalog takes one conversion on channel 0..3.
func (a *ADS1115) ReadAnalog(channel int) (uint16, error) {
	pin, err := a.pin(channel)
	if err != nil {
		return 0, err
	}

	s, err := pin.Read()
	if err != nil {
		return 0, fmt.Errorf("ads1115 channel %d: %w", channel, err)
	}

	return VoltsToCounts(float64(s.V)/float64(physic.Volt), a.vref), nil
}

func (a *ADS1115) pin(channel int) (ads1x15.PinADC, error) {
	if pin, ok := a.pins[channel]; ok {
		return pin, nil
	}
	if channel < 0 || channel >= len(adsChannels) {
		return nil, fmt.Errorf("ads1115 has no channel %d", channel)
	}

	maxV := physic.ElectricPotential(a.vref * float64(physic.Volt))
	pin, err := a.dev.PinForChannel(adsChannels[channel], maxV, 128*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		return nil, fmt.Errorf("ads1115 channel %d: %w", channel, err)
	}
	a.pins[channel] = pin
	return pin, nil
}

// Close halts open channels and releases the bus.
func (a *ADS1115) Close() error {
	for ch, pin := range a.pins {
		if err := pin.Halt(); err != nil {
			log.Printf("Error halting ads1115 channel %d: %v", ch, err)
		}
	}
	return a.bus.Close()
}

// VoltsToCounts converts a measured voltage to a 10-bit count, clamped to
// 0..MaxAnalog.
func VoltsToCounts(v, vref float64) uint16 {
	if vref <= 0 || v <= 0 {
		return 0
	}
	c := v / vref * (MaxAnalog + 1)
	if c > MaxAnalog {
		return MaxAnalog
	}
	return uint16(c)
}
