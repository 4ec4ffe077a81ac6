package config

import (
	"fmt"
	"os"
	"time"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/itohio/tegctl/pkg/hal"
	"github.com/itohio/tegctl/pkg/sampler"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial  SerialConfig   `yaml:"serial"`
	Sampler sampler.Config `yaml:"sampler"`
	Driver  command.Config `yaml:"driver"`
	MQTT    MQTTConfig     `yaml:"mqtt"`
	Linux   LinuxConfig    `yaml:"linux"`
	Mock    MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the two boards.
type SerialConfig struct {
	SamplerPort string `yaml:"sampler_port"`
	DriverPort  string `yaml:"driver_port"`
	BaudRate    int    `yaml:"baud_rate"`
}

// MQTTConfig contains telemetry publishing configuration. An empty broker
// disables publishing.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"` // prefix; readings and commands go below it
}

// LinuxConfig contains pin bindings when the loops run on a Linux board.
type LinuxConfig struct {
	I2CBus       string    `yaml:"i2c_bus"`
	ADCAddress   uint16    `yaml:"adc_address"`
	PWMFrequency int       `yaml:"pwm_frequency"` // Hz
	Left         PinConfig `yaml:"left"`
	Right        PinConfig `yaml:"right"`
}

// PinConfig binds one actuator to GPIO names.
type PinConfig struct {
	PWM  string `yaml:"pwm"`
	DirA string `yaml:"dir_a"`
	DirB string `yaml:"dir_b"`
}

// MockConfig contains simulated sensor configuration.
type MockConfig struct {
	Bias   float64       `yaml:"bias"`   // Centre count
	Swing  float64       `yaml:"swing"`  // Sine amplitude in counts
	Noise  float64       `yaml:"noise"`  // Noise amplitude in counts
	Period time.Duration `yaml:"period"` // Sine period
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			SamplerPort: "/dev/ttyACM0",
			DriverPort:  "/dev/ttyACM1",
			BaudRate:    hal.DefaultBaudRate,
		},
		Sampler: sampler.DefaultConfig(),
		Driver:  command.DefaultConfig(),
		MQTT: MQTTConfig{
			Broker:   "", // Disabled by default
			ClientID: "tegctl",
			Topic:    "teg",
		},
		Linux: LinuxConfig{
			I2CBus:       "1",
			ADCAddress:   0x48,
			PWMFrequency: 1000,
			Left:         PinConfig{PWM: "GPIO12", DirA: "GPIO5", DirB: "GPIO6"},
			Right:        PinConfig{PWM: "GPIO13", DirA: "GPIO20", DirB: "GPIO21"},
		},
		Mock: MockConfig{
			Bias:   512,
			Swing:  200,
			Noise:  40,
			Period: 20 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.SamplerPort == "" {
		c.Serial.SamplerPort = def.Serial.SamplerPort
	}
	if c.Serial.DriverPort == "" {
		c.Serial.DriverPort = def.Serial.DriverPort
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampler.IntervalMs == 0 {
		c.Sampler.IntervalMs = def.Sampler.IntervalMs
	}
	if c.Sampler.Alpha <= 0 || c.Sampler.Alpha >= 1 {
		c.Sampler.Alpha = def.Sampler.Alpha
	}
	if c.Sampler.VRef == 0 {
		c.Sampler.VRef = def.Sampler.VRef
	}
	if c.Sampler.FullScale == 0 {
		c.Sampler.FullScale = def.Sampler.FullScale
	}

	// Only a missing key takes the default: 0 keeps the module off.
	if c.Driver.LeftPower == nil {
		c.Driver.LeftPower = def.Driver.LeftPower
	}
	if c.Driver.RightPower == nil {
		c.Driver.RightPower = def.Driver.RightPower
	}
	if c.Driver.PollDelay == 0 {
		c.Driver.PollDelay = def.Driver.PollDelay
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = def.MQTT.ClientID
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = def.MQTT.Topic
	}

	if c.Linux.I2CBus == "" {
		c.Linux.I2CBus = def.Linux.I2CBus
	}
	if c.Linux.ADCAddress == 0 {
		c.Linux.ADCAddress = def.Linux.ADCAddress
	}
	if c.Linux.PWMFrequency == 0 {
		c.Linux.PWMFrequency = def.Linux.PWMFrequency
	}
	if c.Linux.Left == (PinConfig{}) {
		c.Linux.Left = def.Linux.Left
	}
	if c.Linux.Right == (PinConfig{}) {
		c.Linux.Right = def.Linux.Right
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}
