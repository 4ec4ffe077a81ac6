package config

import (
	"os"
	"testing"
	"time"

	"github.com/itohio/tegctl/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.SamplerPort)
	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.DriverPort)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, uint32(50), cfg.Sampler.IntervalMs)
	assert.Equal(t, 0.9, cfg.Sampler.Alpha)
	assert.Equal(t, 5.0, cfg.Sampler.VRef)
	assert.Equal(t, 1024.0, cfg.Sampler.FullScale)
	assert.Equal(t, uint8(255), cfg.Driver.Left())
	assert.Equal(t, uint8(135), cfg.Driver.Right())
	assert.Equal(t, 100*time.Millisecond, cfg.Driver.PollDelay)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, "teg", cfg.MQTT.Topic)
	assert.Equal(t, "GPIO12", cfg.Linux.Left.PWM)
	assert.Equal(t, 20*time.Second, cfg.Mock.Period)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.SamplerPort)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	return tmpfile.Name()
}

func TestLoad_ValidYAML(t *testing.T) {
	name := writeTemp(t, `
serial:
  sampler_port: "/dev/ttyUSB0"
  driver_port: "/dev/ttyUSB1"
  baud_rate: 57600

sampler:
  channel: 2
  interval_ms: 20
  alpha: 0.75
  vref: 3.3
  full_scale: 4096

driver:
  left_power: 200
  right_power: 180
  poll_delay: 50ms

mqtt:
  broker: "tcp://localhost:1883"
  topic: "lab/teg"

linux:
  i2c_bus: "0"
  adc_address: 73
  left:
    pwm: "GPIO18"
    dir_a: "GPIO23"
    dir_b: "GPIO24"
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.SamplerPort)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.DriverPort)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 2, cfg.Sampler.Channel)
	assert.Equal(t, uint32(20), cfg.Sampler.IntervalMs)
	assert.Equal(t, 0.75, cfg.Sampler.Alpha)
	assert.Equal(t, 3.3, cfg.Sampler.VRef)
	assert.Equal(t, 4096.0, cfg.Sampler.FullScale)
	assert.Equal(t, uint8(200), cfg.Driver.Left())
	assert.Equal(t, uint8(180), cfg.Driver.Right())
	assert.Equal(t, 50*time.Millisecond, cfg.Driver.PollDelay)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "lab/teg", cfg.MQTT.Topic)
	assert.Equal(t, "tegctl", cfg.MQTT.ClientID) // default
	assert.Equal(t, "0", cfg.Linux.I2CBus)
	assert.Equal(t, uint16(73), cfg.Linux.ADCAddress)
	assert.Equal(t, PinConfig{PWM: "GPIO18", DirA: "GPIO23", DirB: "GPIO24"}, cfg.Linux.Left)
	assert.Equal(t, "GPIO13", cfg.Linux.Right.PWM) // default
}

func TestLoad_InvalidYAML(t *testing.T) {
	name := writeTemp(t, "invalid: yaml: content: [")

	cfg, err := Load(name)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PowerOutOfRange(t *testing.T) {
	name := writeTemp(t, `
driver:
  left_power: 300
`)

	_, err := Load(name)
	assert.Error(t, err)
}

func TestLoad_ZeroPowerKept(t *testing.T) {
	name := writeTemp(t, `
driver:
  left_power: 0
  right_power: 0
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	require.NotNil(t, cfg.Driver.LeftPower)
	require.NotNil(t, cfg.Driver.RightPower)
	assert.Equal(t, uint8(0), cfg.Driver.Left())
	assert.Equal(t, uint8(0), cfg.Driver.Right())
}

func TestLoad_PartialYAML(t *testing.T) {
	name := writeTemp(t, `
driver:
  right_power: 90
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, uint8(90), cfg.Driver.Right())
	assert.Equal(t, uint8(255), cfg.Driver.Left())      // default
	assert.Equal(t, uint32(50), cfg.Sampler.IntervalMs) // default
	assert.Equal(t, "/dev/ttyACM1", cfg.Serial.DriverPort)
}

func TestLoad_ZeroedFieldsGetDefaults(t *testing.T) {
	name := writeTemp(t, `
sampler:
  interval_ms: 0
  alpha: 1.5
driver:
  poll_delay: 0s
`)

	cfg, err := Load(name)
	require.NoError(t, err)

	assert.Equal(t, uint32(50), cfg.Sampler.IntervalMs)
	assert.Equal(t, 0.9, cfg.Sampler.Alpha)
	assert.Equal(t, 100*time.Millisecond, cfg.Driver.PollDelay)
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.DriverPort = "/dev/ttyUSB3"
	cfg.Driver.RightPower = command.Power(150)
	cfg.Sampler.IntervalMs = 25

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", loaded.Serial.DriverPort)
	assert.Equal(t, uint8(150), loaded.Driver.Right())
	assert.Equal(t, uint32(25), loaded.Sampler.IntervalMs)
	assert.Equal(t, cfg.Driver.PollDelay, loaded.Driver.PollDelay)
}
