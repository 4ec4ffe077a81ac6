package sampler

import "strconv"

const (
	// DefaultVRef is the ADC reference voltage in volts.
	DefaultVRef = 5.0
	// DefaultFullScale is the count range of a 10-bit ADC (0..1023).
	DefaultFullScale = 1024.0
)

// ToVoltage converts a (possibly smoothed) ADC count to volts.
// Formula: V = sample * vref / fullScale
func ToVoltage(sample, vref, fullScale float64) float64 {
	return sample * vref / fullScale
}

// AppendLine appends the wire form of a reading, "<millis>,<volts>\n" with
// volts printed to two decimals, e.g. "1234,2.50\n".
func AppendLine(dst []byte, r Reading) []byte {
	dst = strconv.AppendUint(dst, uint64(r.Millis), 10)
	dst = append(dst, ',')
	dst = strconv.AppendFloat(dst, r.Voltage, 'f', 2, 64)
	return append(dst, '\n')
}
