package hal

import "log"

// RecordingPin is a digital output test double that remembers every level.
type RecordingPin struct {
	Name    string
	Level   bool
	History []bool
}

// Set drives the pin.
func (p *RecordingPin) Set(level bool) {
	p.Level = level
	p.History = append(p.History, level)
}

// RecordingPWM is a PWM output test double that remembers every duty cycle.
type RecordingPWM struct {
	Name    string
	Duty    uint8
	History []uint8
}

// SetDuty drives the channel.
func (p *RecordingPWM) SetDuty(duty uint8) {
	p.Duty = duty
	p.History = append(p.History, duty)
}

// LogPin is a digital output that only logs level changes. Used when the
// driver loop runs without hardware.
type LogPin struct {
	Name  string
	level bool
}

// Set logs the new level if it changed.
func (p *LogPin) Set(level bool) {
	if p.level != level {
		log.Printf("%s -> %v", p.Name, level)
	}
	p.level = level
}

// LogPWM is a PWM output that only logs duty changes.
type LogPWM struct {
	Name string
	duty uint8
}

// SetDuty logs the new duty if it changed.
func (p *LogPWM) SetDuty(duty uint8) {
	if p.duty != duty {
		log.Printf("%s duty -> %d", p.Name, duty)
	}
	p.duty = duty
}
