// Package smooth implements the single-pole exponential filter used to
// denoise analog readings before they are converted to volts.
package smooth

// DefaultAlpha puts 90% of the weight on history. Strong smoothing, slow response.
const DefaultAlpha = 0.9

// Filter is a stateful single-pole IIR filter:
//
//	y[n] = alpha*y[n-1] + (1-alpha)*x[n]
//
// The first sample bootstraps the filter and is returned unchanged.
// The zero value is not usable until Alpha is set; use New.
type Filter struct {
	Alpha float64

	last   float64
	primed bool // set by the first Update
}

// New creates a filter with the given weight on history. Alpha outside (0,1)
// falls back to DefaultAlpha.
func New(alpha float64) *Filter {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	return &Filter{Alpha: alpha}
}

// Update feeds one raw sample and returns the smoothed value.
func (f *Filter) Update(raw float64) float64 {
	if !f.primed {
		f.last = raw
		f.primed = true
		return raw
	}

	f.last = f.Alpha*f.last + (1-f.Alpha)*raw
	return f.last
}

// Value returns the last smoothed value and whether any sample has been seen.
func (f *Filter) Value() (float64, bool) {
	return f.last, f.primed
}

// Reset drops history; the next Update bootstraps again.
func (f *Filter) Reset() {
	f.last = 0
	f.primed = false
}
