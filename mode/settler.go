package mode

import (
	"github.com/orsinium-labs/tinymath"

	"bldc/angle"
)

const (
	// NumSamples is the settle-detector window size.
	NumSamples = 500
	// MaxDeviation is the widest spread around the window mean still
	// considered "at rest".
	MaxDeviation = angle.Pi2 / 10000
)

// Settler declares the rotor at rest once a full window of position
// samples all lie within MaxDeviation of their mean. The window is a
// ring: the newest sample evicts the oldest, so the verdict always
// covers the NumSamples latest readings. Requiring the whole window to
// hug its mean rejects post-ramp oscillation without tuning a time
// constant.
type Settler struct {
	samples [NumSamples]float32
	next    int
	count   int
}

// Reset discards all collected samples.
func (s *Settler) Reset() {
	s.next = 0
	s.count = 0
}

// AddSample ingests one position reading. It returns the window mean
// and true once at least NumSamples have been collected and every
// retained sample is within MaxDeviation of that mean. It never
// reports settled before the window fills.
func (s *Settler) AddSample(sample float32) (float32, bool) {
	s.samples[s.next] = sample
	s.next++
	if s.next == NumSamples {
		s.next = 0
	}
	if s.count < NumSamples {
		s.count++
		if s.count < NumSamples {
			return 0, false
		}
	}

	// Accumulate relative to one sample; a window of identical
	// readings then yields exactly that reading, and the float32 sum
	// stays small against MaxDeviation.
	base := s.samples[0]
	var acc float32
	for i := 0; i < NumSamples; i++ {
		acc += s.samples[i] - base
	}
	mean := base + acc/NumSamples

	for i := 0; i < NumSamples; i++ {
		if tinymath.Abs(mean-s.samples[i]) > MaxDeviation {
			return 0, false
		}
	}
	return mean, true
}
