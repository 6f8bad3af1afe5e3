package fmdemod

import (
	"errors"
	"fmt"
	"iter"
	"math"
)

// Common errors returned by the demodulator.
var (
	// ErrInvalidDeviation indicates a deviation or sample rate that cannot
	// produce a meaningful gain.
	ErrInvalidDeviation = errors.New("invalid frequency deviation")

	// ErrBufferTooSmall indicates the output buffer is too small.
	ErrBufferTooSmall = errors.New("output buffer too small")
)

// Demodulator is a stateful FM quadrature demodulator for one sample stream.
//
// Before the first sample the history is the zero sample. The first output
// after New or Reset is the phase of the first input measured from that
// sentinel, atan2(Q, I) × gain, or 0 if the first input is itself zero.
// From then on a zero sample on either side of a difference yields 0.
//
// The output is therefore not a function of (Previous, sample, gain) alone:
// a fresh demodulator and one that has just consumed 0 both report a zero
// Previous, yet New(1).Demodulate(1i) is π/2 while the second returns 0.
// The extra first-call bit makes a stream's opening sample carry its
// absolute phase instead of reading as silence.
//
// The gain is fixed at construction. A Demodulator must not be used from
// multiple goroutines at once.
type Demodulator struct {
	gain   float64
	prev   complex128
	primed bool // false until the first sample after New or Reset
}

// New creates a demodulator that multiplies each phase difference, in
// radians per sample, by gain. The gain is not validated; a NaN gain makes
// every output NaN.
func New(gain float64) *Demodulator {
	return &Demodulator{gain: gain}
}

// NewForDeviation creates a demodulator whose output is normalised so that a
// frequency offset of ±deviation Hz maps to ±1. Both arguments are in Hz and
// the deviation must not exceed the Nyquist limit sampleRate/2.
func NewForDeviation(deviation, sampleRate float64) (*Demodulator, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive and finite, got %v", ErrInvalidDeviation, sampleRate)
	}
	if !(deviation > 0) {
		return nil, fmt.Errorf("%w: deviation must be positive, got %v", ErrInvalidDeviation, deviation)
	}
	if deviation > sampleRate/nyquistDivisor {
		return nil, fmt.Errorf("%w: deviation %v Hz exceeds Nyquist limit %v Hz",
			ErrInvalidDeviation, deviation, sampleRate/nyquistDivisor)
	}
	return New(GainForDeviation(sampleRate, deviation)), nil
}

// Demodulate returns the scaled phase difference between sample and the
// previously supplied sample, then remembers sample for the next call.
// It does not allocate.
func (d *Demodulator) Demodulate(sample complex128) float64 {
	var phase float64
	if d.primed {
		phase = phaseDiff(sample, d.prev)
	} else {
		phase = argument(real(sample), imag(sample))
		d.primed = true
	}
	d.prev = sample
	return phase * d.gain
}

// DemodulateBlock demodulates samples in order and returns a new slice of
// the same length. The result is identical to calling Demodulate on each
// sample in turn, so consecutive blocks form one continuous stream.
func (d *Demodulator) DemodulateBlock(samples []complex128) []float64 {
	if len(samples) == 0 {
		return nil
	}
	output := make([]float64, len(samples))
	d.demodulate(output, samples)
	return output
}

// DemodulateInto is the allocation-free form of DemodulateBlock. It writes
// len(samples) outputs to the front of dst and returns that count. If dst is
// shorter than samples it returns ErrBufferTooSmall and leaves the
// demodulator state untouched.
func (d *Demodulator) DemodulateInto(dst []float64, samples []complex128) (int, error) {
	if len(dst) < len(samples) {
		return 0, fmt.Errorf("%w: need %d, have %d", ErrBufferTooSmall, len(samples), len(dst))
	}
	d.demodulate(dst, samples)
	return len(samples), nil
}

// Stream returns a lazy sequence that demodulates samples as they are
// pulled. State is shared with the demodulator, so interleaving Stream with
// the other methods keeps a single continuous history.
func (d *Demodulator) Stream(samples iter.Seq[complex128]) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for s := range samples {
			if !yield(d.Demodulate(s)) {
				return
			}
		}
	}
}

// Reset restores the zero-sample history, so the next output is again
// measured from the sentinel. The gain is unchanged.
func (d *Demodulator) Reset() {
	d.prev = 0
	d.primed = false
}

// Gain returns the gain fixed at construction.
func (d *Demodulator) Gain() float64 {
	return d.gain
}

// Previous returns the most recently demodulated sample, or 0 before the
// first call.
func (d *Demodulator) Previous() complex128 {
	return d.prev
}

func (d *Demodulator) demodulate(dst []float64, samples []complex128) {
	for i, s := range samples {
		dst[i] = d.Demodulate(s)
	}
}

// phaseDiff returns arg(cur · conj(prev)) in (−π, π]. When the product of
// two finite samples overflows or underflows, both are rescaled by powers
// of two first; the argument does not depend on either magnitude.
func phaseDiff(cur, prev complex128) float64 {
	p := conjProduct(cur, prev)
	if !isFinite(p) || (p == 0 && cur != 0 && prev != 0) {
		if isFinite(cur) && isFinite(prev) {
			p = conjProduct(normalize(cur), normalize(prev))
		}
	}
	return argument(real(p), imag(p))
}

func conjProduct(cur, prev complex128) complex128 {
	return cur * complex(real(prev), -imag(prev))
}

// normalize scales z by 2^-e so its larger component lies in [0.5, 1).
func normalize(z complex128) complex128 {
	re, im := real(z), imag(z)
	_, e := math.Frexp(math.Max(math.Abs(re), math.Abs(im)))
	return complex(math.Ldexp(re, -e), math.Ldexp(im, -e))
}

func isFinite(z complex128) bool {
	re, im := real(z), imag(z)
	return !math.IsNaN(re) && !math.IsInf(re, 0) && !math.IsNaN(im) && !math.IsInf(im, 0)
}

// argument is atan2(im, re) folded into (−π, π], with atan2(0, 0) = 0
// for either sign of zero.
func argument(re, im float64) float64 {
	// math.Atan2 returns ±π for a negative-zero re.
	if re == 0 && im == 0 {
		return 0
	}
	phase := math.Atan2(im, re)
	if phase == -math.Pi {
		return math.Pi
	}
	return phase
}
