// Package spectrum provides the small amount of frequency-domain analysis
// needed to check demodulated audio: dominant tone and RMS level.
package spectrum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/tphakala/go-fm-demod/internal/simdops"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Analysis constants.
const (
	// minSamples is the shortest input with at least one bin either side
	// of the first non-DC bin.
	minSamples = 4

	// parabolicDivisor is the 1/2 factor in three-point peak interpolation.
	parabolicDivisor = 2
)

var (
	// ErrTooShort indicates too few samples for spectral analysis.
	ErrTooShort = errors.New("signal too short for spectral analysis")

	// ErrInvalidRate indicates a non-positive or non-finite sample rate.
	ErrInvalidRate = errors.New("invalid sample rate")
)

// PeakFrequency returns the frequency in Hz of the strongest spectral
// component of samples, excluding DC. The signal is mean-removed and
// Hann-windowed before a real FFT, and the peak bin is refined by
// parabolic interpolation over its neighbours. The input is not modified.
func PeakFrequency(samples []float64, sampleRate float64) (float64, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidRate, sampleRate)
	}
	n := len(samples)
	if n < minSamples {
		return 0, fmt.Errorf("%w: need %d samples, have %d", ErrTooShort, minSamples, n)
	}

	ops := simdops.Float64Ops()
	mean := ops.Sum(samples) / float64(n)
	seq := make([]float64, n)
	for i, v := range samples {
		seq[i] = v - mean
	}
	window.Hann(seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
	}

	peak := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[peak] {
			peak = i
		}
	}

	offset := 0.0
	if peak+1 < len(mags) {
		a, b, c := mags[peak-1], mags[peak], mags[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			offset = (a - c) / (parabolicDivisor * denom)
		}
	}

	return (float64(peak) + offset) * sampleRate / float64(n), nil
}

// RMS returns the root-mean-square level of samples, or 0 for empty input.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	energy := simdops.Float64Ops().DotProductUnsafe(samples, samples)
	return math.Sqrt(energy / float64(len(samples)))
}
