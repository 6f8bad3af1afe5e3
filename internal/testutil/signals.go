package testutil

import (
	"math"
	"math/cmplx"
)

// Phasor returns the unit-magnitude sample at the given angle in radians.
func Phasor(angle float64) complex128 {
	return cmplx.Rect(1, angle)
}

// ConstantPhase returns n unit phasors whose angle advances by step radians
// per sample, starting at angle step (sample k is at (k+1)·step).
func ConstantPhase(n int, step float64) []complex128 {
	samples := make([]complex128, n)
	for k := range samples {
		samples[k] = Phasor(float64(k+1) * step)
	}
	return samples
}

// FMTone returns n baseband samples of a carrier frequency-modulated by a
// sine tone of toneFreq Hz with peak deviation Hz, sampled at sampleRate.
// The phase is integrated with a running Riemann sum so that the ideal
// demodulated output, at gain sampleRate/(2π·deviation), is
// sin(2π·toneFreq·k/sampleRate).
func FMTone(n int, sampleRate, toneFreq, deviation float64) []complex128 {
	samples := make([]complex128, n)
	angDev := 2 * math.Pi * deviation / sampleRate
	var phase float64
	for k := range samples {
		phase += angDev * math.Sin(2*math.Pi*toneFreq*float64(k)/sampleRate)
		samples[k] = Phasor(phase)
	}
	return samples
}

// NRZ returns a binary non-return-to-zero FM payload: each symbol (±1) is
// held for samplesPerSymbol samples, shifting the carrier by ±deviation Hz.
func NRZ(symbols []int, samplesPerSymbol int, deviation, sampleRate float64) []complex128 {
	samples := make([]complex128, 0, len(symbols)*samplesPerSymbol)
	angDev := 2 * math.Pi * deviation / sampleRate
	var phase float64
	for _, sym := range symbols {
		for range samplesPerSymbol {
			phase += angDev * float64(sym)
			samples = append(samples, Phasor(phase))
		}
	}
	return samples
}

// Scale returns a copy of samples multiplied by a real amplitude.
func Scale(samples []complex128, amplitude float64) []complex128 {
	scaled := make([]complex128, len(samples))
	for i, s := range samples {
		scaled[i] = s * complex(amplitude, 0)
	}
	return scaled
}
