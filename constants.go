package fmdemod

import "math"

// Gain and rate constants
const (
	nyquistDivisor = 2           // Nyquist limit is sampleRate / 2
	twoPi          = 2 * math.Pi // Radians per cycle
)

// Sample layout constants
const (
	iqComponents = 2 // Interleaved I/Q values per complex sample
)
