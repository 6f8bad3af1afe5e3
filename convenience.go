package fmdemod

// Common peak deviations in Hz for convenience constructors.
const (
	// DeviationBroadcast is the peak deviation of FM broadcast radio
	// (75 kHz, 150 kHz occupied bandwidth).
	DeviationBroadcast = 75000.0

	// DeviationNarrowband is the peak deviation of 12.5 kHz channelised
	// narrowband FM (2.5 kHz).
	DeviationNarrowband = 2500.0

	// DeviationNarrowbandWide is the peak deviation of 25 kHz channelised
	// narrowband FM, common on amateur and land-mobile radios (5 kHz).
	DeviationNarrowbandWide = 5000.0
)

// GainRadians leaves the output in raw radians per sample, in (−π, π].
const GainRadians = 1.0

// GainForDeviation returns sampleRate / (2π · deviation), the gain that maps a
// frequency offset of ±deviation Hz to an output of ±1. No validation is
// performed; see NewForDeviation for a checked constructor.
func GainForDeviation(sampleRate, deviation float64) float64 {
	return sampleRate / (twoPi * deviation)
}

// NewBroadcast creates a normalised demodulator for FM broadcast at the
// given sample rate.
func NewBroadcast(sampleRate float64) (*Demodulator, error) {
	return NewForDeviation(DeviationBroadcast, sampleRate)
}

// NewNarrowband creates a normalised demodulator for 2.5 kHz narrowband FM.
func NewNarrowband(sampleRate float64) (*Demodulator, error) {
	return NewForDeviation(DeviationNarrowband, sampleRate)
}

// DemodulateOnce is a convenience function for one-shot demodulation of a
// complete capture. It uses a fresh demodulator, so the first output is
// relative to the zero sample.
func DemodulateOnce(samples []complex128, gain float64) []float64 {
	return New(gain).DemodulateBlock(samples)
}

// IQFromInterleaved converts interleaved I/Q values to complex samples.
// Input format: [I0, Q0, I1, Q1, ...]; a trailing odd value is ignored.
func IQFromInterleaved(interleaved []float64) []complex128 {
	numSamples := len(interleaved) / iqComponents
	result := make([]complex128, numSamples)
	for i := range numSamples {
		result[i] = complex(interleaved[i*iqComponents], interleaved[i*iqComponents+1])
	}
	return result
}

// IQFromChannels combines separate I and Q channels into complex samples.
// The result has the length of the shorter channel.
func IQFromChannels(i, q []float64) []complex128 {
	minLen := min(len(i), len(q))
	result := make([]complex128, minLen)
	for n := range minLen {
		result[n] = complex(i[n], q[n])
	}
	return result
}

// IQFromComplex64 widens single-precision samples, as produced by most SDR
// drivers, to complex128.
func IQFromComplex64(samples []complex64) []complex128 {
	result := make([]complex128, len(samples))
	for i, s := range samples {
		result[i] = complex128(s)
	}
	return result
}
