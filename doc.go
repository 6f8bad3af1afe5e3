// Package fmdemod provides a streaming FM quadrature demodulator in pure Go.
//
// The demodulator turns complex baseband (I/Q) samples into a real signal
// proportional to instantaneous frequency deviation. It is the demodulation
// step of a software-defined-radio receive chain; capture, channel
// filtering, resampling, de-emphasis and audio output are left to the
// surrounding application.
//
// # Theory
//
// An FM signal carries its message in the derivative of its phase:
//
//	s(t) = a(t) cos(ωc·t + φ(t)),   φ(t) = ωΔ ∫ x(τ) dτ
//
// so the message is recovered as x(t) = ωΔ⁻¹ · dφ/dt. In discrete time the
// derivative becomes a backward difference φ[n] − φ[n−1]. Rather than
// subtracting unwrapped phases, the demodulator evaluates the argument of
// the product of the current sample with the conjugate of the previous one:
//
//	arg(p[n] · conj(p[n−1])) = φ[n] − φ[n−1]   (mod (−π, π])
//
// which yields the wrapped difference directly for any deviation up to the
// Nyquist limit. Each output is that angle multiplied by a fixed gain.
//
// # Quick Start
//
// For normalised output, where ±deviation maps to ±1:
//
//	d, err := fmdemod.NewForDeviation(fmdemod.DeviationBroadcast, 240000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range iqChunks {
//	    audio := d.DemodulateBlock(chunk)
//	    sink(audio)
//	}
//
// For raw radians per sample use New(fmdemod.GainRadians).
//
// Real-time callbacks should use [Demodulator.Demodulate] or
// [Demodulator.DemodulateInto], neither of which allocates.
//
// # Streaming
//
// A [Demodulator] carries the previous sample across calls, so splitting a
// stream into blocks of any size produces exactly the same output as
// processing it in one call. The very first output of a fresh (or reset)
// demodulator is computed against the zero sample: it equals the phase of
// the first sample, atan2(Q, I), times the gain.
//
// # Numeric Edge Cases
//
// Once the first sample has been seen, a zero conjugate product (either
// sample is 0+0i) is defined to give a phase difference of 0, following
// the atan2(0, 0) = 0 convention. An exact −π is reported as +π, so every
// output lies in (−π, π] × gain. This holds for finite samples of any
// magnitude: a conjugate product that would overflow or underflow is
// recomputed from power-of-two rescaled samples. NaN and Inf inputs are
// not rejected; they propagate by ordinary IEEE 754 rules, and a NaN gain
// makes every output NaN.
//
// # Thread Safety
//
// A [Demodulator] is not safe for concurrent use. Create one per stream;
// construction is cheap and allocates only the state itself.
package fmdemod
