package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	fmdemod "github.com/tphakala/go-fm-demod"
	"github.com/tphakala/go-fm-demod/internal/simdops"
	"github.com/tphakala/go-fm-demod/internal/spectrum"
)

const (
	// I/Q layout
	iqChannels    = 2
	audioChannels = 1

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32
	outputBitDepth  = bitsPerSample16
	wavFormatPCM    = 1

	// Full-scale values for normalisation
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

var (
	errNotIQ           = errors.New("input is not a 2-channel I/Q recording")
	errUnsupportedBits = errors.New("unsupported bit depth")
)

type demodOptions struct {
	deviation   float64 // Hz, used when gain is zero
	gain        float64 // explicit gain, overrides deviation
	volume      float64
	chunkFrames int
	verbose     bool
}

type demodStats struct {
	sampleRate int
	bitDepth   int
	frames     int64
	clipped    int64

	toneValid bool
	toneHz    float64
	rms       float64
}

// iqInput holds validated input file information.
type iqInput struct {
	file      *os.File
	decoder   *wav.Decoder
	rate      int
	bitDepth  int
	invMaxVal float64
}

// openIQInput opens a WAV file and checks that it carries 2-channel PCM I/Q.
func openIQInput(path string, verbose bool) (*iqInput, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit", format.SampleRate, format.NumChannels, bitDepth)
	}

	if format.NumChannels != iqChannels {
		_ = inputFile.Close()
		return nil, fmt.Errorf("%w: %s has %d channels", errNotIQ, path, format.NumChannels)
	}

	maxVal, err := fullScale(bitDepth)
	if err != nil {
		_ = inputFile.Close()
		return nil, err
	}

	return &iqInput{
		file:      inputFile,
		decoder:   decoder,
		rate:      format.SampleRate,
		bitDepth:  bitDepth,
		invMaxVal: 1 / maxVal,
	}, nil
}

// Close closes the input file.
func (in *iqInput) Close() error {
	return in.file.Close()
}

// fullScale returns the maximum PCM value for the given bit depth.
func fullScale(bitDepth int) (float64, error) {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16, nil
	case bitsPerSample24:
		return maxInt24, nil
	case bitsPerSample32:
		return maxInt32, nil
	default:
		return 0, fmt.Errorf("%w: %d", errUnsupportedBits, bitDepth)
	}
}

// newDemodulator picks an explicit gain when set, otherwise normalises to
// the configured deviation.
func newDemodulator(sampleRate int, opts demodOptions) (*fmdemod.Demodulator, error) {
	if opts.gain != 0 {
		return fmdemod.New(opts.gain), nil
	}
	d, err := fmdemod.NewForDeviation(opts.deviation, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create demodulator: %w", err)
	}
	return d, nil
}

// audioOutput wraps the output file and WAV encoder.
type audioOutput struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createAudioOutput creates a mono 16-bit PCM WAV file.
func createAudioOutput(path string, sampleRate int) (*audioOutput, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &audioOutput{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, outputBitDepth, audioChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: audioChannels, SampleRate: sampleRate},
			SourceBitDepth: outputBitDepth,
		},
	}, nil
}

// WriteSamples writes already-quantised PCM samples.
func (o *audioOutput) WriteSamples(samples []int) error {
	o.buf.Data = samples
	return o.encoder.Write(o.buf)
}

// Close finalises the WAV header and closes the file.
func (o *audioOutput) Close() error {
	if err := o.encoder.Close(); err != nil {
		_ = o.file.Close()
		return fmt.Errorf("failed to finalise WAV file: %w", err)
	}
	return o.file.Close()
}

// iqFromPCM converts interleaved I/Q PCM values into normalised complex
// samples and returns the number of whole frames written.
func iqFromPCM(dst []complex128, data []int, invMaxVal float64) int {
	frames := min(len(data)/iqChannels, len(dst))
	for i := range frames {
		idx := i * iqChannels
		dst[i] = complex(float64(data[idx])*invMaxVal, float64(data[idx+1])*invMaxVal)
	}
	return frames
}

// pcmFromAudio clamps demodulated audio to [-1, 1] and quantises it to
// 16-bit PCM. It returns the number of clipped samples.
func pcmFromAudio(dst []int, samples []float64) int {
	clipped := 0
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
			clipped++
		} else if s < -1.0 {
			s = -1.0
			clipped++
		} else if math.IsNaN(s) {
			s = 0
		}
		dst[i] = int(s * maxInt16)
	}
	return clipped
}

// demodulateWAV streams an I/Q WAV file through one demodulator into a mono
// audio WAV file.
func demodulateWAV(inputPath, outputPath string, opts demodOptions) (stats *demodStats, err error) {
	input, err := openIQInput(inputPath, opts.verbose)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	demod, err := newDemodulator(input.rate, opts)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		log.Printf("Demodulator gain: %g", demod.Gain())
		log.Printf("SIMD: %s", simdops.CPUInfo())
	}

	output, err := createAudioOutput(outputPath, input.rate)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (important for WAV header updates)
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	pcmIn := &audio.IntBuffer{
		Format: input.decoder.Format(),
		Data:   make([]int, opts.chunkFrames*iqChannels),
	}
	iq := make([]complex128, opts.chunkFrames)
	demodulated := make([]float64, opts.chunkFrames)
	pcmOut := make([]int, opts.chunkFrames)
	ops := simdops.Float64Ops()

	reportLen := input.rate * reportSeconds
	report := make([]float64, 0, reportLen)

	stats = &demodStats{sampleRate: input.rate, bitDepth: input.bitDepth}
	for {
		n, err := input.decoder.PCMBuffer(pcmIn)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read I/Q data: %w", err)
		}
		if n == 0 {
			break
		}

		frames := iqFromPCM(iq, pcmIn.Data[:n], input.invMaxVal)
		if frames == 0 {
			break
		}

		if _, err := demod.DemodulateInto(demodulated, iq[:frames]); err != nil {
			return nil, err
		}
		block := demodulated[:frames]

		if len(report) < reportLen {
			report = append(report, block[:min(frames, reportLen-len(report))]...)
		}

		if opts.volume != 1 {
			ops.Scale(block, block, opts.volume)
		}
		stats.clipped += int64(pcmFromAudio(pcmOut, block))
		stats.frames += int64(frames)

		if err := output.WriteSamples(pcmOut[:frames]); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}
	}

	if peak, err := spectrum.PeakFrequency(report, float64(input.rate)); err == nil {
		stats.toneValid = true
		stats.toneHz = peak
		stats.rms = spectrum.RMS(report)
		if opts.verbose {
			log.Printf("Dominant tone in first %d samples: %.1f Hz", len(report), peak)
		}
	}

	return stats, nil
}
