// Command fmdemod-wav demodulates an FM I/Q recording stored as a stereo
// WAV file (I on the left channel, Q on the right) into mono audio.
//
// Usage:
//
//	fmdemod-wav input.wav output.wav                    # broadcast FM, 75 kHz deviation
//	fmdemod-wav -deviation 5000 input.wav output.wav    # narrowband FM
//	fmdemod-wav -gain 1 -volume 0.3 input.wav raw.wav   # raw radians per sample
//
// The output has the sample rate of the input. Channel filtering,
// decimation and de-emphasis are expected to happen upstream or downstream.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

const (
	// Number of I/Q frames per processing chunk
	defaultChunkFrames = 16384

	// CLI defaults
	defaultDeviation = 75000.0 // Broadcast FM
	defaultVolume    = 1.0
	minRequiredArgs  = 2

	// Length of demodulated audio kept for the tone report
	reportSeconds = 1
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	deviation := flag.Float64("deviation", defaultDeviation, "Peak frequency deviation in Hz (output normalised to ±1)")
	gain := flag.Float64("gain", 0, "Explicit demodulator gain; overrides -deviation when non-zero (1 = radians per sample)")
	volume := flag.Float64("volume", defaultVolume, "Output volume applied before clipping to full scale")
	chunk := flag.Int("chunk", defaultChunkFrames, "I/Q frames per processing chunk")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s station.wav audio.wav                  # Broadcast FM\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -deviation 2500 nbfm.wav audio.wav     # Narrowband FM\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}
	if *chunk < 1 {
		return fmt.Errorf("chunk must be at least 1 frame, got %d", *chunk)
	}

	opts := demodOptions{
		deviation:   *deviation,
		gain:        *gain,
		volume:      *volume,
		chunkFrames: *chunk,
		verbose:     *verbose,
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		if *gain != 0 {
			log.Printf("Gain: %g", *gain)
		} else {
			log.Printf("Deviation: %g Hz", *deviation)
		}
		log.Printf("Volume: %g", *volume)
	}

	start := time.Now()
	stats, err := demodulateWAV(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Demodulated %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d-bit I/Q -> 16-bit mono\n", stats.sampleRate, stats.bitDepth)
	fmt.Printf("  %d frames, %d clipped\n", stats.frames, stats.clipped)
	if stats.toneValid {
		fmt.Printf("  Dominant tone: %.1f Hz, RMS %.3f\n", stats.toneHz, stats.rms)
	}
	if secs := elapsed.Seconds(); secs > 0 && stats.sampleRate > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(stats.frames)/float64(stats.sampleRate)/secs)
	}

	return nil
}
