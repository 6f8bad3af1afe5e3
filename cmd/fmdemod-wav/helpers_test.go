package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmdemod "github.com/tphakala/go-fm-demod"
	"github.com/tphakala/go-fm-demod/internal/spectrum"
	"github.com/tphakala/go-fm-demod/internal/testutil"
)

// writeWAV writes interleaved PCM values to a new WAV file.
func writeWAV(t *testing.T, path string, sampleRate, bitDepth, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, wavFormatPCM)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

// writeIQWAV quantises complex samples to a 16-bit stereo I/Q WAV file.
func writeIQWAV(t *testing.T, path string, sampleRate int, samples []complex128) {
	t.Helper()
	data := make([]int, 0, len(samples)*iqChannels)
	for _, s := range samples {
		data = append(data, int(real(s)*0.9*maxInt16), int(imag(s)*0.9*maxInt16))
	}
	writeWAV(t, path, sampleRate, bitsPerSample16, iqChannels, data)
}

func readMonoWAV(t *testing.T, path string) (*audio.IntBuffer, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf, int(dec.SampleRate)
}

func TestOpenIQInput_FileNotFound(t *testing.T) {
	_, err := openIQInput("/nonexistent/file.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenIQInput_InvalidWAV(t *testing.T) {
	tmpDir := t.TempDir()
	invalidFile := filepath.Join(tmpDir, "invalid.wav")
	err := os.WriteFile(invalidFile, []byte("not a wav file"), 0o644)
	require.NoError(t, err)

	_, err = openIQInput(invalidFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenIQInput_RejectsMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 48000, bitsPerSample16, 1, make([]int, 64))

	_, err := openIQInput(path, false)
	require.ErrorIs(t, err, errNotIQ)
}

func TestOpenIQInput_Stereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iq.wav")
	writeIQWAV(t, path, 96000, testutil.ConstantPhase(32, 0.1))

	in, err := openIQInput(path, false)
	require.NoError(t, err)
	defer func() { _ = in.Close() }()

	assert.Equal(t, 96000, in.rate)
	assert.Equal(t, bitsPerSample16, in.bitDepth)
	assert.InDelta(t, 1/maxInt16, in.invMaxVal, 1e-15)
}

func TestFullScale(t *testing.T) {
	for bits, want := range map[int]float64{16: maxInt16, 24: maxInt24, 32: maxInt32} {
		got, err := fullScale(bits)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := fullScale(8)
	require.ErrorIs(t, err, errUnsupportedBits)
}

func TestNewDemodulator(t *testing.T) {
	d, err := newDemodulator(48000, demodOptions{gain: 2, deviation: 1e9})
	require.NoError(t, err)
	assert.Equal(t, 2.0, d.Gain(), "explicit gain overrides deviation")

	d, err = newDemodulator(48000, demodOptions{deviation: 5000})
	require.NoError(t, err)
	assert.InDelta(t, fmdemod.GainForDeviation(48000, 5000), d.Gain(), 1e-12)

	_, err = newDemodulator(48000, demodOptions{deviation: fmdemod.DeviationBroadcast})
	require.ErrorIs(t, err, fmdemod.ErrInvalidDeviation)
}

func TestIQFromPCM(t *testing.T) {
	dst := make([]complex128, 4)
	n := iqFromPCM(dst, []int{32767, 0, 0, -32767, 100}, 1/maxInt16)
	assert.Equal(t, 2, n, "trailing partial frame is dropped")
	assert.InDelta(t, 1, real(dst[0]), 1e-15)
	assert.Zero(t, imag(dst[0]))
	assert.Zero(t, real(dst[1]))
	assert.InDelta(t, -1, imag(dst[1]), 1e-15)

	// Never writes past dst.
	n = iqFromPCM(make([]complex128, 1), []int{1, 2, 3, 4}, 1)
	assert.Equal(t, 1, n)
}

func TestPCMFromAudio(t *testing.T) {
	dst := make([]int, 5)
	clipped := pcmFromAudio(dst, []float64{0.5, -0.5, 1.5, -2, math.NaN()})
	assert.Equal(t, 2, clipped)
	assert.Equal(t, []int{16383, -16383, 32767, -32767, 0}, dst)
}

func TestCreateAudioOutput_InvalidDirectory(t *testing.T) {
	_, err := createAudioOutput("/nonexistent/dir/output.wav", 48000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestDemodulateWAV_ToneRoundTrip(t *testing.T) {
	const (
		sampleRate = 48000
		toneFreq   = 1000.0
		deviation  = 5000.0
		numFrames  = 24000
	)

	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "iq.wav")
	outputPath := filepath.Join(tmpDir, "audio.wav")
	writeIQWAV(t, inputPath, sampleRate, testutil.FMTone(numFrames, sampleRate, toneFreq, deviation))

	stats, err := demodulateWAV(inputPath, outputPath, demodOptions{
		deviation:   deviation,
		volume:      0.5,
		chunkFrames: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(numFrames), stats.frames)
	assert.Zero(t, stats.clipped)
	require.True(t, stats.toneValid)
	testutil.AssertRelativeError(t, toneFreq, stats.toneHz, testutil.FrequencyPercent)

	buf, rate := readMonoWAV(t, outputPath)
	assert.Equal(t, sampleRate, rate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, numFrames)

	decoded := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		decoded[i] = float64(v) / maxInt16
	}
	peak, err := spectrum.PeakFrequency(decoded, sampleRate)
	require.NoError(t, err)
	testutil.AssertRelativeError(t, toneFreq, peak, testutil.FrequencyPercent)
	// Volume 0.5 on a unit tone: RMS ≈ 0.5/√2.
	assert.InDelta(t, 0.5/math.Sqrt2, spectrum.RMS(decoded), 0.01)

	t.Logf("Round trip tone: %.2f Hz, RMS %.4f", peak, spectrum.RMS(decoded))
}

func TestDemodulateWAV_ChunkSizeInvariant(t *testing.T) {
	tmpDir := t.TempDir()
	inputPath := filepath.Join(tmpDir, "iq.wav")
	writeIQWAV(t, inputPath, 48000, testutil.FMTone(5000, 48000, 700, 3000))

	var outputs [][]int
	for i, chunk := range []int{1, 333, 5000, 8192} {
		outputPath := filepath.Join(tmpDir, "out"+string(rune('a'+i))+".wav")
		_, err := demodulateWAV(inputPath, outputPath, demodOptions{deviation: 3000, volume: 1, chunkFrames: chunk})
		require.NoError(t, err)
		buf, _ := readMonoWAV(t, outputPath)
		outputs = append(outputs, buf.Data)
	}
	for i := 1; i < len(outputs); i++ {
		assert.Equal(t, outputs[0], outputs[i], "chunked output %d differs", i)
	}
}
