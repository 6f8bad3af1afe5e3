package fmdemod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-fm-demod/internal/testutil"
)

func TestGainForDeviation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		deviation  float64
		want       float64
	}{
		{"broadcast_240k", 240000, DeviationBroadcast, 240000 / (2 * math.Pi * 75000)},
		{"narrowband_48k", 48000, DeviationNarrowband, 48000 / (2 * math.Pi * 2500)},
		{"nyquist", 48000, 24000, 1 / math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GainForDeviation(tt.sampleRate, tt.deviation)
			assert.InDelta(t, tt.want, got, testutil.DefaultTolerance)
		})
	}
}

func TestNewBroadcast(t *testing.T) {
	d, err := NewBroadcast(240000)
	require.NoError(t, err)
	assert.Equal(t, GainForDeviation(240000, DeviationBroadcast), d.Gain())

	// 75 kHz deviation does not fit in a 96 kHz stream.
	_, err = NewBroadcast(96000)
	assert.ErrorIs(t, err, ErrInvalidDeviation)
}

func TestNewNarrowband(t *testing.T) {
	d, err := NewNarrowband(48000)
	require.NoError(t, err)

	// A carrier offset of exactly +deviation demodulates to +1.
	step := 2 * math.Pi * DeviationNarrowband / 48000
	var out float64
	for k := range 16 {
		out = d.Demodulate(complex(math.Cos(float64(k)*step), math.Sin(float64(k)*step)))
	}
	assert.InDelta(t, 1.0, out, 1e-9)
}

func TestDemodulateOnce(t *testing.T) {
	samples := []complex128{complex(0, 1), complex(-1, 0), complex(0, -1), complex(1, 0)}
	got := DemodulateOnce(samples, GainRadians)

	require.Len(t, got, len(samples))
	for i, v := range got {
		assert.InDelta(t, math.Pi/2, v, testutil.DefaultTolerance, "output[%d]", i)
	}
}

func TestIQFromInterleaved(t *testing.T) {
	got := IQFromInterleaved([]float64{1, 2, 3, 4, 5})
	assert.Equal(t, []complex128{complex(1, 2), complex(3, 4)}, got, "trailing odd value is dropped")
}

func TestIQFromChannels(t *testing.T) {
	got := IQFromChannels([]float64{1, 2, 3}, []float64{-1, -2})
	assert.Equal(t, []complex128{complex(1, -1), complex(2, -2)}, got)
}

func TestIQFromComplex64(t *testing.T) {
	got := IQFromComplex64([]complex64{complex(0.5, -0.25), 0})
	assert.Equal(t, []complex128{complex(0.5, -0.25), 0}, got)
}
