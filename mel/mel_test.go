package mel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		FilterLength: 1024,
		HopLength:    256,
		WinLength:    1024,
		Channels:     80,
		SampleRate:   22050,
		FMin:         0,
		FMax:         8000,
	}
}

func sine(freq float64, sampleRate, n int) []float32 {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return samples
}

func TestSpectrogram_Shape(t *testing.T) {
	tr, err := New(testConfig())
	require.NoError(t, err)

	// 1024 + 9×256 samples give exactly 10 frames.
	m, err := tr.Spectrogram(sine(440, 22050, 1024+9*256))
	require.NoError(t, err)

	assert.Equal(t, 80, m.Rows)
	assert.Equal(t, 10, m.Cols)
	assert.Equal(t, 80, tr.Channels())
}

func TestSpectrogram_FiniteValues(t *testing.T) {
	tr, err := New(testConfig())
	require.NoError(t, err)

	m, err := tr.Spectrogram(sine(440, 22050, 4096))
	require.NoError(t, err)

	floor := float32(math.Log(1e-5))
	for i, v := range m.Data {
		require.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "value %d is not finite", i)
		assert.GreaterOrEqual(t, v, floor)
	}
}

func TestSpectrogram_SilenceHitsFloor(t *testing.T) {
	tr, err := New(testConfig())
	require.NoError(t, err)

	m, err := tr.Spectrogram(make([]float32, 4096))
	require.NoError(t, err)

	floor := float32(math.Log(1e-5))
	for _, v := range m.Data {
		assert.InDelta(t, floor, v, 1e-6)
	}
}

func TestSpectrogram_ToneEnergyNearToneBand(t *testing.T) {
	tr, err := New(testConfig())
	require.NoError(t, err)

	m, err := tr.Spectrogram(sine(1000, 22050, 8192))
	require.NoError(t, err)

	// The loudest mel band across the middle frame should sit well above
	// the silence floor.
	frame := m.Cols / 2
	peak := float32(math.Inf(-1))
	for c := range m.Rows {
		peak = max(peak, m.At(c, frame))
	}
	assert.Greater(t, peak, float32(math.Log(1e-5))+5)
}

func TestSpectrogram_InputTooShort(t *testing.T) {
	tr, err := New(testConfig())
	require.NoError(t, err)

	_, err = tr.Spectrogram(make([]float32, 100))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero filter length", func(c *Config) { c.FilterLength = 0 }},
		{"win exceeds filter", func(c *Config) { c.WinLength = c.FilterLength + 1 }},
		{"zero channels", func(c *Config) { c.Channels = 0 }},
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }},
		{"fmin above fmax", func(c *Config) { c.FMin = 9000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}

func TestNew_FMaxDefaultsToNyquist(t *testing.T) {
	cfg := testConfig()
	cfg.FMax = 0
	tr, err := New(cfg)
	require.NoError(t, err)

	_, err = tr.Spectrogram(sine(440, 22050, 2048))
	assert.NoError(t, err)
}
