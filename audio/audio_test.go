package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWav encodes ints as 16-bit mono PCM at sampleRate and returns the path.
func writeWav(t *testing.T, sampleRate int, data []int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   data,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestWavLoader_Load(t *testing.T) {
	data := []int{0, 16384, -16384, 32767}
	path := writeWav(t, 22050, data)

	var l WavLoader
	sr, samples, err := l.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 22050, sr)
	require.Len(t, samples, len(data))
	assert.InDelta(t, 0.0, samples[0], 1e-6)
	assert.InDelta(t, 0.5, samples[1], 1e-4)
	assert.InDelta(t, -0.5, samples[2], 1e-4)
	assert.InDelta(t, 1.0, samples[3], 1e-3)
}

func TestWavLoader_MissingFile(t *testing.T) {
	var l WavLoader
	_, _, err := l.Load(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}

func TestTrimmer_RemovesLeadingAndTrailingSilence(t *testing.T) {
	// 400 silent samples, 800 loud, 400 silent.
	samples := make([]float32, 1600)
	for i := 400; i < 1200; i++ {
		samples[i] = float32(math.Sin(float64(i) * 0.3))
	}

	out := Trimmer{}.Trim(samples, 60, 200, 50)

	assert.Less(t, len(out), len(samples))
	assert.Greater(t, len(out), 700, "loud region must survive")

	var energy float64
	for _, s := range out {
		energy += float64(s) * float64(s)
	}
	assert.Greater(t, energy, 100.0)
}

func TestTrimmer_AllSilentInputUnchanged(t *testing.T) {
	samples := make([]float32, 500)
	out := Trimmer{}.Trim(samples, 60, 200, 50)
	assert.Equal(t, samples, out)
}

func TestTrimmer_ShortInputUnchanged(t *testing.T) {
	samples := []float32{0.5, -0.5, 0.25}
	out := Trimmer{}.Trim(samples, 60, 200, 50)
	assert.Equal(t, samples, out)
}
