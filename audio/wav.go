// Package audio loads waveforms for feature extraction. WAV decoding uses
// go-audio; samples are normalized to [-1, 1] by the configured maximum
// sample value, matching how the rest of the pipeline expects amplitudes.
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// DefaultMaxWavValue matches 16-bit PCM full scale.
const DefaultMaxWavValue = 32768.0

// WavLoader reads WAV files from disk. Multi-channel audio is downmixed to
// mono by averaging channels.
type WavLoader struct {
	// MaxWavValue is the normalization divisor. Zero means
	// DefaultMaxWavValue.
	MaxWavValue float64
}

// Load decodes the WAV file at path and returns its sample rate and
// normalized mono samples. I/O and decode failures propagate to the caller.
func (l *WavLoader) Load(path string) (int, []float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("audio: open %q: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return 0, nil, fmt.Errorf("audio: decode %q: %w", path, err)
	}
	if buf.Format == nil || len(buf.Data) == 0 {
		return 0, nil, fmt.Errorf("audio: %q contains no PCM data", path)
	}

	maxVal := l.MaxWavValue
	if maxVal == 0 {
		maxVal = DefaultMaxWavValue
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	frames := len(buf.Data) / channels

	samples := make([]float32, frames)
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		samples[i] = float32(float64(sum) / float64(channels) / maxVal)
	}
	return buf.Format.SampleRate, samples, nil
}
