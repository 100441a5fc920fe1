// Package mel converts waveforms into log-mel spectrograms: a Hann-windowed
// STFT, a triangular mel filterbank, and dynamic-range log compression.
package mel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/Max1Denysov/sova-tts-engine/datasets"
)

// clampFloor keeps log compression finite on silent bins.
const clampFloor = 1e-5

// Config holds the spectrogram parameters.
type Config struct {
	// FilterLength is the FFT size in samples.
	FilterLength int

	// HopLength is the stride between frames in samples.
	HopLength int

	// WinLength is the analysis window size; must not exceed FilterLength.
	WinLength int

	// Channels is the number of mel bands.
	Channels int

	// SampleRate of the input waveforms.
	SampleRate int

	// FMin and FMax bound the filterbank frequency range. FMax of zero
	// means Nyquist.
	FMin float64
	FMax float64
}

// Transform computes log-mel spectrograms for one configuration. Each
// Transform owns its FFT plan; create one per worker goroutine.
type Transform struct {
	cfg    Config
	fft    *fourier.FFT
	window []float64
	bank   [][]float64
}

// New validates cfg and precomputes the window and mel filterbank.
func New(cfg Config) (*Transform, error) {
	if cfg.FilterLength <= 0 || cfg.HopLength <= 0 || cfg.WinLength <= 0 {
		return nil, fmt.Errorf("mel: filter/hop/win lengths must be positive")
	}
	if cfg.WinLength > cfg.FilterLength {
		return nil, fmt.Errorf("mel: win length %d exceeds filter length %d", cfg.WinLength, cfg.FilterLength)
	}
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("mel: channel count must be positive, got %d", cfg.Channels)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("mel: sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.FMax == 0 {
		cfg.FMax = float64(cfg.SampleRate) / 2
	}
	if cfg.FMin < 0 || cfg.FMin >= cfg.FMax {
		return nil, fmt.Errorf("mel: invalid frequency range [%g, %g]", cfg.FMin, cfg.FMax)
	}

	t := &Transform{
		cfg:    cfg,
		fft:    fourier.NewFFT(cfg.FilterLength),
		window: hann(cfg.WinLength),
		bank:   melFilterbank(cfg),
	}
	return t, nil
}

// Channels returns the number of mel bands produced.
func (t *Transform) Channels() int {
	return t.cfg.Channels
}

// Spectrogram computes the log-mel spectrogram of samples as a
// [Channels × frames] matrix.
func (t *Transform) Spectrogram(samples []float32) (datasets.Matrix, error) {
	n := t.cfg.FilterLength
	if len(samples) < n {
		return datasets.Matrix{}, fmt.Errorf("mel: input of %d samples is shorter than one frame (%d)", len(samples), n)
	}

	frames := 1 + (len(samples)-n)/t.cfg.HopLength
	out := datasets.NewMatrix(t.cfg.Channels, frames)

	buf := make([]float64, n)
	coeffs := make([]complex128, n/2+1)
	mags := make([]float64, n/2+1)
	// Window is centered inside the FFT frame; the remainder stays zero.
	offset := (n - t.cfg.WinLength) / 2

	for f := range frames {
		start := f * t.cfg.HopLength
		for i := range buf {
			buf[i] = 0
		}
		for i := range t.cfg.WinLength {
			buf[offset+i] = float64(samples[start+i]) * t.window[i]
		}

		t.fft.Coefficients(coeffs, buf)
		for i, c := range coeffs {
			re, im := real(c), imag(c)
			mags[i] = math.Sqrt(re*re + im*im)
		}

		for c := range t.cfg.Channels {
			energy := 0.0
			for i, w := range t.bank[c] {
				if w != 0 {
					energy += w * mags[i]
				}
			}
			out.Set(c, f, float32(math.Log(math.Max(energy, clampFloor))))
		}
	}
	return out, nil
}

// hann returns a periodic Hann window of length n.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}
	return w
}

func hzToMel(hz float64) float64 {
	return 2595 * math.Log10(1+hz/700)
}

func melToHz(mel float64) float64 {
	return 700 * (math.Pow(10, mel/2595) - 1)
}

// melFilterbank builds Channels triangular filters spanning [FMin, FMax],
// evenly spaced on the mel scale, over FilterLength/2+1 FFT bins.
func melFilterbank(cfg Config) [][]float64 {
	nBins := cfg.FilterLength/2 + 1
	binHz := float64(cfg.SampleRate) / float64(cfg.FilterLength)

	melMin := hzToMel(cfg.FMin)
	melMax := hzToMel(cfg.FMax)
	points := make([]float64, cfg.Channels+2)
	for i := range points {
		mel := melMin + (melMax-melMin)*float64(i)/float64(cfg.Channels+1)
		points[i] = melToHz(mel)
	}

	bank := make([][]float64, cfg.Channels)
	for c := range bank {
		filter := make([]float64, nBins)
		lo, center, hi := points[c], points[c+1], points[c+2]
		for b := range nBins {
			hz := float64(b) * binHz
			switch {
			case hz <= lo || hz >= hi:
				// outside the triangle
			case hz <= center:
				filter[b] = (hz - lo) / (center - lo)
			default:
				filter[b] = (hi - hz) / (hi - center)
			}
		}
		bank[c] = filter
	}
	return bank
}
