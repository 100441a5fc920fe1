package audio

import "math"

// Trimmer removes low-energy regions from a waveform, the same split-and-
// concatenate silence removal the feature pipeline applied before: frames
// whose RMS energy falls more than topDB below the loudest frame are cut,
// and the surviving regions are concatenated.
type Trimmer struct{}

// Trim returns samples with silent regions removed. frameLength and
// hopLength are in samples. The input is returned unchanged when it is
// shorter than one frame or when every frame is silent relative to a zero
// reference.
func (Trimmer) Trim(samples []float32, topDB float64, frameLength, hopLength int) []float32 {
	if len(samples) == 0 || frameLength <= 0 || hopLength <= 0 || len(samples) < frameLength {
		return samples
	}

	nFrames := 1 + (len(samples)-frameLength)/hopLength
	rms := make([]float64, nFrames)
	ref := 0.0
	for i := range nFrames {
		start := i * hopLength
		sum := 0.0
		for _, s := range samples[start : start+frameLength] {
			sum += float64(s) * float64(s)
		}
		rms[i] = math.Sqrt(sum / float64(frameLength))
		ref = math.Max(ref, rms[i])
	}
	if ref == 0 {
		return samples
	}

	keep := make([]bool, nFrames)
	for i, r := range rms {
		db := 20 * math.Log10(r/ref+1e-10)
		keep[i] = db > -topDB
	}

	out := make([]float32, 0, len(samples))
	i := 0
	for i < nFrames {
		if !keep[i] {
			i++
			continue
		}
		j := i
		for j < nFrames && keep[j] {
			j++
		}
		start := i * hopLength
		end := min((j-1)*hopLength+frameLength, len(samples))
		out = append(out, samples[start:end]...)
		i = j
	}
	return out
}
