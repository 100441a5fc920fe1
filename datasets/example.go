package datasets

import "math/rand"

// Example is one assembled training example. Text holds symbol ids from the
// primary vocabulary. Alignment and AuxText are optional: a nil Alignment
// means no attention target was produced for this example, a nil AuxText
// means the auxiliary vocabulary is not in use.
type Example struct {
	// Text is the encoded symbol-id sequence.
	Text []int64

	// Mel is the spectrogram, [channels × frames].
	Mel Matrix

	// Alignment, when present, is [frames × symbols] and its shape matches
	// (Mel.Cols, len(Text)) exactly.
	Alignment *Matrix

	// AuxText, when present, is the transcript re-encoded over the reduced
	// auxiliary vocabulary.
	AuxText []int64
}

// Flag is a boolean knob that may instead carry a probability: 0 is a hard
// false, 1 a hard true, anything in between is Bernoulli-sampled per
// resolution. Word-level probability mode passes the raw value through to the
// text service, which applies it per word.
type Flag float64

// FlagBool returns a hard Flag from a boolean.
func FlagBool(v bool) Flag {
	if v {
		return 1
	}
	return 0
}

// Resolve collapses the flag to a boolean using rng for the probabilistic
// case. The random source is explicit so callers stay reproducible.
func (f Flag) Resolve(rng *rand.Rand) bool {
	switch {
	case f <= 0:
		return false
	case f >= 1:
		return true
	default:
		return rng.Float64() < float64(f)
	}
}

// IsProbabilistic reports whether the flag needs sampling to resolve.
func (f Flag) IsProbabilistic() bool {
	return f > 0 && f < 1
}

// Bool reports the flag's value as a hard boolean without sampling.
// Probabilistic flags read as true (any nonzero chance counts as enabled for
// coarse mode checks).
func (f Flag) Bool() bool {
	return f > 0
}
