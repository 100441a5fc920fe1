package datasets

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/Max1Denysov/sova-tts-engine/observe"
)

// TextService turns raw transcripts into symbol-id sequences. Implemented by
// the text package; kept as an interface so tests can inject fakes.
type TextService interface {
	// TextToSequence normalizes text through the cleaner pipeline and
	// encodes it. Stress and phoneme flags arrive unresolved when
	// word-level probability mode is active; the service then applies the
	// probability per word.
	TextToSequence(text string, cleaners []string, stress, phonemes Flag, dictPrime, stressAlways bool) ([]int64, error)

	// IDToSymbol maps a symbol id back to its textual form.
	IDToSymbol(id int64) (string, bool)
}

// AudioLoader reads a waveform from disk.
type AudioLoader interface {
	// Load returns the file's sample rate and normalized float32 samples.
	Load(path string) (sampleRate int, samples []float32, err error)
}

// SilenceTrimmer removes low-energy regions from a waveform.
type SilenceTrimmer interface {
	Trim(samples []float32, topDB float64, frameLength, hopLength int) []float32
}

// MelTransform converts a waveform into a mel spectrogram.
type MelTransform interface {
	// Spectrogram returns a [Channels × frames] matrix.
	Spectrogram(samples []float32) (Matrix, error)
	Channels() int
}

// FeatureStore loads precomputed mel spectrograms keyed by audio reference.
type FeatureStore interface {
	LoadMatrix(ref string) (Matrix, error)
}

// AlignmentStore loads attention-alignment matrices keyed by audio reference,
// from either the original or the stressed variant.
type AlignmentStore interface {
	LoadAlignment(ref string, stressed bool) (Matrix, error)
}

// Services bundles the collaborators a TextMelDataset delegates to.
type Services struct {
	Text       TextService
	Audio      AudioLoader
	Trim       SilenceTrimmer
	Mel        MelTransform
	Features   FeatureStore
	Alignments AlignmentStore
}

// TextMelOptions configures example assembly.
type TextMelOptions struct {
	// AudioPath is the directory audio references are resolved against.
	AudioPath string

	// LoadMelFromDisk switches the audio path to the precomputed feature
	// store instead of wav decoding + mel transform.
	LoadMelFromDisk bool

	// MelChannels is the expected channel count of mel features. A
	// precomputed matrix with a different row count is a configuration
	// error.
	MelChannels int

	// SampleRate every loaded waveform must match.
	SampleRate int

	TrimSilence  bool
	TrimTopDB    float64
	FilterLength int
	HopLength    int

	// AddSilence appends 5×HopLength zero samples after trimming.
	AddSilence bool

	Cleaners  []string
	Stress    Flag
	Phonemes  Flag
	DictPrime bool

	// WordLevelProb defers stress/phoneme probability resolution to the
	// text service, per word.
	WordLevelProb bool

	// GetAlignments enables loading prealigned attention targets.
	GetAlignments bool

	// AuxSymbols, when non-empty, enables the auxiliary symbol sequence:
	// the transcript re-encoded over this reduced vocabulary.
	AuxSymbols []string
}

// TextMelDataset assembles one training example per manifest index by
// delegating text, audio, and feature loading to its services. Assemble holds
// no shared mutable state apart from the injected random source, so distinct
// datasets can run in parallel workers without locking.
type TextMelDataset struct {
	records []Record
	svc     Services
	opts    TextMelOptions
	rng     *rand.Rand
	metrics *observe.Metrics
	auxToID map[string]int64
}

// NewTextMelDataset validates the mode combination and wires the services.
// Prealigned attention targets are incompatible with both word-level
// probability mode and silence padding; that combination fails here rather
// than producing undefined examples later. metrics may be nil.
func NewTextMelDataset(records []Record, svc Services, opts TextMelOptions, rng *rand.Rand, metrics *observe.Metrics) (*TextMelDataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("textmel: no records")
	}
	if svc.Text == nil {
		return nil, fmt.Errorf("textmel: text service is required")
	}
	if opts.GetAlignments && (opts.WordLevelProb || opts.AddSilence) {
		return nil, fmt.Errorf("textmel: prealigned attention targets cannot be combined with word-level probabilities or silence padding")
	}
	if opts.MelChannels < 1 {
		return nil, fmt.Errorf("textmel: mel channel count must be positive, got %d", opts.MelChannels)
	}
	if opts.LoadMelFromDisk {
		if svc.Features == nil {
			return nil, fmt.Errorf("textmel: feature store is required when loading mel from disk")
		}
	} else {
		if svc.Audio == nil || svc.Mel == nil {
			return nil, fmt.Errorf("textmel: audio loader and mel transform are required when computing mel from wav")
		}
		if opts.TrimSilence && svc.Trim == nil {
			return nil, fmt.Errorf("textmel: silence trimmer is required when trimming is enabled")
		}
		if got := svc.Mel.Channels(); got != opts.MelChannels {
			return nil, fmt.Errorf("textmel: mel transform produces %d channels, configured for %d", got, opts.MelChannels)
		}
	}
	if opts.GetAlignments && svc.Alignments == nil {
		return nil, fmt.Errorf("textmel: alignment store is required when loading alignments")
	}

	d := &TextMelDataset{
		records: records,
		svc:     svc,
		opts:    opts,
		rng:     rng,
		metrics: metrics,
	}
	if len(opts.AuxSymbols) > 0 {
		d.auxToID = make(map[string]int64, len(opts.AuxSymbols))
		for i, s := range opts.AuxSymbols {
			d.auxToID[s] = int64(i)
		}
	}
	return d, nil
}

// Len returns the number of records.
func (d *TextMelDataset) Len() int {
	return len(d.records)
}

// Record returns the manifest record at index i.
func (d *TextMelDataset) Record(i int) Record {
	return d.records[i]
}

// TextLengths returns the per-record transcript lengths the sampler buckets on.
func (d *TextMelDataset) TextLengths() []int {
	return RecordTextLengths(d.records)
}

// Assemble produces the training example for one manifest index.
func (d *TextMelDataset) Assemble(index int) (*Example, error) {
	if index < 0 || index >= len(d.records) {
		return nil, fmt.Errorf("textmel: index %d out of range [0, %d)", index, len(d.records))
	}
	rec := d.records[index]

	stress, phonemes := d.resolveFlags()

	seq, err := d.text(rec.Text, stress, phonemes)
	if err != nil {
		return nil, fmt.Errorf("textmel: encode %q: %w", rec.AudioRef, err)
	}

	mel, err := d.mel(rec.AudioRef)
	if err != nil {
		return nil, err
	}

	ex := &Example{Text: seq, Mel: mel}

	if d.opts.GetAlignments {
		// Phoneme representations have no alignments; the field stays
		// absent regardless of store contents.
		if !phonemes.Bool() {
			al := d.alignment(rec.AudioRef, stress.Bool(), mel.Cols, len(seq))
			ex.Alignment = &al
		}
	}

	if d.auxToID != nil {
		ex.AuxText = d.auxText(seq)
	}

	if d.metrics != nil {
		d.metrics.ExamplesAssembled.Add(context.Background(), 1)
	}
	return ex, nil
}

// resolveFlags collapses the stress/phoneme knobs to hard booleans unless
// word-level mode defers that to the text service.
func (d *TextMelDataset) resolveFlags() (stress, phonemes Flag) {
	if d.opts.WordLevelProb {
		return d.opts.Stress, d.opts.Phonemes
	}
	return FlagBool(d.opts.Stress.Resolve(d.rng)), FlagBool(d.opts.Phonemes.Resolve(d.rng))
}

func (d *TextMelDataset) text(text string, stress, phonemes Flag) ([]int64, error) {
	stressAlways := !d.opts.GetAlignments
	return d.svc.Text.TextToSequence(text, d.opts.Cleaners, stress, phonemes, d.opts.DictPrime, stressAlways)
}

func (d *TextMelDataset) mel(ref string) (Matrix, error) {
	if d.opts.LoadMelFromDisk {
		m, err := d.svc.Features.LoadMatrix(ref)
		if err != nil {
			return Matrix{}, fmt.Errorf("textmel: load features for %q: %w", ref, err)
		}
		if m.Rows != d.opts.MelChannels {
			return Matrix{}, fmt.Errorf("textmel: mel dimension mismatch for %q: given %d, expected %d", ref, m.Rows, d.opts.MelChannels)
		}
		return m, nil
	}

	path := filepath.Join(d.opts.AudioPath, ref)
	sr, samples, err := d.svc.Audio.Load(path)
	if err != nil {
		return Matrix{}, fmt.Errorf("textmel: load audio %q: %w", path, err)
	}
	if sr != d.opts.SampleRate {
		return Matrix{}, fmt.Errorf("textmel: %q sample rate %d doesn't match target %d", ref, sr, d.opts.SampleRate)
	}

	if d.opts.TrimSilence {
		samples = d.svc.Trim.Trim(samples, d.opts.TrimTopDB, d.opts.FilterLength, d.opts.HopLength)
	}
	if d.opts.AddSilence {
		samples = append(samples, make([]float32, 5*d.opts.HopLength)...)
	}

	m, err := d.svc.Mel.Spectrogram(samples)
	if err != nil {
		return Matrix{}, fmt.Errorf("textmel: mel transform for %q: %w", ref, err)
	}
	return m, nil
}

// alignment loads the attention target for ref, expecting shape
// (melFrames × textLen). A load failure or shape mismatch is a recoverable
// data fault: the target is replaced with zeros of the expected shape and the
// event is surfaced through the log and the substitution counter.
func (d *TextMelDataset) alignment(ref string, stressed bool, melFrames, textLen int) Matrix {
	m, err := d.svc.Alignments.LoadAlignment(ref, stressed)
	if err == nil && m.Rows == melFrames && m.Cols == textLen {
		return m
	}

	attrs := []any{
		"audio", ref,
		"want_frames", melFrames,
		"want_symbols", textLen,
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	} else {
		attrs = append(attrs, "got_frames", m.Rows, "got_symbols", m.Cols)
	}
	slog.Warn("alignment substituted with zeros", attrs...)
	if d.metrics != nil {
		d.metrics.AlignmentSubstitutions.Add(context.Background(), 1)
	}
	return NewMatrix(melFrames, textLen)
}

// auxText re-encodes a symbol sequence over the auxiliary vocabulary. Symbols
// outside the reduced set are dropped.
func (d *TextMelDataset) auxText(seq []int64) []int64 {
	out := make([]int64, 0, len(seq))
	for _, id := range seq {
		sym, ok := d.svc.Text.IDToSymbol(id)
		if !ok {
			continue
		}
		if auxID, ok := d.auxToID[sym]; ok {
			out = append(out, auxID)
		}
	}
	return out
}
