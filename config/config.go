// Package config provides the YAML hyperparameter schema and loader for the
// data preparation pipeline.
package config

import (
	"log/slog"

	"github.com/Max1Denysov/sova-tts-engine/text"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps l to its slog level. Unset or unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// AttentionType selects how attention supervision targets are produced.
type AttentionType string

const (
	// AttentionNone disables attention targets.
	AttentionNone AttentionType = "none"

	// AttentionPrealigned loads precomputed alignment matrices per example.
	AttentionPrealigned AttentionType = "prealigned"
)

// IsValid reports whether a is a recognised attention type.
func (a AttentionType) IsValid() bool {
	return a == AttentionNone || a == AttentionPrealigned
}

// Config is the root configuration.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	Data    Data    `yaml:"data"`
	Audio   Audio   `yaml:"audio"`
	Mel     Mel     `yaml:"mel"`
	Text    Text    `yaml:"text"`
	Sampler Sampler `yaml:"sampler"`
}

// Data locates the manifest and the on-disk stores.
type Data struct {
	// Filelist is the pipe-separated audio|transcript manifest.
	Filelist string `yaml:"filelist"`

	// AudiosPath is the directory audio references resolve against. In
	// load_mel_from_disk mode it holds .npy feature blobs instead of wavs.
	AudiosPath string `yaml:"audios_path"`

	// AlignmentsOriginal and AlignmentsStressed hold alignment blobs for
	// the two spelling variants.
	AlignmentsOriginal string `yaml:"alignments_original"`
	AlignmentsStressed string `yaml:"alignments_stressed"`

	LoadMelFromDisk bool `yaml:"load_mel_from_disk"`

	// Attention selects attention-target production.
	Attention AttentionType `yaml:"attention"`

	// Seed drives every random source in the pipeline.
	Seed int64 `yaml:"seed"`
}

// Audio holds waveform loading and preprocessing parameters.
type Audio struct {
	SampleRate  int     `yaml:"sample_rate"`
	MaxWavValue float64 `yaml:"max_wav_value"`
	TrimSilence bool    `yaml:"trim_silence"`
	TrimTopDB   float64 `yaml:"trim_top_db"`
	AddSilence  bool    `yaml:"add_silence"`
}

// Mel holds spectrogram parameters.
type Mel struct {
	FilterLength int     `yaml:"filter_length"`
	HopLength    int     `yaml:"hop_length"`
	WinLength    int     `yaml:"win_length"`
	Channels     int     `yaml:"n_mel_channels"`
	FMin         float64 `yaml:"mel_fmin"`
	FMax         float64 `yaml:"mel_fmax"`
}

// Text holds normalization and encoding parameters. Stress and Phonemes are
// probabilities: 0 disables, 1 forces, anything between is sampled (per
// example, or per word with WordLevelProb).
type Text struct {
	Language      text.Language `yaml:"language"`
	Cleaners      []string      `yaml:"cleaners"`
	DictPath      string        `yaml:"dict_path"`
	Stress        float64       `yaml:"stress"`
	Phonemes      float64       `yaml:"phonemes"`
	DictPrime     bool          `yaml:"dict_prime"`
	WordLevelProb bool          `yaml:"word_level_prob"`

	// UseMMI enables the auxiliary CTC symbol sequence.
	UseMMI bool `yaml:"use_mmi"`
}

// Sampler holds batching and shuffling parameters.
type Sampler struct {
	BatchSize int  `yaml:"batch_size"`
	Shuffle   bool `yaml:"shuffle"`
	Bucket    bool `yaml:"bucket"`
	LenDiff   int  `yaml:"len_diff"`
}
