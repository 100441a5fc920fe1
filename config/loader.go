package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// Config. It is a convenience wrapper around LoadFromReader.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs come from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg is coherent. It returns a joined error listing
// every failure found, so a broken config surfaces all problems at once.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Data.Filelist == "" {
		errs = append(errs, errors.New("data.filelist is required"))
	}
	if cfg.Data.Attention == "" {
		cfg.Data.Attention = AttentionNone
	}
	if !cfg.Data.Attention.IsValid() {
		errs = append(errs, fmt.Errorf("data.attention %q is invalid; valid values: none, prealigned", cfg.Data.Attention))
	}

	// Prealigned targets are derived from fixed spellings and exact frame
	// counts; per-word randomness and appended silence both break that
	// correspondence, so the combination is rejected outright.
	if cfg.Data.Attention == AttentionPrealigned {
		if cfg.Text.WordLevelProb {
			errs = append(errs, errors.New("data.attention=prealigned cannot be combined with text.word_level_prob"))
		}
		if cfg.Audio.AddSilence {
			errs = append(errs, errors.New("data.attention=prealigned cannot be combined with audio.add_silence"))
		}
		if cfg.Data.AlignmentsOriginal == "" || cfg.Data.AlignmentsStressed == "" {
			errs = append(errs, errors.New("data.attention=prealigned requires alignments_original and alignments_stressed"))
		}
	}

	if cfg.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be positive, got %d", cfg.Audio.SampleRate))
	}
	if cfg.Audio.MaxWavValue < 0 {
		errs = append(errs, fmt.Errorf("audio.max_wav_value must not be negative, got %g", cfg.Audio.MaxWavValue))
	}

	if cfg.Mel.Channels <= 0 {
		errs = append(errs, fmt.Errorf("mel.n_mel_channels must be positive, got %d", cfg.Mel.Channels))
	}
	if !cfg.Data.LoadMelFromDisk {
		if cfg.Mel.FilterLength <= 0 || cfg.Mel.HopLength <= 0 || cfg.Mel.WinLength <= 0 {
			errs = append(errs, errors.New("mel.filter_length, mel.hop_length and mel.win_length must be positive"))
		}
	}

	if !cfg.Text.Language.IsValid() {
		errs = append(errs, fmt.Errorf("text.language %q is invalid; valid values: en, ru, ru_trans", cfg.Text.Language))
	}
	if cfg.Text.Stress < 0 || cfg.Text.Stress > 1 {
		errs = append(errs, fmt.Errorf("text.stress must be in [0, 1], got %g", cfg.Text.Stress))
	}
	if cfg.Text.Phonemes < 0 || cfg.Text.Phonemes > 1 {
		errs = append(errs, fmt.Errorf("text.phonemes must be in [0, 1], got %g", cfg.Text.Phonemes))
	}

	if cfg.Sampler.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("sampler.batch_size must be positive, got %d", cfg.Sampler.BatchSize))
	}
	if cfg.Sampler.Bucket && cfg.Sampler.LenDiff < 1 {
		errs = append(errs, fmt.Errorf("sampler.len_diff must be positive when bucketing, got %d", cfg.Sampler.LenDiff))
	}

	return errors.Join(errs...)
}
