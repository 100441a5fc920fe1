package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Max1Denysov/sova-tts-engine/audio"
	"github.com/Max1Denysov/sova-tts-engine/config"
	"github.com/Max1Denysov/sova-tts-engine/datasets"
	"github.com/Max1Denysov/sova-tts-engine/mel"
	"github.com/Max1Denysov/sova-tts-engine/observe"
	"github.com/Max1Denysov/sova-tts-engine/store"
	"github.com/Max1Denysov/sova-tts-engine/text"
)

// newRNG builds the pipeline's random source from the configured seed. A zero
// seed means non-reproducible, time-based behavior.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// buildDataset wires the configured services into a TextMelDataset.
func buildDataset(cfg *config.Config, rng *rand.Rand) (*datasets.TextMelDataset, error) {
	records, err := datasets.LoadManifest(cfg.Data.Filelist)
	if err != nil {
		return nil, err
	}

	handler, err := text.NewHandler(cfg.Text.Language, cfg.Text.DictPath, rng)
	if err != nil {
		return nil, err
	}

	svc := datasets.Services{Text: handler}
	if cfg.Data.LoadMelFromDisk {
		svc.Features = &store.FeatureStore{Dir: cfg.Data.AudiosPath}
	} else {
		svc.Audio = &audio.WavLoader{MaxWavValue: cfg.Audio.MaxWavValue}
		svc.Trim = audio.Trimmer{}
		svc.Mel, err = newMelTransform(cfg)
		if err != nil {
			return nil, err
		}
	}
	if cfg.Data.Attention == config.AttentionPrealigned {
		svc.Alignments = &store.AlignmentStore{
			OriginalDir: cfg.Data.AlignmentsOriginal,
			StressedDir: cfg.Data.AlignmentsStressed,
		}
	}

	opts := datasets.TextMelOptions{
		AudioPath:       cfg.Data.AudiosPath,
		LoadMelFromDisk: cfg.Data.LoadMelFromDisk,
		MelChannels:     cfg.Mel.Channels,
		SampleRate:      cfg.Audio.SampleRate,
		TrimSilence:     cfg.Audio.TrimSilence,
		TrimTopDB:       cfg.Audio.TrimTopDB,
		FilterLength:    cfg.Mel.FilterLength,
		HopLength:       cfg.Mel.HopLength,
		AddSilence:      cfg.Audio.AddSilence,
		Cleaners:        cfg.Text.Cleaners,
		Stress:          datasets.Flag(cfg.Text.Stress),
		Phonemes:        datasets.Flag(cfg.Text.Phonemes),
		DictPrime:       cfg.Text.DictPrime,
		WordLevelProb:   cfg.Text.WordLevelProb,
		GetAlignments:   cfg.Data.Attention == config.AttentionPrealigned,
	}
	if cfg.Text.UseMMI {
		opts.AuxSymbols, err = text.CTCSymbols(cfg.Text.Language)
		if err != nil {
			return nil, err
		}
	}

	return datasets.NewTextMelDataset(records, svc, opts, rng, observe.Default())
}

// buildSampler builds the epoch sampler over the dataset's text lengths.
func buildSampler(cfg *config.Config, ds *datasets.TextMelDataset, rng *rand.Rand) (*datasets.BucketSampler, error) {
	return datasets.NewBucketSampler(ds.TextLengths(), datasets.SamplerOptions{
		BatchSize: cfg.Sampler.BatchSize,
		Shuffle:   cfg.Sampler.Shuffle,
		Bucket:    cfg.Sampler.Bucket,
		LenDiff:   cfg.Sampler.LenDiff,
	}, rng)
}

func newMelTransform(cfg *config.Config) (*mel.Transform, error) {
	t, err := mel.New(mel.Config{
		FilterLength: cfg.Mel.FilterLength,
		HopLength:    cfg.Mel.HopLength,
		WinLength:    cfg.Mel.WinLength,
		Channels:     cfg.Mel.Channels,
		SampleRate:   cfg.Audio.SampleRate,
		FMin:         cfg.Mel.FMin,
		FMax:         cfg.Mel.FMax,
	})
	if err != nil {
		return nil, fmt.Errorf("build mel transform: %w", err)
	}
	return t, nil
}
