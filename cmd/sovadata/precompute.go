package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Max1Denysov/sova-tts-engine/audio"
	"github.com/Max1Denysov/sova-tts-engine/config"
	"github.com/Max1Denysov/sova-tts-engine/datasets"
	"github.com/Max1Denysov/sova-tts-engine/store"
)

func newPrecomputeCmd(configPath *string) *cobra.Command {
	var (
		outDir  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "precompute",
		Short: "Extract mel spectrograms to .npy feature blobs",
		Long: "Precompute decodes every manifest wav, applies the configured trimming and\n" +
			"padding, computes its mel spectrogram, and writes one .npy blob per record,\n" +
			"ready for load_mel_from_disk mode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Data.LoadMelFromDisk {
				return fmt.Errorf("precompute reads wavs; disable data.load_mel_from_disk")
			}
			return runPrecompute(cmd.Context(), cfg, outDir, workers)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (required)")
	cmd.MarkFlagRequired("out")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "Parallel extraction workers")
	return cmd
}

func runPrecompute(ctx context.Context, cfg *config.Config, outDir string, workers int) error {
	records, err := datasets.LoadManifest(cfg.Data.Filelist)
	if err != nil {
		return err
	}

	loader := &audio.WavLoader{MaxWavValue: cfg.Audio.MaxWavValue}
	trimmer := audio.Trimmer{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for _, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return extractOne(cfg, loader, trimmer, rec, outDir)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("precompute finished", "records", len(records), "out", outDir)
	return nil
}

// extractOne computes and stores the mel spectrogram for one record. Each
// call builds its own transform since FFT plans are not shared across
// goroutines.
func extractOne(cfg *config.Config, loader *audio.WavLoader, trimmer audio.Trimmer, rec datasets.Record, outDir string) error {
	sr, samples, err := loader.Load(filepath.Join(cfg.Data.AudiosPath, rec.AudioRef))
	if err != nil {
		return err
	}
	if sr != cfg.Audio.SampleRate {
		return fmt.Errorf("%q sample rate %d doesn't match target %d", rec.AudioRef, sr, cfg.Audio.SampleRate)
	}

	if cfg.Audio.TrimSilence {
		samples = trimmer.Trim(samples, cfg.Audio.TrimTopDB, cfg.Mel.FilterLength, cfg.Mel.HopLength)
	}
	if cfg.Audio.AddSilence {
		samples = append(samples, make([]float32, 5*cfg.Mel.HopLength)...)
	}

	transform, err := newMelTransform(cfg)
	if err != nil {
		return err
	}
	m, err := transform.Spectrogram(samples)
	if err != nil {
		return fmt.Errorf("mel transform for %q: %w", rec.AudioRef, err)
	}

	name := strings.TrimSuffix(rec.AudioRef, filepath.Ext(rec.AudioRef)) + ".npy"
	return store.WriteMatrix(filepath.Join(outDir, name), m)
}
