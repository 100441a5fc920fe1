package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Max1Denysov/sova-tts-engine/config"
	"github.com/Max1Denysov/sova-tts-engine/datasets"
)

func newInspectCmd(configPath *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report manifest and sampler statistics",
		Long: "Inspect loads the manifest, reports transcript length statistics and the\n" +
			"sampler's bucket layout, and writes a transcript-length histogram PNG.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runInspect(cfg, outDir)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for the histogram PNG")
	return cmd
}

func runInspect(cfg *config.Config, outDir string) error {
	rng := newRNG(cfg.Data.Seed)

	records, err := datasets.LoadManifest(cfg.Data.Filelist)
	if err != nil {
		return err
	}

	lengths := datasets.RecordTextLengths(records)
	minLen, maxLen, sum := int(^uint(0)>>1), 0, 0
	for _, l := range lengths {
		minLen = min(minLen, l)
		maxLen = max(maxLen, l)
		sum += l
	}

	fmt.Printf("manifest: %d records\n", len(records))
	fmt.Printf("transcript length: min %d, max %d, mean %.1f\n",
		minLen, maxLen, float64(sum)/float64(len(records)))

	sampler, err := datasets.NewBucketSampler(lengths, datasets.SamplerOptions{
		BatchSize: cfg.Sampler.BatchSize,
		Shuffle:   cfg.Sampler.Shuffle,
		Bucket:    cfg.Sampler.Bucket,
		LenDiff:   cfg.Sampler.LenDiff,
	}, rng)
	if err != nil {
		return err
	}

	if sizes := sampler.BucketSizes(); sizes != nil {
		fmt.Printf("buckets: %d (len_diff %d)\n", len(sizes), cfg.Sampler.LenDiff)
		for i, s := range sizes {
			fmt.Printf("  bucket %3d: %d examples\n", i, s)
		}
	}
	if dropped := len(records) - sampler.Len(); dropped > 0 {
		fmt.Printf("epoch covers %d of %d examples (%d dropped by batch regrouping)\n",
			sampler.Len(), len(records), dropped)
	}

	out := filepath.Join(outDir, "text_lengths.png")
	if err := plotLengthHistogram(out, lengths); err != nil {
		return fmt.Errorf("generate histogram: %w", err)
	}
	fmt.Printf("histogram written to %s\n", out)
	return nil
}

// plotLengthHistogram writes a PNG histogram of transcript lengths.
func plotLengthHistogram(path string, lengths []int) error {
	values := make(plotter.Values, len(lengths))
	for i, l := range lengths {
		values[i] = float64(l)
	}

	p := plot.New()
	p.Title.Text = "Transcript lengths"
	p.X.Label.Text = "length (symbols)"
	p.Y.Label.Text = "examples"

	h, err := plotter.NewHist(values, 40)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
