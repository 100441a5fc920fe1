// sovadata is the dataset preparation tool for the TTS training pipeline:
// it inspects manifests and sampler bucketing, and precomputes mel
// spectrogram features to .npy blobs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Max1Denysov/sova-tts-engine/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "sovadata",
		Short:         "Prepare paired audio/text training data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")

	cmd.AddCommand(
		newInspectCmd(&configPath),
		newPrecomputeCmd(&configPath),
	)
	return cmd
}

// loadConfig reads the config and installs a text slog handler at the
// configured level.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel.Level(),
	})))
	return cfg, nil
}
