// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/logging"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mixer",
	Long:  `Load the configuration, start every configured source and mix them until SIGINT or SIGTERM.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.Output.Format == config.FormatInt16 {
			return runMixer[int16](ctx, cfg, logger)
		}
		return runMixer[float32](ctx, cfg, logger)
	},
}

// loadConfig reads the configuration and applies the command line
// overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	return cfg, nil
}

func runMixer[T audio.Sample](ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger = logging.OrNop(logger)

	m, err := audmix.New[T](cfg, logger)
	if err != nil {
		return err
	}

	if len(cfg.Sources) == 0 {
		logger.Warn("no sources configured")
	}
	for _, sc := range cfg.Sources {
		if _, err := m.AddSource(sc); err != nil {
			return err
		}
	}

	driver, err := audmix.NewDriver(m)
	if err != nil {
		return fmt.Errorf("failed to open output: %w", err)
	}

	return m.Run(ctx, driver)
}
