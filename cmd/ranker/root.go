package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockRanker/internal/config"
	"StockRanker/internal/logger"
)

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		cfg     *config.Config
	)
	root := &cobra.Command{
		Use:           "ranker",
		Short:         "Rank stocks by RSI, MACD, Bollinger Bands and Parabolic SAR",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Init(loaded.Log.Level, loaded.Log.Pretty)
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "path to the YAML config file")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(runCmd(cfgFn), serveCmd(cfgFn))
	return root
}
