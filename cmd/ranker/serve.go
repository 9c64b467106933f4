package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"StockRanker/internal/api"
	"StockRanker/internal/config"
	"StockRanker/internal/notifier"
	"StockRanker/internal/scheduler"
)

func serveCmd(cfgFn func() *config.Config) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled screenings and serve rankings over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := cfgFn()
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.NewScheduler(ctx, a.screener, scheduler.Options{
				Symbols:  cfg.Symbols,
				TopN:     cfg.Scoring.TopN,
				HTMLPath: cfg.Report.HTMLPath,
				Notifier: a.sender(),
				Recorder: a.recorder,
				Metrics:  a.metrics,
			})
			if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if a.notifier != nil {
				commands := &notifier.Commands{Latest: sched.Latest, Run: sched.RunNow, TopN: cfg.Scoring.TopN}
				go a.notifier.StartPolling(ctx, commands.Handle)
				log.Info().Msg("telegram polling started")
			}

			if runOnStart {
				go func() {
					if _, err := sched.RunNow(ctx); err != nil {
						log.Error().Err(err).Msg("initial run")
					}
				}()
			}

			srv := api.NewServer(cfg.Server.Addr, sched, a.recorder, a.metrics, cfg.Scoring.TopN)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			log.Info().Str("cron", cfg.Schedule.DailyCron).Msg("stockranker is running, press Ctrl+C to stop")
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutdown signal received, stopping")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true", "screen once immediately after start-up")
	return cmd
}
