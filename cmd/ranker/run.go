package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"StockRanker/internal/config"
	"StockRanker/internal/notifier"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/strategy"
)

type runFlags struct {
	top    int
	mode   string
	html   string
	demo   bool
	notify bool
}

// apply overrides config values with the flags the user actually set.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("top") {
		if f.top < 0 {
			return fmt.Errorf("--top must not be negative")
		}
		cfg.Scoring.TopN = f.top
	}
	if cmd.Flags().Changed("mode") {
		mode, err := strategy.ParseMode(f.mode)
		if err != nil {
			return err
		}
		cfg.Scoring.Mode = string(mode)
	}
	if cmd.Flags().Changed("html") {
		cfg.Report.HTMLPath = f.html
	}
	if f.demo {
		cfg.DataSource.Type = "mock"
		cfg.Cache.RedisAddr = ""
	}
	if !f.notify {
		cfg.Telegram.BotToken = ""
		cfg.Telegram.ChatID = ""
	}
	return nil
}

func runCmd(cfgFn func() *config.Config) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Screen the universe once and print the top ranked symbols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := cfgFn()
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			sched := scheduler.NewScheduler(cmd.Context(), a.screener, scheduler.Options{
				Symbols:  cfg.Symbols,
				TopN:     cfg.Scoring.TopN,
				HTMLPath: cfg.Report.HTMLPath,
				Notifier: a.sender(),
				Recorder: a.recorder,
				Metrics:  a.metrics,
			})
			res, err := sched.RunNow(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(os.Stdout, notifier.FormatConsoleSummary(res.Rank(cfg.Scoring.TopN)))
			for _, u := range res.Unavailable {
				fmt.Fprintf(os.Stdout, "%s skipped: %v\n", u.Symbol, u.Err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flags.top, "top", strategy.DefaultTopN, "number of symbols to print (0 = all)")
	cmd.Flags().StringVar(&flags.mode, "mode", string(strategy.ModeParity), "scoring mode: parity or normalized")
	cmd.Flags().StringVar(&flags.html, "html", "", "write the HTML chart report to this path (empty disables)")
	cmd.Flags().BoolVar(&flags.demo, "demo", false, "use generated data instead of the configured source")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "send the summary to Telegram")
	return cmd
}
