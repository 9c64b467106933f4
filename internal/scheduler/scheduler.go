package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"StockRanker/internal/metrics"
	"StockRanker/internal/notifier"
	"StockRanker/internal/recorder"
	"StockRanker/internal/report"
	"StockRanker/internal/screener"
)

// ErrRunInProgress is returned by RunNow while another run is active.
var ErrRunInProgress = errors.New("a screening run is already in progress")

// Sender delivers run summaries. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Options configures a Scheduler. Notifier, Metrics and HTMLPath are optional.
type Options struct {
	Symbols  []string
	TopN     int
	HTMLPath string
	Notifier Sender
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
}

// Scheduler runs the screener on a cron schedule and keeps the latest result.
type Scheduler struct {
	Cron     *cron.Cron
	Screener *screener.Screener
	Ctx      context.Context

	opts    Options
	running sync.Mutex
	latest  atomic.Pointer[screener.Result]
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, scr *screener.Screener, opts Options) *Scheduler {
	if opts.Recorder == nil {
		opts.Recorder = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Screener: scr,
		Ctx:      ctx,
		opts:     opts,
	}
}

// RegisterDaily registers the screening run under a six-field cron spec.
func (s *Scheduler) RegisterDaily(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Latest returns the result of the most recent completed run, or nil.
func (s *Scheduler) Latest() *screener.Result {
	return s.latest.Load()
}

// RunNow executes one run immediately.
func (s *Scheduler) RunNow(ctx context.Context) (*screener.Result, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	res := s.Screener.Run(ctx, s.opts.Symbols)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}
	s.latest.Store(res)
	s.publish(ctx, res)
	return res, nil
}

func (s *Scheduler) dailyTask() {
	log.Info().Msg("running daily screening")
	if _, err := s.RunNow(s.Ctx); err != nil {
		log.Error().Err(err).Msg("daily screening")
	}
}

// publish fans a finished run out to every sink. Sink errors are logged only.
func (s *Scheduler) publish(ctx context.Context, res *screener.Result) {
	top := res.Rank(s.opts.TopN)

	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveRun(res.Duration.Seconds(), len(res.Scores), len(res.Unavailable), top)
	}

	if err := s.opts.Recorder.RecordRun(recorder.NewRunSnapshot(res, s.opts.TopN)); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	if s.opts.HTMLPath != "" {
		if err := report.WriteHTMLFile(s.opts.HTMLPath, res); err != nil {
			log.Error().Err(err).Str("path", s.opts.HTMLPath).Msg("write html report")
		} else {
			log.Info().Str("path", s.opts.HTMLPath).Msg("html report written")
		}
	}

	if s.opts.Notifier != nil {
		if err := s.opts.Notifier.SendWithRetry(ctx, notifier.FormatTelegramSummary(res, s.opts.TopN), 3); err != nil {
			log.Error().Err(err).Msg("send notification")
		}
	}

	for _, e := range top {
		log.Info().Int("rank", e.Rank).Str("symbol", e.Symbol).Float64("score", e.Score).Msg("ranked")
	}
}
