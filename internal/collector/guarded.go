package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"StockRanker/internal/model"
)

// GuardOptions configures GuardedFetcher.
type GuardOptions struct {
	RatePerSecond       float64
	Burst               int
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// GuardedFetcher throttles a remote Fetcher with a token bucket and stops
// calling it while its circuit breaker is open.
type GuardedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedFetcher wraps next. Zero options fall back to 2 req/s, burst 1,
// tripping after 5 consecutive failures for 30s.
func NewGuardedFetcher(next Fetcher, opts GuardOptions) *GuardedFetcher {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	threshold := opts.ConsecutiveFailures
	return &GuardedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    next.Name(),
			Timeout: opts.OpenTimeout,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).
					Msg("fetcher circuit breaker state changed")
			},
		}),
	}
}

func (g *GuardedFetcher) Name() string { return g.next.Name() }

func (g *GuardedFetcher) FetchDailyBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchDailyBars(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return out.([]model.Bar), nil
}

// State reports the breaker state.
func (g *GuardedFetcher) State() gobreaker.State { return g.breaker.State() }
