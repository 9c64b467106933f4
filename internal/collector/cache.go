package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"StockRanker/internal/model"
)

// CachedFetcher is a read-through Redis cache in front of another Fetcher.
// Redis failures are logged and the request falls through to the source.
type CachedFetcher struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewCachedFetcher wraps next with a cache whose entries expire after ttl.
func NewCachedFetcher(next Fetcher, client *redis.Client, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &CachedFetcher{
		next:   next,
		client: client,
		ttl:    ttl,
		prefix: "stockranker:bars:",
	}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func (c *CachedFetcher) key(symbol string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, c.next.Name(), symbol)
}

func (c *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string) ([]model.Bar, error) {
	key := c.key(symbol)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.Bar
		if jerr := json.Unmarshal(raw, &bars); jerr == nil {
			return bars, nil
		}
		log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Str("key", key).Err(err).Msg("cache read failed")
	}

	bars, err := c.next.FetchDailyBars(ctx, symbol)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(bars)
	if err != nil {
		// NaN prices cannot be encoded; serve them uncached
		log.Debug().Str("key", key).Err(err).Msg("bars not cacheable")
		return bars, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("cache write failed")
	}
	return bars, nil
}
