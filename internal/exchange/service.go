package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/lamnguyendev/talentbridge-backend/pkg/errors"
	"github.com/lamnguyendev/talentbridge-backend/pkg/logger"
)

// RateSource yields the reference VND rate for a foreign currency. Contract
// submissions carry their own negotiated rate; this source only prefills the
// form and flags rates that drifted far from the reference.
type RateSource interface {
	Rate(ctx context.Context, currencyCode string) (decimal.Decimal, error)
}

type staticSource struct {
	rates map[string]decimal.Decimal
}

// NewStaticSource serves rates from a fixed table, keyed by upper-case
// currency code.
func NewStaticSource(rates map[string]decimal.Decimal) RateSource {
	normalized := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return &staticSource{rates: normalized}
}

func (s *staticSource) Rate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	rate, ok := s.rates[code]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no reference rate for currency %s", code))
	}
	return rate, nil
}

// rateStore is the slice of pkg/redis the cache needs.
type rateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ExchangeRateKey(currencyCode string) string
}

type cachedSource struct {
	source RateSource
	store  rateStore
	ttl    time.Duration
	logg   *logger.Logger
}

// NewCachedSource wraps a source with a redis cache. Cache trouble is never
// fatal; a failed read or write falls through to the source.
func NewCachedSource(source RateSource, store rateStore, ttl time.Duration, logg *logger.Logger) (RateSource, error) {
	if source == nil {
		return nil, fmt.Errorf("rate source required")
	}
	if store == nil {
		return nil, fmt.Errorf("rate store required")
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &cachedSource{source: source, store: store, ttl: ttl, logg: logg}, nil
}

func (c *cachedSource) Rate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	key := c.store.ExchangeRateKey(currencyCode)

	if raw, err := c.store.Get(ctx, key); err == nil {
		if rate, parseErr := decimal.NewFromString(raw); parseErr == nil {
			return rate, nil
		}
		// A corrupt entry is replaced by the refreshed value below.
	}

	rate, err := c.source.Rate(ctx, currencyCode)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.store.Set(ctx, key, rate.String(), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithField(ctx, "currency", currencyCode), "failed to cache exchange rate")
	}
	return rate, nil
}
