package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const cacheKey = "dashboard:stats"

// StorePort abstracts repository usage for service.
type StorePort interface {
	StockSummary(ctx context.Context) (StockSummary, error)
	RevenueSince(ctx context.Context, cutoff time.Time) (RevenueWindow, error)
	PendingPurchaseCount(ctx context.Context) (int64, error)
	TopSellers(ctx context.Context, cutoff time.Time, limit int) ([]TopSeller, error)
}

// Service assembles the overview snapshot. The queries fan out
// concurrently and the result is cached in Redis; a cold or unreachable
// cache degrades to querying, never to an error.
type Service struct {
	store    StorePort
	cache    *redis.Client
	logger   *slog.Logger
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService builds Service. cache may be nil to disable caching.
func NewService(store StorePort, cache *redis.Client, logger *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{store: store, cache: cache, logger: logger, cacheTTL: cacheTTL, now: time.Now}
}

// Stats returns the dashboard snapshot, served from cache when fresh.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Stats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return Stats{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", slog.Any("error", err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cacheKey).Err()
}

func (s *Service) compute(ctx context.Context) (Stats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		summary StockSummary
		todayW  RevenueWindow
		weekW   RevenueWindow
		monthW  RevenueWindow
		pending int64
		sellers []TopSeller
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.store.StockSummary(ctx)
		return err
	})
	g.Go(func() (err error) {
		todayW, err = s.store.RevenueSince(ctx, today)
		return err
	})
	g.Go(func() (err error) {
		weekW, err = s.store.RevenueSince(ctx, today.AddDate(0, 0, -6))
		return err
	})
	g.Go(func() (err error) {
		monthW, err = s.store.RevenueSince(ctx, today.AddDate(0, -1, 0))
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.store.PendingPurchaseCount(ctx)
		return err
	})
	g.Go(func() (err error) {
		sellers, err = s.store.TopSellers(ctx, today.AddDate(0, -1, 0), 5)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("dashboard: compute stats: %w", err)
	}

	return Stats{
		StockValue:       summary.StockValue,
		ItemCount:        summary.ItemCount,
		LowStockCount:    summary.LowStockCount,
		OutOfStockCount:  summary.OutOfStockCount,
		PendingPurchases: pending,
		TodayRevenue:     todayW.Revenue,
		TodayProfit:      todayW.Profit,
		WeekRevenue:      weekW.Revenue,
		WeekProfit:       weekW.Profit,
		MonthRevenue:     monthW.Revenue,
		MonthProfit:      monthW.Profit,
		TopSellers:       sellers,
		GeneratedAt:      now,
	}, nil
}
