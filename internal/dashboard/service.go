// Package dashboard exposes the dashboard read API: cached aggregations plus
// the paginated transaction list. It decorates the aggregation engine with a
// TTL cache and collapses concurrent recomputes of the same key.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"paydash/internal/domain"
	"paydash/pkg/cache"
	"paydash/pkg/errors"
	"paydash/pkg/logger"
	"paydash/pkg/validator"
)

// Aggregator is the engine surface the service decorates.
type Aggregator interface {
	Summarize(ctx context.Context) (*domain.DashboardSummary, error)
	SummarizeRange(ctx context.Context, start, end *time.Time) (*domain.DashboardSummary, error)
	DailySeries(ctx context.Context, start, end *time.Time) ([]domain.DailyBucket, error)
	HourlySeries(ctx context.Context, start, end *time.Time) ([]domain.HourlyBucket, error)
	PaymentMethods(ctx context.Context, start, end *time.Time) ([]domain.PaymentMethodStat, error)
}

// TransactionSearch is the list surface of the transaction repository.
type TransactionSearch interface {
	Search(ctx context.Context, criteria domain.TransactionSearchCriteria, limit, offset int) ([]domain.TransactionListItem, error)
	CountSearch(ctx context.Context, criteria domain.TransactionSearchCriteria) (int64, error)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service struct {
	engine   Aggregator
	search   TransactionSearch
	store    cache.Store
	validate *validator.Validator
	ttl      time.Duration
	group    singleflight.Group
	log      logger.Logger
}

func NewService(engine Aggregator, search TransactionSearch, store cache.Store, validate *validator.Validator, ttl time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		engine:   engine,
		search:   search,
		store:    store,
		validate: validate,
		ttl:      ttl,
		log:      log,
	}
}

// Summary returns the all-time KPI summary.
func (s *Service) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	key := "dashboard:stats"

	var hit domain.DashboardSummary
	if s.cacheGet(ctx, key, &hit) {
		return &hit, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		summary, err := s.engine.Summarize(ctx)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, summary)
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DashboardSummary), nil
}

// FilteredSummary returns the KPI summary over an optional date range.
func (s *Service) FilteredSummary(ctx context.Context, start, end *time.Time) (*domain.DashboardSummary, error) {
	key := rangeKey("dashboard:stats:filtered", start, end)

	var hit domain.DashboardSummary
	if s.cacheGet(ctx, key, &hit) {
		return &hit, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		summary, err := s.engine.SummarizeRange(ctx, start, end)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, summary)
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DashboardSummary), nil
}

// DailySeries returns the dense per-day status series.
func (s *Service) DailySeries(ctx context.Context, start, end *time.Time) ([]domain.DailyBucket, error) {
	key := rangeKey("dashboard:daily", start, end)

	var hit []domain.DailyBucket
	if s.cacheGet(ctx, key, &hit) {
		return hit, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		series, err := s.engine.DailySeries(ctx, start, end)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, series)
		return series, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.DailyBucket), nil
}

// HourlySeries returns the 24-slot hour-of-day traffic series.
func (s *Service) HourlySeries(ctx context.Context, start, end *time.Time) ([]domain.HourlyBucket, error) {
	key := rangeKey("dashboard:hourly", start, end)

	var hit []domain.HourlyBucket
	if s.cacheGet(ctx, key, &hit) {
		return hit, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		series, err := s.engine.HourlySeries(ctx, start, end)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, series)
		return series, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.HourlyBucket), nil
}

// PaymentMethods returns the per-method transaction counts.
func (s *Service) PaymentMethods(ctx context.Context, start, end *time.Time) ([]domain.PaymentMethodStat, error) {
	key := rangeKey("dashboard:methods", start, end)

	var hit []domain.PaymentMethodStat
	if s.cacheGet(ctx, key, &hit) {
		return hit, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		stats, err := s.engine.PaymentMethods(ctx, start, end)
		if err != nil {
			return nil, err
		}
		s.cacheSet(ctx, key, stats)
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.PaymentMethodStat), nil
}

// ListTransactions returns one page of the transaction list, newest first.
// The list is uncached: it pages over live data.
func (s *Service) ListTransactions(ctx context.Context, criteria domain.TransactionSearchCriteria, page, size int) (*domain.TransactionPage, error) {
	if err := s.validate.Validate(criteria); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, err := s.search.Search(ctx, criteria, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	total, err := s.search.CountSearch(ctx, criteria)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionPage{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

// cacheGet reports whether dest was filled from the cache. Read failures
// other than a miss degrade to a recompute with a warning.
func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	err := s.store.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
	return false
}

func (s *Service) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// rangeKey renders cache keys from the raw caller parameters, absent ones as
// empty segments, so default-range and explicit-range requests cache apart.
func rangeKey(prefix string, start, end *time.Time) string {
	return prefix + ":" + renderParam(start) + ":" + renderParam(end)
}

func renderParam(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DayFormat)
}
