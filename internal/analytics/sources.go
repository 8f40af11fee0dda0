package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"paydash/internal/domain"
)

// TransactionStats is the aggregate surface the engine requires from the
// transaction data layer. All ranged methods take a half-open [from, to)
// timestamp interval in UTC.
type TransactionStats interface {
	TotalCount(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.TxnStatus) (int64, error)
	SumAmountByStatus(ctx context.Context, status domain.TxnStatus) (decimal.NullDecimal, error)

	TotalCountInRange(ctx context.Context, from, to time.Time) (int64, error)
	CountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (int64, error)
	SumAmountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (decimal.NullDecimal, error)

	PaymentMethodCounts(ctx context.Context, from, to time.Time) ([]domain.PaymentMethodRow, error)
}

// UserStats is the user-count surface of the KPI summary. User counts are
// global by design; range filters never apply to them.
type UserStats interface {
	Count(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// DailySource is the preferred daily shape: one query per range returning
// per-day counters and totals together.
type DailySource interface {
	DailyStats(ctx context.Context, from, to time.Time) ([]domain.DailyRow, error)
}

// DailySplitSource is the fallback daily shape: per-(day, status) counts plus
// a separate status-agnostic totals query. The engine merges the two.
type DailySplitSource interface {
	DailyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.DailyStatusCount, error)
	DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailyTotal, error)
}

// HourlySource is the preferred hourly shape: per-hour counters in one query.
type HourlySource interface {
	HourlyStats(ctx context.Context, from, to time.Time) ([]domain.HourlyRow, error)
}

// HourlySplitSource is the fallback hourly shape: per-(hour, status) counts.
type HourlySplitSource interface {
	HourlyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.HourlyStatusCount, error)
}
