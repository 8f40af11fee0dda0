// Package analytics implements the aggregation engine behind the dashboard:
// the KPI summary, the daily status series, the hourly traffic series and the
// payment-method distribution. The engine is pure computation over the
// aggregate surfaces in sources.go; persistence and caching live elsewhere.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"paydash/internal/domain"
	"paydash/pkg/errors"
	"paydash/pkg/logger"
)

// Options tunes the default spans applied when callers omit range boundaries.
// Zero values fall back to the package defaults.
type Options struct {
	SummarySpanDays int
	DailySpanDays   int
}

// Engine computes dashboard aggregations. It is stateless and safe for
// concurrent use.
type Engine struct {
	txns        TransactionStats
	users       UserStats
	summarySpan int
	dailySpan   int
	now         func() time.Time
	log         logger.Logger
}

func New(txns TransactionStats, users UserStats, opts Options, log logger.Logger) *Engine {
	if opts.SummarySpanDays <= 0 {
		opts.SummarySpanDays = DefaultSummarySpanDays
	}
	if opts.DailySpanDays <= 0 {
		opts.DailySpanDays = DefaultDailySpanDays
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Engine{
		txns:        txns,
		users:       users,
		summarySpan: opts.SummarySpanDays,
		dailySpan:   opts.DailySpanDays,
		now:         time.Now,
		log:         log,
	}
}

// Summarize builds the all-time KPI summary.
func (e *Engine) Summarize(ctx context.Context) (*domain.DashboardSummary, error) {
	totalTxns, err := e.txns.TotalCount(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count transactions")
	}

	successCount, err := e.txns.CountByStatus(ctx, domain.StatusSuccess)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count successful transactions")
	}

	pendingCount, err := e.txns.CountByStatus(ctx, domain.StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count pending transactions")
	}

	successVolume, err := e.txns.SumAmountByStatus(ctx, domain.StatusSuccess)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum successful volume")
	}

	failedVolume, err := e.txns.SumAmountByStatus(ctx, domain.StatusFailed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum failed volume")
	}

	return e.buildSummary(ctx, totalTxns, successCount, pendingCount, successVolume, failedVolume)
}

// SummarizeRange builds the KPI summary over a caller-supplied range. The
// transaction figures are range-filtered; the user counts stay global.
func (e *Engine) SummarizeRange(ctx context.Context, start, end *time.Time) (*domain.DashboardSummary, error) {
	r := ResolveRange(start, end, e.summarySpan, e.now())
	from, to := r.Interval()

	totalTxns, err := e.txns.TotalCountInRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count transactions in range")
	}

	successCount, err := e.txns.CountByStatusInRange(ctx, domain.StatusSuccess, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count successful transactions in range")
	}

	pendingCount, err := e.txns.CountByStatusInRange(ctx, domain.StatusPending, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count pending transactions in range")
	}

	successVolume, err := e.txns.SumAmountByStatusInRange(ctx, domain.StatusSuccess, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum successful volume in range")
	}

	failedVolume, err := e.txns.SumAmountByStatusInRange(ctx, domain.StatusFailed, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum failed volume in range")
	}

	return e.buildSummary(ctx, totalTxns, successCount, pendingCount, successVolume, failedVolume)
}

func (e *Engine) buildSummary(ctx context.Context, totalTxns, successCount, pendingCount int64, successVolume, failedVolume decimal.NullDecimal) (*domain.DashboardSummary, error) {
	totalUsers, err := e.users.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}

	newUsers, err := e.users.CountCreatedSince(ctx, e.now().Add(-24*time.Hour))
	if err != nil {
		return nil, errors.Wrap(err, "failed to count new users")
	}

	grossVolume := decimal.Zero
	if successVolume.Valid {
		grossVolume = successVolume.Decimal
	}

	failedGross := decimal.Zero
	if failedVolume.Valid {
		failedGross = failedVolume.Decimal
	}

	avgTicket := decimal.Zero
	if successCount > 0 {
		avgTicket = divSigFigs(grossVolume, decimal.NewFromInt(successCount), averageTicketPrecision)
	}

	successRate := 0.0
	if totalTxns > 0 {
		successRate = float64(successCount) * 100.0 / float64(totalTxns)
	}

	return &domain.DashboardSummary{
		TotalUsers:         totalUsers,
		NewUsersToday:      newUsers,
		TotalTransactions:  totalTxns,
		PendingCount:       pendingCount,
		TotalSuccessVolume: grossVolume,
		AverageTicketSize:  avgTicket,
		TotalFailedVolume:  failedGross,
		SuccessRatePercent: successRate,
	}, nil
}

// DailySeries builds the per-day status series over the resolved range. The
// series is dense: one bucket per calendar day, zero-filled when no rows
// exist, ordered oldest first.
func (e *Engine) DailySeries(ctx context.Context, start, end *time.Time) ([]domain.DailyBucket, error) {
	r := ResolveRange(start, end, e.dailySpan, e.now())
	from, to := r.Interval()

	buckets := make([]domain.DailyBucket, 0, r.Days())
	index := make(map[string]int, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DayFormat)
		index[key] = len(buckets)
		buckets = append(buckets, domain.DailyBucket{Date: key, TotalAmount: decimal.Zero})
	}

	switch src := e.txns.(type) {
	case DailySource:
		rows, err := src.DailyStats(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load daily stats")
		}
		for _, row := range rows {
			i, ok, err := e.locateDay(index, row.Day)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			b := &buckets[i]
			b.SuccessCount = row.SuccessCount
			b.FailedCount = row.FailedCount
			b.PendingCount = row.PendingCount
			b.TotalAmount = row.TotalAmount
			b.TransactionCount = row.TxnCount
		}

	case DailySplitSource:
		counts, err := src.DailyStatusCounts(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load daily status counts")
		}
		totals, err := src.DailyTotals(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load daily totals")
		}
		for _, row := range counts {
			i, ok, err := e.locateDay(index, row.Day)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			b := &buckets[i]
			switch domain.TxnStatus(row.Status) {
			case domain.StatusSuccess:
				b.SuccessCount += row.Count
			case domain.StatusPending:
				b.PendingCount += row.Count
			case domain.StatusFailed:
				b.FailedCount += row.Count
			default:
				// Unmodeled statuses surface only through the
				// status-agnostic totals.
			}
		}
		for _, row := range totals {
			i, ok, err := e.locateDay(index, row.Day)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			b := &buckets[i]
			b.TotalAmount = row.TotalAmount
			b.TransactionCount = row.TxnCount
		}

	default:
		return nil, errors.ErrNoAggregateSource
	}

	return buckets, nil
}

// HourlySeries builds the 24-slot hour-of-day traffic series for the resolved
// range. With no boundaries supplied the range collapses to today.
func (e *Engine) HourlySeries(ctx context.Context, start, end *time.Time) ([]domain.HourlyBucket, error) {
	r := ResolveRange(start, end, 0, e.now())
	from, to := r.Interval()

	buckets := make([]domain.HourlyBucket, 24)
	for h := range buckets {
		buckets[h].Hour = h
	}

	switch src := e.txns.(type) {
	case HourlySource:
		rows, err := src.HourlyStats(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load hourly stats")
		}
		for _, row := range rows {
			if row.Hour < 0 || row.Hour > 23 {
				e.log.Warn("dropping hourly row outside 0-23", map[string]interface{}{
					"hour": row.Hour,
				})
				continue
			}
			b := &buckets[row.Hour]
			b.SuccessCount = row.SuccessCount
			b.FailedCount = row.FailedCount
			b.PendingCount = row.PendingCount
		}

	case HourlySplitSource:
		rows, err := src.HourlyStatusCounts(ctx, from, to)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load hourly status counts")
		}
		for _, row := range rows {
			if row.Hour < 0 || row.Hour > 23 {
				e.log.Warn("dropping hourly row outside 0-23", map[string]interface{}{
					"hour": row.Hour,
				})
				continue
			}
			b := &buckets[row.Hour]
			switch domain.TxnStatus(row.Status) {
			case domain.StatusSuccess:
				b.SuccessCount += row.Count
			case domain.StatusPending:
				b.PendingCount += row.Count
			case domain.StatusFailed:
				b.FailedCount += row.Count
			}
		}

	default:
		return nil, errors.ErrNoAggregateSource
	}

	return buckets, nil
}

// PaymentMethods builds the per-method transaction counts for the resolved
// range, ordered by count descending as the data layer returns them.
func (e *Engine) PaymentMethods(ctx context.Context, start, end *time.Time) ([]domain.PaymentMethodStat, error) {
	r := ResolveRange(start, end, e.summarySpan, e.now())
	from, to := r.Interval()

	rows, err := e.txns.PaymentMethodCounts(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load payment method counts")
	}

	stats := make([]domain.PaymentMethodStat, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, domain.PaymentMethodStat{Method: row.Method, Count: row.Count})
	}
	return stats, nil
}

// locateDay parses a bucket day label and maps it into the prefilled series.
// Rows for days outside the resolved range are dropped with a debug log; a
// label that cannot be parsed at all fails the whole series.
func (e *Engine) locateDay(index map[string]int, raw string) (int, bool, error) {
	day, err := parseBucketDay(raw)
	if err != nil {
		return 0, false, err
	}
	i, ok := index[day]
	if !ok {
		e.log.Debug("dropping aggregate row outside resolved range", map[string]interface{}{
			"day": day,
		})
		return 0, false, nil
	}
	return i, true, nil
}

// bucketDayLayouts are the label shapes GROUP BY day queries have been seen
// to produce, tried in order.
var bucketDayLayouts = []string{
	domain.DayFormat,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseBucketDay(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range bucketDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(domain.DayFormat), nil
		}
	}
	return "", errors.Wrap(errors.ErrMalformedRow, fmt.Sprintf("unparsable bucket day %q", raw))
}
