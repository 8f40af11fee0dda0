package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayFormat renders a calendar day the way bucket labels and cache keys use it.
const DayFormat = "2006-01-02"

// DateRange is an inclusive calendar-day range. Start and End are UTC
// midnights. An inverted range (Start after End) is representable and spans
// zero days; range queries over it match nothing.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day count, or 0 for an inverted range.
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Interval converts the inclusive day range into the half-open timestamp
// interval [Start 00:00, End+1d 00:00) the data layer queries with.
func (r DateRange) Interval() (from, to time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

// Key renders the range boundaries for cache keys and logs.
func (r DateRange) Key() string {
	return r.Start.Format(DayFormat) + ":" + r.End.Format(DayFormat)
}

// DashboardSummary is the aggregate KPI view of the ledger.
type DashboardSummary struct {
	TotalUsers         int64           `json:"totalUsers"`
	NewUsersToday      int64           `json:"newUsersToday"`
	TotalTransactions  int64           `json:"totalTransactions"`
	PendingCount       int64           `json:"pendingCount"`
	TotalSuccessVolume decimal.Decimal `json:"totalSuccessVolume"`
	AverageTicketSize  decimal.Decimal `json:"averageTicketSize"`
	TotalFailedVolume  decimal.Decimal `json:"totalFailedVolume"`
	SuccessRatePercent float64         `json:"successRatePercent"`
}

// DailyBucket holds one calendar day of the daily status series. Every day in
// the resolved range gets a bucket even when no transactions exist.
// TransactionCount and TotalAmount come from a status-agnostic query and may
// exceed the sum of the three named counters when unmodeled statuses occur.
type DailyBucket struct {
	Date             string          `json:"date"`
	SuccessCount     int64           `json:"successCount"`
	FailedCount      int64           `json:"failedCount"`
	PendingCount     int64           `json:"pendingCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int64           `json:"transactionCount"`
}

// HourlyBucket holds one hour-of-day slot; the series always has 24.
type HourlyBucket struct {
	Hour         int   `json:"hour"`
	SuccessCount int64 `json:"successCount"`
	FailedCount  int64 `json:"failedCount"`
	PendingCount int64 `json:"pendingCount"`
}

// PaymentMethodStat counts transactions per payment method observed in range.
// Methods with no occurrences are omitted; the method domain is open ended.
type PaymentMethodStat struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
}

// Aggregate row shapes returned by the data layer. Bucket days travel as
// strings because GROUP BY day queries render them with to_char; the engine
// parses them defensively.

// DailyRow is the combined daily shape: one query returns counters and
// totals together.
type DailyRow struct {
	Day          string          `db:"day"`
	TxnCount     int64           `db:"txn_count"`
	TotalAmount  decimal.Decimal `db:"total_amount"`
	SuccessCount int64           `db:"success_count"`
	FailedCount  int64           `db:"failed_count"`
	PendingCount int64           `db:"pending_count"`
}

// DailyStatusCount is half of the split daily shape: per-(day,status) counts.
type DailyStatusCount struct {
	Day    string `db:"day"`
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// DailyTotal is the other half of the split daily shape: status-agnostic
// per-day volume and count.
type DailyTotal struct {
	Day         string          `db:"day"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	TxnCount    int64           `db:"txn_count"`
}

// HourlyRow is the combined hourly shape.
type HourlyRow struct {
	Hour         int   `db:"hour"`
	SuccessCount int64 `db:"success_count"`
	FailedCount  int64 `db:"failed_count"`
	PendingCount int64 `db:"pending_count"`
}

// HourlyStatusCount is the split hourly shape: per-(hour,status) counts.
type HourlyStatusCount struct {
	Hour   int    `db:"hour"`
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

// PaymentMethodRow is the grouped payment-method count row.
type PaymentMethodRow struct {
	Method string `db:"payment_method"`
	Count  int64  `db:"count"`
}
