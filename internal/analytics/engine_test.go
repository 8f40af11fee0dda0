package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"paydash/internal/domain"
	"paydash/pkg/errors"
	"paydash/pkg/logger"
)

// --- Mocks ---

// mockStats implements the base TransactionStats surface. Embedding it gives
// the shape-specific mocks the same expectation plumbing.
type mockStats struct {
	mock.Mock
}

func (m *mockStats) TotalCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStats) CountByStatus(ctx context.Context, status domain.TxnStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStats) SumAmountByStatus(ctx context.Context, status domain.TxnStatus) (decimal.NullDecimal, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(decimal.NullDecimal), args.Error(1)
}

func (m *mockStats) TotalCountInRange(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStats) CountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (int64, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStats) SumAmountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (decimal.NullDecimal, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).(decimal.NullDecimal), args.Error(1)
}

func (m *mockStats) PaymentMethodCounts(ctx context.Context, from, to time.Time) ([]domain.PaymentMethodRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PaymentMethodRow), args.Error(1)
}

// mockCombinedStats adds the combined daily and hourly shapes.
type mockCombinedStats struct {
	mockStats
}

func (m *mockCombinedStats) DailyStats(ctx context.Context, from, to time.Time) ([]domain.DailyRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyRow), args.Error(1)
}

func (m *mockCombinedStats) HourlyStats(ctx context.Context, from, to time.Time) ([]domain.HourlyRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HourlyRow), args.Error(1)
}

// mockSplitStats adds only the split daily and hourly shapes.
type mockSplitStats struct {
	mockStats
}

func (m *mockSplitStats) DailyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.DailyStatusCount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyStatusCount), args.Error(1)
}

func (m *mockSplitStats) DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailyTotal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyTotal), args.Error(1)
}

func (m *mockSplitStats) HourlyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.HourlyStatusCount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HourlyStatusCount), args.Error(1)
}

type mockUserStats struct {
	mock.Mock
}

func (m *mockUserStats) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserStats) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

// --- Helpers ---

var testNow = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

func newTestEngine(txns TransactionStats, users UserStats) *Engine {
	e := New(txns, users, Options{}, logger.NewNop())
	e.now = func() time.Time { return testNow }
	return e
}

func nullDec(t *testing.T, s string) decimal.NullDecimal {
	t.Helper()
	return decimal.NullDecimal{Decimal: dec(t, s), Valid: true}
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// --- Summary ---

func TestSummarize_ComputesKPIs(t *testing.T) {
	txns := new(mockCombinedStats)
	users := new(mockUserStats)

	txns.On("TotalCount", mock.Anything).Return(int64(100), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusSuccess).Return(int64(60), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusPending).Return(int64(10), nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusSuccess).Return(nullDec(t, "6000.00"), nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusFailed).Return(nullDec(t, "1500.00"), nil)
	users.On("Count", mock.Anything).Return(int64(40), nil)
	users.On("CountCreatedSince", mock.Anything, testNow.Add(-24*time.Hour)).Return(int64(3), nil)

	got, err := newTestEngine(txns, users).Summarize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(40), got.TotalUsers)
	assert.Equal(t, int64(3), got.NewUsersToday)
	assert.Equal(t, int64(100), got.TotalTransactions)
	assert.Equal(t, int64(10), got.PendingCount)
	assert.True(t, got.TotalSuccessVolume.Equal(dec(t, "6000.00")))
	assert.True(t, got.TotalFailedVolume.Equal(dec(t, "1500.00")))
	assert.True(t, got.AverageTicketSize.Equal(decimal.NewFromInt(100)), "got %s", got.AverageTicketSize)
	assert.Equal(t, 60.0, got.SuccessRatePercent)
	txns.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestSummarize_NullVolumesBecomeZero(t *testing.T) {
	txns := new(mockCombinedStats)
	users := new(mockUserStats)

	txns.On("TotalCount", mock.Anything).Return(int64(5), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusSuccess).Return(int64(0), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusPending).Return(int64(5), nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusSuccess).Return(decimal.NullDecimal{}, nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusFailed).Return(decimal.NullDecimal{}, nil)
	users.On("Count", mock.Anything).Return(int64(2), nil)
	users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(int64(0), nil)

	got, err := newTestEngine(txns, users).Summarize(context.Background())

	require.NoError(t, err)
	assert.True(t, got.TotalSuccessVolume.IsZero())
	assert.True(t, got.TotalFailedVolume.IsZero())
	assert.True(t, got.AverageTicketSize.IsZero())
	assert.Equal(t, 0.0, got.SuccessRatePercent)
}

func TestSummarize_NoSuccessfulTransactions(t *testing.T) {
	txns := new(mockCombinedStats)
	users := new(mockUserStats)

	txns.On("TotalCount", mock.Anything).Return(int64(0), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusSuccess).Return(int64(0), nil)
	txns.On("CountByStatus", mock.Anything, domain.StatusPending).Return(int64(0), nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusSuccess).Return(nullDec(t, "0"), nil)
	txns.On("SumAmountByStatus", mock.Anything, domain.StatusFailed).Return(nullDec(t, "0"), nil)
	users.On("Count", mock.Anything).Return(int64(0), nil)
	users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(int64(0), nil)

	got, err := newTestEngine(txns, users).Summarize(context.Background())

	require.NoError(t, err)
	assert.True(t, got.AverageTicketSize.IsZero())
	assert.Equal(t, 0.0, got.SuccessRatePercent)
}

func TestSummarizeRange_QueriesHalfOpenInterval(t *testing.T) {
	txns := new(mockCombinedStats)
	users := new(mockUserStats)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)

	txns.On("TotalCountInRange", mock.Anything, from, to).Return(int64(8), nil)
	txns.On("CountByStatusInRange", mock.Anything, domain.StatusSuccess, from, to).Return(int64(6), nil)
	txns.On("CountByStatusInRange", mock.Anything, domain.StatusPending, from, to).Return(int64(1), nil)
	txns.On("SumAmountByStatusInRange", mock.Anything, domain.StatusSuccess, from, to).Return(nullDec(t, "300"), nil)
	txns.On("SumAmountByStatusInRange", mock.Anything, domain.StatusFailed, from, to).Return(nullDec(t, "50"), nil)
	// User counts stay global even in ranged mode.
	users.On("Count", mock.Anything).Return(int64(12), nil)
	users.On("CountCreatedSince", mock.Anything, testNow.Add(-24*time.Hour)).Return(int64(1), nil)

	got, err := newTestEngine(txns, users).SummarizeRange(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))

	require.NoError(t, err)
	assert.Equal(t, int64(8), got.TotalTransactions)
	assert.Equal(t, int64(12), got.TotalUsers)
	assert.True(t, got.AverageTicketSize.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 75.0, got.SuccessRatePercent)
	txns.AssertExpectations(t)
}

// --- Daily series ---

func TestDailySeries_ZeroFillsMissingDays(t *testing.T) {
	txns := new(mockCombinedStats)

	txns.On("DailyStats", mock.Anything,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	).Return([]domain.DailyRow{
		{Day: "2024-01-02", TxnCount: 5, TotalAmount: dec(t, "500.00"), SuccessCount: 5},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-01", got[0].Date)
	assert.Equal(t, "2024-01-02", got[1].Date)
	assert.Equal(t, "2024-01-03", got[2].Date)

	assert.Zero(t, got[0].SuccessCount)
	assert.Zero(t, got[0].TransactionCount)
	assert.True(t, got[0].TotalAmount.IsZero())

	assert.Equal(t, int64(5), got[1].SuccessCount)
	assert.Equal(t, int64(5), got[1].TransactionCount)
	assert.True(t, got[1].TotalAmount.Equal(dec(t, "500.00")))

	assert.Zero(t, got[2].SuccessCount)
	txns.AssertExpectations(t)
}

func TestDailySeries_DefaultSpanYieldsSevenBuckets(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), nil, nil)

	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, "2024-01-04", got[0].Date)
	assert.Equal(t, "2024-01-10", got[6].Date)
	for _, b := range got {
		assert.Zero(t, b.TransactionCount)
		assert.True(t, b.TotalAmount.IsZero())
	}
}

func TestDailySeries_SplitShapeMergesCountsAndTotals(t *testing.T) {
	txns := new(mockSplitStats)

	txns.On("DailyStatusCounts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyStatusCount{
		{Day: "2024-01-02", Status: "SUCCESS", Count: 5},
		{Day: "2024-01-02", Status: "FAILED", Count: 1},
		{Day: "2024-01-02", Status: "REFUNDED", Count: 2},
	}, nil)
	txns.On("DailyTotals", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyTotal{
		{Day: "2024-01-02", TotalAmount: dec(t, "800.00"), TxnCount: 8},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))

	require.NoError(t, err)
	require.Len(t, got, 3)

	// The unmodeled REFUNDED rows touch only the status-agnostic totals.
	b := got[1]
	assert.Equal(t, int64(5), b.SuccessCount)
	assert.Equal(t, int64(1), b.FailedCount)
	assert.Zero(t, b.PendingCount)
	assert.Equal(t, int64(8), b.TransactionCount)
	assert.True(t, b.TotalAmount.Equal(dec(t, "800.00")))
}

func TestDailySeries_DropsRowsOutsideRange(t *testing.T) {
	txns := new(mockCombinedStats)

	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{
		{Day: "2023-12-31", TxnCount: 9, TotalAmount: dec(t, "900")},
		{Day: "2024-01-01", TxnCount: 2, TotalAmount: dec(t, "20")},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 2))

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].TransactionCount)
	assert.Zero(t, got[1].TransactionCount)
}

func TestDailySeries_TimestampDayLabels(t *testing.T) {
	txns := new(mockCombinedStats)

	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{
		{Day: "2024-01-02T00:00:00", TxnCount: 3, TotalAmount: dec(t, "30")},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))

	require.NoError(t, err)
	assert.Equal(t, int64(3), got[1].TransactionCount)
}

func TestDailySeries_MalformedDayLabelFails(t *testing.T) {
	txns := new(mockCombinedStats)

	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{
		{Day: "not-a-date", TxnCount: 3, TotalAmount: dec(t, "30")},
	}, nil)

	_, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedRow))
}

func TestDailySeries_InvertedRangeIsEmpty(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), datePtr(2024, 1, 8), datePtr(2024, 1, 3))

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailySeries_Idempotent(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("DailyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.DailyRow{
		{Day: "2024-01-02", TxnCount: 5, TotalAmount: dec(t, "500.00"), SuccessCount: 5},
	}, nil)

	e := newTestEngine(txns, new(mockUserStats))

	first, err := e.DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))
	require.NoError(t, err)
	second, err := e.DailySeries(context.Background(), datePtr(2024, 1, 1), datePtr(2024, 1, 3))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDailySeries_NoSupportedShape(t *testing.T) {
	txns := new(mockStats)

	_, err := newTestEngine(txns, new(mockUserStats)).DailySeries(context.Background(), nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoAggregateSource))
}

// --- Hourly series ---

func TestHourlySeries_EmptyDayYields24ZeroBuckets(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("HourlyStats", mock.Anything,
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
	).Return([]domain.HourlyRow{}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).HourlySeries(context.Background(), nil, nil)

	require.NoError(t, err)
	require.Len(t, got, 24)
	for h, b := range got {
		assert.Equal(t, h, b.Hour)
		assert.Zero(t, b.SuccessCount)
		assert.Zero(t, b.FailedCount)
		assert.Zero(t, b.PendingCount)
	}
	txns.AssertExpectations(t)
}

func TestHourlySeries_PopulatesReportedHours(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("HourlyStats", mock.Anything, mock.Anything, mock.Anything).Return([]domain.HourlyRow{
		{Hour: 9, SuccessCount: 3, FailedCount: 1},
		{Hour: 23, PendingCount: 2},
		{Hour: 24, SuccessCount: 99}, // out of domain, dropped
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).HourlySeries(context.Background(), nil, nil)

	require.NoError(t, err)
	require.Len(t, got, 24)
	assert.Equal(t, int64(3), got[9].SuccessCount)
	assert.Equal(t, int64(1), got[9].FailedCount)
	assert.Equal(t, int64(2), got[23].PendingCount)

	var totalSuccess int64
	for _, b := range got {
		totalSuccess += b.SuccessCount
	}
	assert.Equal(t, int64(3), totalSuccess)
}

func TestHourlySeries_SplitShapeToleratesUnknownStatus(t *testing.T) {
	txns := new(mockSplitStats)
	txns.On("HourlyStatusCounts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.HourlyStatusCount{
		{Hour: 7, Status: "SUCCESS", Count: 4},
		{Hour: 7, Status: "PENDING", Count: 1},
		{Hour: 7, Status: "REFUNDED", Count: 6},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).HourlySeries(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(4), got[7].SuccessCount)
	assert.Equal(t, int64(1), got[7].PendingCount)
	assert.Zero(t, got[7].FailedCount)
}

func TestHourlySeries_NoSupportedShape(t *testing.T) {
	txns := new(mockStats)

	_, err := newTestEngine(txns, new(mockUserStats)).HourlySeries(context.Background(), nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoAggregateSource))
}

// --- Payment methods ---

func TestPaymentMethods_PreservesDataLayerOrder(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("PaymentMethodCounts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.PaymentMethodRow{
		{Method: "UPI", Count: 12},
		{Method: "CARD", Count: 7},
	}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).PaymentMethods(context.Background(), nil, nil)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PaymentMethodStat{Method: "UPI", Count: 12}, got[0])
	assert.Equal(t, domain.PaymentMethodStat{Method: "CARD", Count: 7}, got[1])
}

func TestPaymentMethods_EmptyRange(t *testing.T) {
	txns := new(mockCombinedStats)
	txns.On("PaymentMethodCounts", mock.Anything, mock.Anything, mock.Anything).Return([]domain.PaymentMethodRow{}, nil)

	got, err := newTestEngine(txns, new(mockUserStats)).PaymentMethods(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
