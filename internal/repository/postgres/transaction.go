package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"paydash/internal/domain"
	"paydash/pkg/errors"
)

// TransactionRepository runs the aggregate and list queries the dashboard
// needs. It implements both the combined and the split aggregate shapes; the
// engine prefers the combined ones.
type TransactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) TotalCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions`)
	return count, errors.Wrap(err, "failed to count transactions")
}

func (r *TransactionRepository) CountByStatus(ctx context.Context, status domain.TxnStatus) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM transactions WHERE status = $1`, status)
	return count, errors.Wrap(err, "failed to count transactions by status")
}

// SumAmountByStatus returns the amount sum for a status. The SUM of an empty
// set is SQL NULL; callers normalize it to zero.
func (r *TransactionRepository) SumAmountByStatus(ctx context.Context, status domain.TxnStatus) (decimal.NullDecimal, error) {
	var sum decimal.NullDecimal
	err := r.db.GetContext(ctx, &sum,
		`SELECT SUM(amount) FROM transactions WHERE status = $1`, status)
	return sum, errors.Wrap(err, "failed to sum transaction amounts by status")
}

func (r *TransactionRepository) TotalCountInRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM transactions WHERE created_at >= $1 AND created_at < $2`,
		from, to)
	return count, errors.Wrap(err, "failed to count transactions in range")
}

func (r *TransactionRepository) CountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM transactions WHERE status = $1 AND created_at >= $2 AND created_at < $3`,
		status, from, to)
	return count, errors.Wrap(err, "failed to count transactions by status in range")
}

func (r *TransactionRepository) SumAmountByStatusInRange(ctx context.Context, status domain.TxnStatus, from, to time.Time) (decimal.NullDecimal, error) {
	var sum decimal.NullDecimal
	err := r.db.GetContext(ctx, &sum,
		`SELECT SUM(amount) FROM transactions WHERE status = $1 AND created_at >= $2 AND created_at < $3`,
		status, from, to)
	return sum, errors.Wrap(err, "failed to sum transaction amounts by status in range")
}

// DailyStats is the combined daily shape: per-day counters and totals in one
// query. Days travel as to_char strings; DATE values scan poorly into string
// columns through lib/pq.
func (r *TransactionRepository) DailyStats(ctx context.Context, from, to time.Time) ([]domain.DailyRow, error) {
	query := `
		SELECT
			to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			COUNT(*) AS txn_count,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) FILTER (WHERE status = 'SUCCESS') AS success_count,
			COUNT(*) FILTER (WHERE status = 'FAILED') AS failed_count,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`

	rows := []domain.DailyRow{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load daily stats")
}

// DailyStatusCounts is half of the split daily shape.
func (r *TransactionRepository) DailyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.DailyStatusCount, error) {
	query := `
		SELECT
			to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			status,
			COUNT(*) AS count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1, 2
		ORDER BY 1
	`

	rows := []domain.DailyStatusCount{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load daily status counts")
}

// DailyTotals is the status-agnostic half of the split daily shape.
func (r *TransactionRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailyTotal, error) {
	query := `
		SELECT
			to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			COALESCE(SUM(amount), 0) AS total_amount,
			COUNT(*) AS txn_count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`

	rows := []domain.DailyTotal{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load daily totals")
}

// HourlyStats is the combined hourly shape: hour-of-day counters across the
// whole interval.
func (r *TransactionRepository) HourlyStats(ctx context.Context, from, to time.Time) ([]domain.HourlyRow, error) {
	query := `
		SELECT
			EXTRACT(HOUR FROM created_at AT TIME ZONE 'UTC')::int AS hour,
			COUNT(*) FILTER (WHERE status = 'SUCCESS') AS success_count,
			COUNT(*) FILTER (WHERE status = 'FAILED') AS failed_count,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`

	rows := []domain.HourlyRow{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load hourly stats")
}

// HourlyStatusCounts is the split hourly shape.
func (r *TransactionRepository) HourlyStatusCounts(ctx context.Context, from, to time.Time) ([]domain.HourlyStatusCount, error) {
	query := `
		SELECT
			EXTRACT(HOUR FROM created_at AT TIME ZONE 'UTC')::int AS hour,
			status,
			COUNT(*) AS count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1, 2
		ORDER BY 1
	`

	rows := []domain.HourlyStatusCount{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load hourly status counts")
}

func (r *TransactionRepository) PaymentMethodCounts(ctx context.Context, from, to time.Time) ([]domain.PaymentMethodRow, error) {
	query := `
		SELECT payment_method, COUNT(*) AS count
		FROM transactions
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY payment_method
		ORDER BY count DESC, payment_method
	`

	rows := []domain.PaymentMethodRow{}
	err := r.db.SelectContext(ctx, &rows, query, from, to)
	return rows, errors.Wrap(err, "failed to load payment method counts")
}

// Search returns one page of transactions matching the criteria, newest
// first, joined with the owning user for display.
func (r *TransactionRepository) Search(ctx context.Context, criteria domain.TransactionSearchCriteria, limit, offset int) ([]domain.TransactionListItem, error) {
	where, args := buildSearchWhere(criteria)

	query := fmt.Sprintf(`
		SELECT
			t.id, t.user_id, u.email AS user_email, u.full_name AS user_full_name,
			t.amount, t.currency, t.type, t.status, t.payment_method, t.created_at
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		%s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	items := []domain.TransactionListItem{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	return items, errors.Wrap(err, "failed to search transactions")
}

// CountSearch returns the total number of rows Search would match.
func (r *TransactionRepository) CountSearch(ctx context.Context, criteria domain.TransactionSearchCriteria) (int64, error) {
	where, args := buildSearchWhere(criteria)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM transactions t
		JOIN users u ON u.id = t.user_id
		%s
	`, where)

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, errors.Wrap(err, "failed to count matching transactions")
}

func buildSearchWhere(criteria domain.TransactionSearchCriteria) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	add := func(condition string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if criteria.Status != "" {
		add("t.status = $%d", criteria.Status)
	}
	if criteria.PaymentMethod != "" {
		add("t.payment_method = $%d", criteria.PaymentMethod)
	}
	if !criteria.MinAmount.IsZero() {
		add("t.amount >= $%d", criteria.MinAmount)
	}
	if !criteria.MaxAmount.IsZero() {
		add("t.amount <= $%d", criteria.MaxAmount)
	}
	if criteria.StartDate != nil {
		add("t.created_at >= $%d", *criteria.StartDate)
	}
	if criteria.EndDate != nil {
		add("t.created_at < $%d", criteria.EndDate.AddDate(0, 0, 1))
	}
	if criteria.UserEmail != "" {
		add("u.email = $%d", criteria.UserEmail)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// Create inserts a ledger row. Used by the seed tool; the API surface is
// read-only.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, amount, currency, type, status, payment_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Amount, tx.Currency, tx.Type, tx.Status, tx.PaymentMethod, tx.CreatedAt,
	)
	return errors.Wrap(err, "failed to create transaction")
}
