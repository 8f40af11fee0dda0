// Package domain holds the core entities and value types of the transaction
// analytics service.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered account holder.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FullName     string    `json:"fullName" db:"full_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Transaction is a single ledger row. The analytics engine never mutates
// transactions; it only consumes aggregates derived from them.
type Transaction struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	Type          TxnType         `json:"type" db:"type"`
	Status        TxnStatus       `json:"status" db:"status"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// TxnStatus is the transaction status as stored in the ledger. The modeled
// set is SUCCESS, PENDING and FAILED; any other value is carried through as
// its raw string and reported as unknown by Known.
type TxnStatus string

const (
	StatusSuccess TxnStatus = "SUCCESS"
	StatusPending TxnStatus = "PENDING"
	StatusFailed  TxnStatus = "FAILED"
)

// Known reports whether the status is one of the three modeled kinds.
// Unknown statuses are tolerated everywhere: they never feed the named
// per-status counters but still count toward status-agnostic totals.
func (s TxnStatus) Known() bool {
	switch s {
	case StatusSuccess, StatusPending, StatusFailed:
		return true
	}
	return false
}

// TxnType categorises a ledger entry.
type TxnType string

const (
	TypePayment  TxnType = "PAYMENT"
	TypeRefund   TxnType = "REFUND"
	TypeTransfer TxnType = "TRANSFER"
)

// Payment methods observed in the ledger. The domain is open ended; these are
// only the values the seed tool generates.
const (
	MethodCard       = "CARD"
	MethodUPI        = "UPI"
	MethodNetbanking = "NETBANKING"
	MethodWallet     = "WALLET"
)
