package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionSearchCriteria filters the paginated transaction list. All
// fields are optional; zero values mean "no constraint".
type TransactionSearchCriteria struct {
	Status        string          `json:"status" validate:"omitempty,uppercase,max=32"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,uppercase,max=32"`
	MinAmount     decimal.Decimal `json:"minAmount" validate:"omitempty,gte=0"`
	MaxAmount     decimal.Decimal `json:"maxAmount" validate:"omitempty,gte=0"`
	StartDate     *time.Time      `json:"startDate"`
	EndDate       *time.Time      `json:"endDate"`
	UserEmail     string          `json:"userEmail" validate:"omitempty,email"`
}

// TransactionListItem is one row of the transaction list, flattened with the
// owning user's identity for display.
type TransactionListItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	UserEmail     string          `json:"userEmail" db:"user_email"`
	UserFullName  string          `json:"userFullName" db:"user_full_name"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	Type          TxnType         `json:"type" db:"type"`
	Status        TxnStatus       `json:"status" db:"status"`
	PaymentMethod string          `json:"paymentMethod" db:"payment_method"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}

// TransactionPage is a page of list items plus paging metadata.
type TransactionPage struct {
	Items []TransactionListItem `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Size  int                   `json:"size"`
}
