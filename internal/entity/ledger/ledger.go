package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CategoryRecord struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

type ExpenseRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	CreatedAt  time.Time
}

type CategoryView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ExpenseView carries the owning category's name instead of its id;
// listings and reports are read in terms of category names.
type ExpenseView struct {
	ID           uuid.UUID       `json:"id"`
	CategoryName string          `json:"categoryName"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type ReportRow struct {
	CategoryName string          `json:"categoryName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}
