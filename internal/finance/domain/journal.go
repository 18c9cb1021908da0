package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	JournalTypeExpense  = "expense"
	JournalTypeIncome   = "income"
	JournalTypeTransfer = "transfer"
)

type Journal struct {
	ID          uuid.UUID       `json:"id"`
	UserID      string          `json:"-"` // user UUID
	CategoryID  *uuid.UUID      `json:"category_id"`
	Description string          `json:"description"`
	Type        string          `json:"type"` // "expense", "income" or "transfer"
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}
