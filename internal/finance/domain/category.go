package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceCategories/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const MaxCategoryNameLength = 100

type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"-"` // user UUID
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryInput carries the fields a caller may set on a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// Normalize trims surrounding whitespace from the input fields.
func (in *CategoryInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (in *CategoryInput) Validate() error {
	if in.Name == "" {
		return errors.ErrCategoryNameRequired
	}
	if utf8.RuneCountInString(in.Name) > MaxCategoryNameLength {
		return errors.ErrCategoryNameTooLong
	}
	return nil
}

// CategoryExpense is a category with its expense total in the reporting currency.
type CategoryExpense struct {
	Category Category        `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// CurrencyTotal is the sum of expense journals in one currency.
type CurrencyTotal struct {
	Currency string
	Amount   decimal.Decimal
}

// CategoryTotals is a category with its expense sums per journal currency.
// Totals is empty when the category has no expenses in the range.
type CategoryTotals struct {
	Category Category
	Totals   []CurrencyTotal
}

type CategoryRepository interface {
	FindByID(ctx context.Context, userID string, categoryID uuid.UUID) (*Category, error)
	FindByUser(ctx context.Context, userID string) ([]Category, error)
	FindByName(ctx context.Context, userID string, name string) (*Category, error)
	Create(ctx context.Context, category *Category) error
	Update(ctx context.Context, category *Category) (int64, error)
	Delete(ctx context.Context, userID string, categoryID uuid.UUID) error
	CountJournals(ctx context.Context, userID string, categoryID uuid.UUID) (int, error)
	FindJournals(ctx context.Context, userID string, categoryID uuid.UUID, limit, offset int) ([]Journal, error)
	LatestJournalDate(ctx context.Context, userID string, categoryID uuid.UUID) (*time.Time, error)
	FindUncategorizedJournals(ctx context.Context, userID string, startDate, endDate time.Time) ([]Journal, error)
	FindCategoryExpenses(ctx context.Context, userID string, startDate, endDate time.Time) ([]CategoryTotals, error)
}
