package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sebuszqo/FinanceCategories/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const pgUniqueViolation = "23505"

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID string, categoryID uuid.UUID) (*domain.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at
              FROM categories WHERE id = $1 AND user_id = $2`

	var category domain.Category
	err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(
		&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, financeErrors.NewStorageError("find category", err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, userID string, name string) (*domain.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at
              FROM categories WHERE user_id = $1 AND LOWER(name) = LOWER($2)`

	var category domain.Category
	err := r.db.QueryRowContext(ctx, query, userID, name).Scan(
		&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, financeErrors.NewStorageError("find category by name", err)
	}
	return &category, nil
}

func (r *CategoryRepository) FindByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	query := `SELECT id, user_id, name, created_at, updated_at
              FROM categories WHERE user_id = $1
              ORDER BY LOWER(name), id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, financeErrors.NewStorageError("list categories", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, financeErrors.NewStorageError("list categories", err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewStorageError("list categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `INSERT INTO categories (id, user_id, name, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, category.ID, category.UserID, category.Name, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return financeErrors.ErrCategoryNameTaken
		}
		return financeErrors.NewStorageError("create category", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (int64, error) {
	query := `
        UPDATE categories
        SET name = $1, updated_at = $2
        WHERE id = $3 AND user_id = $4
    `

	result, err := r.db.ExecContext(ctx, query, category.Name, category.UpdatedAt, category.ID, category.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, financeErrors.ErrCategoryNameTaken
		}
		return 0, financeErrors.NewStorageError("update category", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, financeErrors.NewStorageError("update category", err)
	}
	return affected, nil
}

// Delete detaches every journal from the category and removes it, in one transaction.
func (r *CategoryRepository) Delete(ctx context.Context, userID string, categoryID uuid.UUID) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return financeErrors.NewStorageError("delete category", err)
	}
	defer func() {
		if err != nil {
			safeRollback(tx)
		}
	}()

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = $1 AND user_id = $2 FOR UPDATE`, categoryID, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return financeErrors.ErrCategoryNotFound
		}
		return financeErrors.NewStorageError("delete category", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE journals SET category_id = NULL WHERE category_id = $1`, categoryID); err != nil {
		return financeErrors.NewStorageError("detach journals", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID); err != nil {
		return financeErrors.NewStorageError("delete category", err)
	}
	if err = tx.Commit(); err != nil {
		return financeErrors.NewStorageError("delete category", err)
	}
	return nil
}

func (r *CategoryRepository) CountJournals(ctx context.Context, userID string, categoryID uuid.UUID) (int, error) {
	query := `SELECT COUNT(1)
              FROM journals j
              JOIN categories c ON c.id = j.category_id
              WHERE j.category_id = $1 AND c.user_id = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(&count); err != nil {
		return 0, financeErrors.NewStorageError("count journals", err)
	}
	return count, nil
}

func (r *CategoryRepository) FindJournals(ctx context.Context, userID string, categoryID uuid.UUID, limit, offset int) ([]domain.Journal, error) {
	query := `SELECT j.id, j.user_id, j.category_id, j.description, j.type, j.amount, j.currency, j.date, j.created_at
              FROM journals j
              JOIN categories c ON c.id = j.category_id
              WHERE j.category_id = $1 AND c.user_id = $2
              ORDER BY j.date DESC, j.created_at DESC, j.id
              LIMIT $3 OFFSET $4`

	rows, err := r.db.QueryContext(ctx, query, categoryID, userID, limit, offset)
	if err != nil {
		return nil, financeErrors.NewStorageError("list category journals", err)
	}
	return scanJournals(rows, "list category journals")
}

func (r *CategoryRepository) LatestJournalDate(ctx context.Context, userID string, categoryID uuid.UUID) (*time.Time, error) {
	query := `SELECT MAX(j.date)
              FROM journals j
              JOIN categories c ON c.id = j.category_id
              WHERE j.category_id = $1 AND c.user_id = $2`

	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, categoryID, userID).Scan(&latest); err != nil {
		return nil, financeErrors.NewStorageError("find latest activity", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

func (r *CategoryRepository) FindUncategorizedJournals(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Journal, error) {
	query := `SELECT id, user_id, category_id, description, type, amount, currency, date, created_at
              FROM journals
              WHERE user_id = $1 AND category_id IS NULL AND date BETWEEN $2 AND $3
              ORDER BY date DESC, created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, financeErrors.NewStorageError("list uncategorized journals", err)
	}
	return scanJournals(rows, "list uncategorized journals")
}

// FindCategoryExpenses lists the user's categories with their expense sums per currency.
// One statement keeps the category list and the sums on the same snapshot.
func (r *CategoryRepository) FindCategoryExpenses(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.CategoryTotals, error) {
	query := `SELECT c.id, c.user_id, c.name, c.created_at, c.updated_at, j.currency, SUM(j.amount)
              FROM categories c
              LEFT JOIN journals j ON j.category_id = c.id AND j.type = $2 AND j.date BETWEEN $3 AND $4
              WHERE c.user_id = $1
              GROUP BY c.id, j.currency
              ORDER BY LOWER(c.name), c.id, j.currency`

	rows, err := r.db.QueryContext(ctx, query, userID, domain.JournalTypeExpense, startDate, endDate)
	if err != nil {
		return nil, financeErrors.NewStorageError("sum category expenses", err)
	}
	defer rows.Close()

	result := []domain.CategoryTotals{}
	for rows.Next() {
		var (
			category domain.Category
			currency sql.NullString
			amount   decimal.NullDecimal
		)
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.CreatedAt, &category.UpdatedAt,
			&currency, &amount); err != nil {
			return nil, financeErrors.NewStorageError("sum category expenses", err)
		}
		if n := len(result); n == 0 || result[n-1].Category.ID != category.ID {
			result = append(result, domain.CategoryTotals{Category: category, Totals: []domain.CurrencyTotal{}})
		}
		if currency.Valid && amount.Valid {
			last := &result[len(result)-1]
			last.Totals = append(last.Totals, domain.CurrencyTotal{Currency: currency.String, Amount: amount.Decimal})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewStorageError("sum category expenses", err)
	}
	return result, nil
}

func scanJournals(rows *sql.Rows, op string) ([]domain.Journal, error) {
	defer rows.Close()

	journals := []domain.Journal{}
	for rows.Next() {
		var journal domain.Journal
		if err := rows.Scan(&journal.ID, &journal.UserID, &journal.CategoryID, &journal.Description, &journal.Type,
			&journal.Amount, &journal.Currency, &journal.Date, &journal.CreatedAt); err != nil {
			return nil, financeErrors.NewStorageError(op, err)
		}
		journals = append(journals, journal)
	}
	if err := rows.Err(); err != nil {
		return nil, financeErrors.NewStorageError(op, err)
	}
	return journals, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logrus.WithError(err).Warn("Error during transaction rollback")
	}
}
