package application

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceCategories/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
	"github.com/shopspring/decimal"
)

const JournalsPageSize = 50

type CategoryService struct {
	repo      domain.CategoryRepository
	converter CurrencyConverter
	now       func() time.Time
}

func NewCategoryService(repo domain.CategoryRepository, converter CurrencyConverter) *CategoryService {
	return &CategoryService{repo: repo, converter: converter, now: time.Now}
}

func (s *CategoryService) GetCategory(ctx context.Context, userID string, categoryID uuid.UUID) (*domain.Category, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID, categoryID)
}

func (s *CategoryService) CountJournals(ctx context.Context, userID string, categoryID uuid.UUID) (int, error) {
	if err := checkOwner(userID); err != nil {
		return 0, err
	}
	if _, err := s.repo.FindByID(ctx, userID, categoryID); err != nil {
		return 0, err
	}
	return s.repo.CountJournals(ctx, userID, categoryID)
}

// Destroy detaches the category's journals and removes the category.
func (s *CategoryService) Destroy(ctx context.Context, userID string, categoryID uuid.UUID) (bool, error) {
	if err := checkOwner(userID); err != nil {
		return false, err
	}
	if err := s.repo.Delete(ctx, userID, categoryID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CategoryService) GetCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	categories, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

// GetCategoriesAndExpenses returns every category of the user with the sum of its
// expense journals between startDate and endDate, both inclusive, in the reporting currency.
func (s *CategoryService) GetCategoriesAndExpenses(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.CategoryExpense, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	startDate, endDate, err := dateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindCategoryExpenses(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.CategoryExpense, 0, len(rows))
	for _, row := range rows {
		sum := decimal.Zero
		for _, total := range row.Totals {
			converted, err := s.converter.Convert(total.Amount, total.Currency)
			if err != nil {
				return nil, err
			}
			sum = sum.Add(converted)
		}
		expenses = append(expenses, domain.CategoryExpense{
			Category: row.Category,
			Amount:   sum.Round(2),
			Currency: s.converter.ReportingCurrency(),
		})
	}
	return expenses, nil
}

// GetJournals returns one page of the category's journals, newest first. Pages start at 1.
func (s *CategoryService) GetJournals(ctx context.Context, userID string, categoryID uuid.UUID, page int) ([]domain.Journal, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	// no offset this large can address a row
	if page-1 > math.MaxInt/JournalsPageSize {
		return []domain.Journal{}, nil
	}
	journals, err := s.repo.FindJournals(ctx, userID, categoryID, JournalsPageSize, (page-1)*JournalsPageSize)
	if err != nil {
		return nil, err
	}
	if journals == nil {
		return []domain.Journal{}, nil
	}
	return journals, nil
}

// GetLatestActivity returns the date of the newest journal in the category, or nil when it has none.
func (s *CategoryService) GetLatestActivity(ctx context.Context, userID string, categoryID uuid.UUID) (*time.Time, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	return s.repo.LatestJournalDate(ctx, userID, categoryID)
}

func (s *CategoryService) GetWithoutCategory(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Journal, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	startDate, endDate, err := dateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	journals, err := s.repo.FindUncategorizedJournals(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if journals == nil {
		return []domain.Journal{}, nil
	}
	return journals, nil
}

func (s *CategoryService) Store(ctx context.Context, userID string, input domain.CategoryInput) (*domain.Category, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByName(ctx, userID, input.Name)
	if err == nil {
		return nil, financeErrors.ErrCategoryNameTaken
	}
	if !financeErrors.IsNotFoundError(err) {
		return nil, err
	}

	now := s.now().UTC()
	category := &domain.Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID string, categoryID uuid.UUID, input domain.CategoryInput) (*domain.Category, error) {
	if err := checkOwner(userID); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, userID, input.Name)
	switch {
	case err == nil && existing.ID != category.ID:
		return nil, financeErrors.ErrCategoryNameTaken
	case err != nil && !financeErrors.IsNotFoundError(err):
		return nil, err
	}

	category.Name = input.Name
	category.UpdatedAt = s.now().UTC()

	affected, err := s.repo.Update(ctx, category)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return category, nil
}

// checkOwner rejects owner ids the store cannot key on.
func checkOwner(userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return financeErrors.ErrInvalidUserID
	}
	return nil
}

// dateRange reduces both bounds to calendar dates in their own location.
func dateRange(startDate, endDate time.Time) (time.Time, time.Time, error) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC)
	if start.After(end) {
		return time.Time{}, time.Time{}, financeErrors.ErrInvalidDateRange
	}
	return start, end, nil
}
