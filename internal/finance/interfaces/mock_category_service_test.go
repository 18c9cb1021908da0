package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceCategories/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
)

type MockCategoryService struct {
	categories []domain.Category
	journals   []domain.Journal
	expenses   []domain.CategoryExpense
	count      int
	latest     *time.Time
	err        error

	lastUserID string
	lastPage   int
	lastStart  time.Time
	lastEnd    time.Time
	lastInput  domain.CategoryInput
}

func (m *MockCategoryService) find(userID string, categoryID uuid.UUID) (*domain.Category, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	for _, category := range m.categories {
		if category.ID == categoryID {
			found := category
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryService) GetCategory(_ context.Context, userID string, categoryID uuid.UUID) (*domain.Category, error) {
	return m.find(userID, categoryID)
}

func (m *MockCategoryService) CountJournals(_ context.Context, userID string, categoryID uuid.UUID) (int, error) {
	if _, err := m.find(userID, categoryID); err != nil {
		return 0, err
	}
	return m.count, nil
}

func (m *MockCategoryService) Destroy(_ context.Context, userID string, categoryID uuid.UUID) (bool, error) {
	if _, err := m.find(userID, categoryID); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MockCategoryService) GetCategories(_ context.Context, userID string) ([]domain.Category, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.categories, nil
}

func (m *MockCategoryService) GetCategoriesAndExpenses(_ context.Context, userID string, startDate, endDate time.Time) ([]domain.CategoryExpense, error) {
	m.lastUserID, m.lastStart, m.lastEnd = userID, startDate, endDate
	if m.err != nil {
		return nil, m.err
	}
	return m.expenses, nil
}

func (m *MockCategoryService) GetJournals(_ context.Context, userID string, _ uuid.UUID, page int) ([]domain.Journal, error) {
	m.lastUserID, m.lastPage = userID, page
	if m.err != nil {
		return nil, m.err
	}
	return m.journals, nil
}

func (m *MockCategoryService) GetLatestActivity(_ context.Context, userID string, categoryID uuid.UUID) (*time.Time, error) {
	if _, err := m.find(userID, categoryID); err != nil {
		return nil, err
	}
	return m.latest, nil
}

func (m *MockCategoryService) GetWithoutCategory(_ context.Context, userID string, startDate, endDate time.Time) ([]domain.Journal, error) {
	m.lastUserID, m.lastStart, m.lastEnd = userID, startDate, endDate
	if m.err != nil {
		return nil, m.err
	}
	return m.journals, nil
}

func (m *MockCategoryService) Store(_ context.Context, userID string, input domain.CategoryInput) (*domain.Category, error) {
	m.lastUserID, m.lastInput = userID, input
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Category{ID: uuid.New(), UserID: userID, Name: input.Name}, nil
}

func (m *MockCategoryService) Update(_ context.Context, userID string, categoryID uuid.UUID, input domain.CategoryInput) (*domain.Category, error) {
	m.lastInput = input
	category, err := m.find(userID, categoryID)
	if err != nil {
		return nil, err
	}
	category.Name = input.Name
	return category, nil
}
