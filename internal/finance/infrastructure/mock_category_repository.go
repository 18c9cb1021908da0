package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceCategories/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
)

// MockCategoryRepository keeps categories and journals in memory. Err, when set, is returned
// by every method wrapped as a storage error.
type MockCategoryRepository struct {
	Categories []domain.Category
	Journals   []domain.Journal
	Err        error
}

func (m *MockCategoryRepository) AddJournal(journal domain.Journal) domain.Journal {
	if journal.ID == uuid.Nil {
		journal.ID = uuid.New()
	}
	if journal.CreatedAt.IsZero() {
		journal.CreatedAt = time.Now()
	}
	m.Journals = append(m.Journals, journal)
	return journal
}

func (m *MockCategoryRepository) FindByID(_ context.Context, userID string, categoryID uuid.UUID) (*domain.Category, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError("find category", m.Err)
	}
	for _, category := range m.Categories {
		if category.ID == categoryID && category.UserID == userID {
			found := category
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) FindByName(_ context.Context, userID string, name string) (*domain.Category, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError("find category by name", m.Err)
	}
	for _, category := range m.Categories {
		if category.UserID == userID && strings.EqualFold(category.Name, name) {
			found := category
			return &found, nil
		}
	}
	return nil, financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) FindByUser(_ context.Context, userID string) ([]domain.Category, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError("list categories", m.Err)
	}
	categories := []domain.Category{}
	for _, category := range m.Categories {
		if category.UserID == userID {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := strings.ToLower(categories[i].Name), strings.ToLower(categories[j].Name)
		if a != b {
			return a < b
		}
		return categories[i].ID.String() < categories[j].ID.String()
	})
	return categories, nil
}

func (m *MockCategoryRepository) Create(_ context.Context, category *domain.Category) error {
	if m.Err != nil {
		return financeErrors.NewStorageError("create category", m.Err)
	}
	for _, existing := range m.Categories {
		if existing.UserID == category.UserID && strings.EqualFold(existing.Name, category.Name) {
			return financeErrors.ErrCategoryNameTaken
		}
	}
	m.Categories = append(m.Categories, *category)
	return nil
}

func (m *MockCategoryRepository) Update(_ context.Context, category *domain.Category) (int64, error) {
	if m.Err != nil {
		return 0, financeErrors.NewStorageError("update category", m.Err)
	}
	index := -1
	for i, existing := range m.Categories {
		if existing.UserID != category.UserID {
			continue
		}
		if existing.ID == category.ID {
			index = i
		} else if strings.EqualFold(existing.Name, category.Name) {
			return 0, financeErrors.ErrCategoryNameTaken
		}
	}
	if index < 0 {
		return 0, nil
	}
	m.Categories[index].Name = category.Name
	m.Categories[index].UpdatedAt = category.UpdatedAt
	return 1, nil
}

func (m *MockCategoryRepository) Delete(_ context.Context, userID string, categoryID uuid.UUID) error {
	if m.Err != nil {
		return financeErrors.NewStorageError("delete category", m.Err)
	}
	for i, category := range m.Categories {
		if category.ID == categoryID && category.UserID == userID {
			for j := range m.Journals {
				if m.Journals[j].CategoryID != nil && *m.Journals[j].CategoryID == categoryID {
					m.Journals[j].CategoryID = nil
				}
			}
			m.Categories = append(m.Categories[:i], m.Categories[i+1:]...)
			return nil
		}
	}
	return financeErrors.ErrCategoryNotFound
}

func (m *MockCategoryRepository) CountJournals(_ context.Context, userID string, categoryID uuid.UUID) (int, error) {
	journals, err := m.categoryJournals(userID, categoryID, "count journals")
	if err != nil {
		return 0, err
	}
	return len(journals), nil
}

func (m *MockCategoryRepository) FindJournals(_ context.Context, userID string, categoryID uuid.UUID, limit, offset int) ([]domain.Journal, error) {
	journals, err := m.categoryJournals(userID, categoryID, "list category journals")
	if err != nil {
		return nil, err
	}
	if limit < 0 || offset < 0 {
		return nil, financeErrors.NewStorageError("list category journals", fmt.Errorf("negative limit %d or offset %d", limit, offset))
	}
	sortJournals(journals)
	if offset >= len(journals) {
		return []domain.Journal{}, nil
	}
	end := offset + limit
	if end > len(journals) || end < offset {
		end = len(journals)
	}
	return journals[offset:end], nil
}

func (m *MockCategoryRepository) LatestJournalDate(_ context.Context, userID string, categoryID uuid.UUID) (*time.Time, error) {
	journals, err := m.categoryJournals(userID, categoryID, "find latest activity")
	if err != nil {
		return nil, err
	}
	var latest *time.Time
	for _, journal := range journals {
		if latest == nil || journal.Date.After(*latest) {
			date := journal.Date
			latest = &date
		}
	}
	return latest, nil
}

func (m *MockCategoryRepository) FindUncategorizedJournals(_ context.Context, userID string, startDate, endDate time.Time) ([]domain.Journal, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError("list uncategorized journals", m.Err)
	}
	journals := []domain.Journal{}
	for _, journal := range m.Journals {
		if journal.UserID == userID && journal.CategoryID == nil && inRange(journal.Date, startDate, endDate) {
			journals = append(journals, journal)
		}
	}
	sortJournals(journals)
	return journals, nil
}

func (m *MockCategoryRepository) FindCategoryExpenses(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.CategoryTotals, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError("sum category expenses", m.Err)
	}
	categories, err := m.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.CategoryTotals, 0, len(categories))
	for _, category := range categories {
		totals := []domain.CurrencyTotal{}
		index := make(map[string]int)
		for _, journal := range m.Journals {
			if journal.CategoryID == nil || *journal.CategoryID != category.ID {
				continue
			}
			if journal.Type != domain.JournalTypeExpense || !inRange(journal.Date, startDate, endDate) {
				continue
			}
			if i, ok := index[journal.Currency]; ok {
				totals[i].Amount = totals[i].Amount.Add(journal.Amount)
				continue
			}
			index[journal.Currency] = len(totals)
			totals = append(totals, domain.CurrencyTotal{Currency: journal.Currency, Amount: journal.Amount})
		}
		sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })
		result = append(result, domain.CategoryTotals{Category: category, Totals: totals})
	}
	return result, nil
}

// categoryJournals returns the journals of a category owned by userID, whoever recorded them.
func (m *MockCategoryRepository) categoryJournals(userID string, categoryID uuid.UUID, op string) ([]domain.Journal, error) {
	if m.Err != nil {
		return nil, financeErrors.NewStorageError(op, m.Err)
	}
	journals := []domain.Journal{}
	if !m.owns(userID, categoryID) {
		return journals, nil
	}
	for _, journal := range m.Journals {
		if journal.CategoryID != nil && *journal.CategoryID == categoryID {
			journals = append(journals, journal)
		}
	}
	return journals, nil
}

func (m *MockCategoryRepository) owns(userID string, categoryID uuid.UUID) bool {
	for _, category := range m.Categories {
		if category.ID == categoryID && category.UserID == userID {
			return true
		}
	}
	return false
}

func sortJournals(journals []domain.Journal) {
	sort.SliceStable(journals, func(i, j int) bool {
		if !journals[i].Date.Equal(journals[j].Date) {
			return journals[i].Date.After(journals[j].Date)
		}
		if !journals[i].CreatedAt.Equal(journals[j].CreatedAt) {
			return journals[i].CreatedAt.After(journals[j].CreatedAt)
		}
		return journals[i].ID.String() < journals[j].ID.String()
	})
}

func inRange(date, startDate, endDate time.Time) bool {
	return !date.Before(startDate) && !date.After(endDate)
}
