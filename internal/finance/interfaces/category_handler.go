package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sebuszqo/FinanceCategories/internal/auth"
	"github.com/sebuszqo/FinanceCategories/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceCategories/internal/finance/errors"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type CategoryServiceInterface interface {
	GetCategory(ctx context.Context, userID string, categoryID uuid.UUID) (*domain.Category, error)
	CountJournals(ctx context.Context, userID string, categoryID uuid.UUID) (int, error)
	Destroy(ctx context.Context, userID string, categoryID uuid.UUID) (bool, error)
	GetCategories(ctx context.Context, userID string) ([]domain.Category, error)
	GetCategoriesAndExpenses(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.CategoryExpense, error)
	GetJournals(ctx context.Context, userID string, categoryID uuid.UUID, page int) ([]domain.Journal, error)
	GetLatestActivity(ctx context.Context, userID string, categoryID uuid.UUID) (*time.Time, error)
	GetWithoutCategory(ctx context.Context, userID string, startDate, endDate time.Time) ([]domain.Journal, error)
	Store(ctx context.Context, userID string, input domain.CategoryInput) (*domain.Category, error)
	Update(ctx context.Context, userID string, categoryID uuid.UUID, input domain.CategoryInput) (*domain.Category, error)
}

type CategoryHandler struct {
	service      CategoryServiceInterface
	log          logrus.FieldLogger
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewCategoryHandler(
	service CategoryServiceInterface,
	log logrus.FieldLogger,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *CategoryHandler {
	if service == nil || log == nil || respondJSON == nil || respondError == nil {
		panic("Service, logger and response functions must not be nil")
	}
	return &CategoryHandler{
		service:      service,
		log:          log,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type categoryDetails struct {
	domain.Category
	JournalCount   int        `json:"journal_count"`
	LatestActivity *time.Time `json:"latest_activity"`
}

func (h *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	categories, err := h.service.GetCategories(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Categories retrieved successfully.",
		"data":    categories,
	})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.userAndCategoryID(w, r)
	if !ok {
		return
	}

	category, err := h.service.GetCategory(r.Context(), userID, categoryID)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve category")
		return
	}
	count, err := h.service.CountJournals(r.Context(), userID, categoryID)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve category")
		return
	}
	latest, err := h.service.GetLatestActivity(r.Context(), userID, categoryID)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category retrieved successfully.",
		"data": categoryDetails{
			Category:       *category,
			JournalCount:   count,
			LatestActivity: latest,
		},
	})
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var input domain.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.Store(r.Context(), userID, input)
	if err != nil {
		h.handleError(w, r, err, "Failed to create category")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully created.",
		"data":    category,
	})
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.userAndCategoryID(w, r)
	if !ok {
		return
	}

	var input domain.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.service.Update(r.Context(), userID, categoryID, input)
	if err != nil {
		h.handleError(w, r, err, "Failed to update category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully updated.",
		"data":    category,
	})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.userAndCategoryID(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Destroy(r.Context(), userID, categoryID)
	if err != nil {
		h.handleError(w, r, err, "Failed to delete category")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category successfully deleted.",
		"data":    map[string]bool{"deleted": deleted},
	})
}

func (h *CategoryHandler) GetCategoryJournals(w http.ResponseWriter, r *http.Request) {
	userID, categoryID, ok := h.userAndCategoryID(w, r)
	if !ok {
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			h.respondError(w, http.StatusBadRequest, "Invalid page value")
			return
		}
	}

	journals, err := h.service.GetJournals(r.Context(), userID, categoryID, page)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve journals")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Journals retrieved successfully.",
		"page":    page,
		"data":    journals,
	})
}

func (h *CategoryHandler) GetCategoriesExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	startDate, endDate, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}

	expenses, err := h.service.GetCategoriesAndExpenses(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve category expenses")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Category expenses retrieved successfully.",
		"data":    expenses,
	})
}

func (h *CategoryHandler) GetUncategorizedJournals(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	startDate, endDate, ok := h.parseDateRange(w, r)
	if !ok {
		return
	}

	journals, err := h.service.GetWithoutCategory(r.Context(), userID, startDate, endDate)
	if err != nil {
		h.handleError(w, r, err, "Failed to retrieve journals")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Journals without category retrieved successfully.",
		"data":    journals,
	})
}

func (h *CategoryHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return userID, true
}

func (h *CategoryHandler) userAndCategoryID(w http.ResponseWriter, r *http.Request) (string, uuid.UUID, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return "", uuid.Nil, false
	}
	categoryID, err := uuid.Parse(r.PathValue("categoryID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid category ID")
		return "", uuid.Nil, false
	}
	return userID, categoryID, true
}

// parseDateRange defaults to the current year up to today.
func (h *CategoryHandler) parseDateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")

	var startDate, endDate time.Time
	var err error

	if startDateStr == "" {
		startDate = time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	} else {
		startDate, err = time.Parse(dateLayout, startDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid start date format")
			return time.Time{}, time.Time{}, false
		}
	}

	if endDateStr == "" {
		endDate = time.Now()
	} else {
		endDate, err = time.Parse(dateLayout, endDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid end date format")
			return time.Time{}, time.Time{}, false
		}
	}
	return startDate, endDate, true
}

func (h *CategoryHandler) handleError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFoundError(err):
		h.respondError(w, http.StatusNotFound, "Category not found")
	default:
		h.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error(message)
		h.respondError(w, http.StatusInternalServerError, message)
	}
}

// RegisterRoutes mounts the category endpoints on mux behind protect.
func (h *CategoryHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	mux.Handle("GET /api/protected/categories", protect(http.HandlerFunc(h.GetCategories)))
	mux.Handle("POST /api/protected/categories", protect(http.HandlerFunc(h.CreateCategory)))
	mux.Handle("GET /api/protected/categories/expenses", protect(http.HandlerFunc(h.GetCategoriesExpenses)))
	mux.Handle("GET /api/protected/categories/uncategorized", protect(http.HandlerFunc(h.GetUncategorizedJournals)))
	mux.Handle("GET /api/protected/categories/{categoryID}", protect(http.HandlerFunc(h.GetCategory)))
	mux.Handle("PUT /api/protected/categories/{categoryID}", protect(http.HandlerFunc(h.UpdateCategory)))
	mux.Handle("DELETE /api/protected/categories/{categoryID}", protect(http.HandlerFunc(h.DeleteCategory)))
	mux.Handle("GET /api/protected/categories/{categoryID}/journals", protect(http.HandlerFunc(h.GetCategoryJournals)))
}
