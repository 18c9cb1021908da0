package errors

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

// NotFoundError is returned when a resource does not exist or belongs to another user.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	return errors.As(err, &notFoundError)
}

// StorageError wraps a failure reported by the database driver.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorageError(err error) bool {
	var storageError *StorageError
	return errors.As(err, &storageError)
}

var (
	ErrCategoryNotFound     = NewNotFoundError("category")
	ErrCategoryNameRequired = NewValidationError("Category name is required")
	ErrCategoryNameTooLong  = NewValidationError("Category name must be at most 100 characters long")
	ErrCategoryNameTaken    = NewValidationError("Category with this name already exists")
	ErrInvalidDateRange     = NewValidationError("Start date must not be after end date")
	ErrInvalidUserID        = NewValidationError("Invalid user ID")
)

func NewUnknownCurrencyError(currency string) error {
	return NewValidationError(fmt.Sprintf("No exchange rate configured for currency %s", currency))
}
