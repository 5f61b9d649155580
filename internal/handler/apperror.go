package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrScopeImmutable = &AppError{http.StatusUnprocessableEntity, "SCOPE_IMMUTABLE", "Entry level cannot change after creation; delete and recreate instead"}
	ErrScopeMismatch  = &AppError{http.StatusUnprocessableEntity, "SCOPE_MISMATCH", "Target campaign or event does not belong to this club"}
	ErrInvalidAmount  = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
)
