package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. They cross the HTTP boundary verbatim in the "code" field.
const (
	CodeMissingField           = "MissingField"
	CodeInvalidEmail           = "InvalidEmail"
	CodeUnderageOrInvalidDOB   = "UnderageOrInvalidDOB"
	CodeInvalidGovtID          = "InvalidGovtId"
	CodeMissingRelationship    = "MissingRelationship"
	CodeGuestCountMismatch     = "GuestCountMismatch"
	CodeInvalidGuestIndex      = "InvalidGuestIndex"
	CodeInvalidDateRange       = "InvalidDateRange"
	CodeDateConflict           = "DateConflict"
	CodeConcurrentModification = "ConcurrentModification"
	CodeUnauthorized           = "Unauthorized"
	CodeNotFound               = "NotFound"
	CodeInvalidRequest         = "InvalidRequest"
	CodeStoreUnavailable       = "StoreUnavailable"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

// IsValidation reports whether the error was raised before any store access
// and can be fixed by resubmitting corrected input.
func (e *AppError) IsValidation() bool {
	return e.HTTPStatus == http.StatusBadRequest
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Success: false,
		Code:    e.Code,
		Error:   e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func MissingField(message string) *AppError {
	return New(CodeMissingField, message, http.StatusBadRequest)
}

func InvalidEmail(message string) *AppError {
	return New(CodeInvalidEmail, message, http.StatusBadRequest)
}

func UnderageOrInvalidDOB(message string) *AppError {
	return New(CodeUnderageOrInvalidDOB, message, http.StatusBadRequest)
}

func InvalidGovtID(message string) *AppError {
	return New(CodeInvalidGovtID, message, http.StatusBadRequest)
}

func MissingRelationship(message string) *AppError {
	return New(CodeMissingRelationship, message, http.StatusBadRequest)
}

func GuestCountMismatch(message string) *AppError {
	return New(CodeGuestCountMismatch, message, http.StatusBadRequest)
}

func InvalidGuestIndex(message string) *AppError {
	return New(CodeInvalidGuestIndex, message, http.StatusBadRequest)
}

func InvalidDateRange(message string) *AppError {
	return New(CodeInvalidDateRange, message, http.StatusBadRequest)
}

func InvalidRequest(message string) *AppError {
	return New(CodeInvalidRequest, message, http.StatusBadRequest)
}

func DateConflict(message string) *AppError {
	return New(CodeDateConflict, message, http.StatusConflict)
}

func ConcurrentModification(message string) *AppError {
	return New(CodeConcurrentModification, message, http.StatusConflict)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusForbidden)
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

// StoreUnavailable keeps the store failure in Err for server-side logging;
// only message reaches the client.
func StoreUnavailable(message string, err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, message, http.StatusInternalServerError)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return StoreUnavailable("An unexpected error occurred", err)
}

// Kind returns the error kind carried by err, or "" when err is nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	return AsAppError(err).Code
}
