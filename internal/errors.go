package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeAuthorization ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypeStateConflict ErrorType = "STATE_CONFLICT"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeIntegrity     ErrorType = "INTEGRITY_ERROR"
	ErrorTypeUnauthorized  ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCategory  ErrorCode = "INVALID_CATEGORY"
	ErrCodeInvalidRUT       ErrorCode = "INVALID_RUT"
	ErrCodeInvalidLocation  ErrorCode = "INVALID_LOCATION"
	ErrCodeCommentsRequired ErrorCode = "COMMENTS_REQUIRED"
	ErrCodeAmountTooHigh    ErrorCode = "AMOUNT_TOO_HIGH"

	ErrCodeExpenseNotFound  ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeClientNotFound   ErrorCode = "CLIENT_NOT_FOUND"
	ErrCodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	ErrCodeAreaNotFound     ErrorCode = "AREA_NOT_FOUND"
	ErrCodeCategoryNotFound ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeReceiptNotFound  ErrorCode = "RECEIPT_NOT_FOUND"

	ErrCodeSelfApproval      ErrorCode = "SELF_APPROVAL"
	ErrCodeNotSupervisor     ErrorCode = "NOT_SUPERVISOR_OF_OWNER"
	ErrCodeRoleDenied        ErrorCode = "ROLE_DENIED"
	ErrCodeNotOwner          ErrorCode = "NOT_OWNER"
	ErrCodeExpenseProcessed  ErrorCode = "EXPENSE_ALREADY_PROCESSED"
	ErrCodeClientProcessed   ErrorCode = "CLIENT_ALREADY_PROCESSED"
	ErrCodeExpenseNotPending ErrorCode = "EXPENSE_NOT_PENDING"

	ErrCodeDuplicateRUT    ErrorCode = "DUPLICATE_RUT"
	ErrCodeDuplicateEmail  ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeSupervisorCycle ErrorCode = "SUPERVISOR_CYCLE"
	ErrCodeClientRequired  ErrorCode = "CLIENT_REQUIRED"
	ErrCodeClientRejected  ErrorCode = "CLIENT_REJECTED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause clones so the package-level sentinel errors stay immutable.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewAuthorizationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewStateConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeStateConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewIntegrityError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrExpenseNotFound = NewNotFoundError("expense not found", ErrCodeExpenseNotFound)
	ErrClientNotFound  = NewNotFoundError("client not found", ErrCodeClientNotFound)
	ErrUserNotFound    = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrAreaNotFound    = NewNotFoundError("area not found", ErrCodeAreaNotFound)

	ErrSelfApproval  = NewAuthorizationError("cannot decide on your own expense", ErrCodeSelfApproval)
	ErrNotSupervisor = NewAuthorizationError("expense owner is not a direct report", ErrCodeNotSupervisor)
	ErrRoleDenied    = NewAuthorizationError("role does not permit this action", ErrCodeRoleDenied)
	ErrNotOwner      = NewAuthorizationError("only the owner or an admin may modify this expense", ErrCodeNotOwner)

	ErrExpenseProcessed  = NewStateConflictError("expense already processed", ErrCodeExpenseProcessed)
	ErrClientProcessed   = NewStateConflictError("client already processed", ErrCodeClientProcessed)
	ErrExpenseNotPending = NewStateConflictError("only pending expenses can be modified", ErrCodeExpenseNotPending)

	ErrDuplicateRUT    = NewIntegrityError("a client with this RUT already exists", ErrCodeDuplicateRUT)
	ErrDuplicateEmail  = NewIntegrityError("a user with this email already exists", ErrCodeDuplicateEmail)
	ErrSupervisorCycle = NewValidationError("supervisor assignment would create a cycle", ErrCodeSupervisorCycle)
	ErrClientRequired  = NewValidationError("expense requires a client reference", ErrCodeClientRequired)
	ErrClientRejected  = NewStateConflictError("client is rejected and cannot receive decisions", ErrCodeClientRejected)

	ErrInvalidCredentials = NewUnauthorizedError("invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewAuthorizationError("user account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
