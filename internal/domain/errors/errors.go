package errors

import (
	"net/http"
	"strconv"
	"time"

	"backoffice/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Authentication-related errors.
	// Unknown identity and wrong secret intentionally share one error so the
	// HTTP surface cannot be used for account enumeration.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"電子郵件或密碼錯誤",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"找不到該使用者",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"此電子郵件已被註冊",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"建立使用者失敗",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"密碼處理錯誤",
		"",
	)

	ErrPasswordStrength = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_STRENGTH",
		"密碼強度不足",
		"",
	)

	ErrUnderage = NewBaseError(
		http.StatusBadRequest,
		"UNDERAGE",
		"必須年滿 18 歲才能註冊",
		"",
	)

	// One-time code errors.
	ErrMalformedCode = NewBaseError(
		http.StatusBadRequest,
		"MALFORMED_CODE",
		"驗證碼必須是 6 位數字",
		"",
	)

	ErrMismatchedCode = NewBaseError(
		http.StatusUnauthorized,
		"MISMATCHED_CODE",
		"驗證碼錯誤",
		"",
	)

	ErrExpiredCode = NewBaseError(
		http.StatusUnauthorized,
		"EXPIRED_CODE",
		"驗證碼已過期，請重新索取",
		"",
	)

	ErrNoActiveChallenge = NewBaseError(
		http.StatusConflict,
		"NO_ACTIVE_CHALLENGE",
		"目前沒有待驗證的驗證碼",
		"",
	)

	ErrDeliveryFailure = NewBaseError(
		http.StatusBadGateway,
		"DELIVERY_FAILURE",
		"驗證碼寄送失敗，請重新發送",
		"",
	)

	// Session errors.
	ErrSessionInvalid = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_INVALID",
		"登入階段無效，請重新登入",
		"",
	)

	// Catalog errors.
	ErrCategoryNotFound = NewBaseError(
		http.StatusNotFound,
		"CATEGORY_NOT_FOUND",
		"找不到該分類",
		"",
	)

	ErrProductNotFound = NewBaseError(
		http.StatusNotFound,
		"PRODUCT_NOT_FOUND",
		"找不到該商品",
		"",
	)

	ErrCategoryAlreadyExists = NewBaseError(
		http.StatusConflict,
		"CATEGORY_ALREADY_EXISTS",
		"此分類名稱已存在",
		"",
	)

	ErrImageOrderInvalid = NewBaseError(
		http.StatusBadRequest,
		"IMAGE_ORDER_INVALID",
		"圖片排序與現有圖片不一致",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"輸入資料驗證失敗",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"系統內部錯誤",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"存取被拒絕",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"找不到該資源",
		"",
	)
)

// RateLimitError is returned when the attempt limiter blocks a verification
// attempt. It carries the remaining cooldown so the caller can tell the user
// when to retry, implementing the AppError interface.
type RateLimitError struct {
	retryAfter time.Duration
}

// NewRateLimitError creates a rate-limit error with the remaining cooldown.
func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{retryAfter: retryAfter}
}

// RetryAfter returns the remaining cooldown.
func (e *RateLimitError) RetryAfter() time.Duration {
	return e.retryAfter
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return e.Message()
}

// HTTPCode returns the HTTP status code
func (e *RateLimitError) HTTPCode() int {
	return http.StatusTooManyRequests
}

// ErrorCode returns the business error code
func (e *RateLimitError) ErrorCode() string {
	return "RATE_LIMITED"
}

// Message returns the user-friendly error message
func (e *RateLimitError) Message() string {
	return "嘗試次數過多，請於 " + strconv.Itoa(int(e.retryAfter.Seconds())) + " 秒後重試"
}

// Details returns detailed error information
func (e *RateLimitError) Details() string {
	return "retry_after=" + strconv.Itoa(int(e.retryAfter.Seconds()))
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "資料庫執行失敗"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
