package apperrors

import (
	"net/http"
)

// AppError carries an HTTP status and a message ID that is localized at the response boundary.
type AppError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Message IDs shared by the service and handler layers. Texts live in internal/i18n/locales.
const (
	MsgCodeAndURLRequired = "CodeAndURLRequired"
	MsgInvalidBody        = "InvalidBody"
	MsgCodeTooLong        = "CodeTooLong"
	MsgURLTooLong         = "URLTooLong"
	MsgCodeExists         = "CodeExists"
	MsgCodeMissing        = "CodeMissing"
	MsgLinkNotFound       = "LinkNotFound"
	MsgListFailed         = "ListFailed"
	MsgCreateFailed       = "CreateFailed"
	MsgDeleteFailed       = "DeleteFailed"
	MsgStatsFailed        = "StatsFailed"
	MsgRedirectBadRequest = "RedirectBadRequest"
	MsgRedirectNotFound   = "RedirectNotFound"
	MsgSystemError        = "SystemError"
)

// WithCode creates a generic business error.
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap attaches the underlying cause; the cause is logged, never returned to callers.
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InvalidRequestError wraps a parameter validation failure.
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, message)
}

// InvalidRequestErrorDefault is the fallback validation error.
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, MsgInvalidBody)
}

func NotFoundError(message string) *AppError {
	return WithCode(http.StatusNotFound, message)
}

func ConflictError(message string) *AppError {
	return WithCode(http.StatusConflict, message)
}

// SystemError wraps an internal failure.
func SystemError(message string, cause error) *AppError {
	return Wrap(http.StatusInternalServerError, message, cause)
}

// SystemErrorDefault is the fallback internal error.
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, MsgSystemError)
}
