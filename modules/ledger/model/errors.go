package model

import "errors"

var (
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrArticleNotFound is returned when a referenced article does not exist.
	ErrArticleNotFound = errors.New("article not found")

	// ErrSystemNotFound is returned when a referenced system does not exist,
	// or its API key is unrecognised.
	ErrSystemNotFound = errors.New("system not found")

	// ErrImpressionNotFound names the case where no Impression row exists
	// for a (user, article) pair. AttributeArticleInteraction ignores that
	// case and does not return this error.
	ErrImpressionNotFound = errors.New("impression not found")

	// ErrTraceMismatch is returned when an inbound feedback event's trace
	// does not match the Impression row's stored trace (§4.5).
	ErrTraceMismatch = errors.New("trace mismatch")

	// ErrOutsideEligibleWindow is returned when an ingested article's
	// datestamp falls outside the past-seven-days eligible window (§6, S6).
	ErrOutsideEligibleWindow = errors.New("article not within past seven days")

	// ErrValidation is returned for malformed ingestion payloads.
	ErrValidation = errors.New("validation failed")
)

// ErrorCode is a machine-readable error code returned to API callers.
type ErrorCode string

const (
	CodeUserNotFound          ErrorCode = "USER_NOT_FOUND"
	CodeArticleNotFound       ErrorCode = "ARTICLE_NOT_FOUND"
	CodeSystemNotFound        ErrorCode = "SYSTEM_NOT_FOUND"
	CodeImpressionNotFound    ErrorCode = "IMPRESSION_NOT_FOUND"
	CodeTraceMismatch         ErrorCode = "TRACE_MISMATCH"
	CodeOutsideEligibleWindow ErrorCode = "OUTSIDE_ELIGIBLE_WINDOW"
	CodeValidationError       ErrorCode = "VALIDATION_ERROR"
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
)

// GetErrorCode maps a domain error to its error code.
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrArticleNotFound):
		return CodeArticleNotFound
	case errors.Is(err, ErrSystemNotFound):
		return CodeSystemNotFound
	case errors.Is(err, ErrImpressionNotFound):
		return CodeImpressionNotFound
	case errors.Is(err, ErrTraceMismatch):
		return CodeTraceMismatch
	case errors.Is(err, ErrOutsideEligibleWindow):
		return CodeOutsideEligibleWindow
	case errors.Is(err, ErrValidation):
		return CodeValidationError
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly message for a domain error.
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrArticleNotFound):
		return "Article not found"
	case errors.Is(err, ErrSystemNotFound):
		return "System not found or inactive"
	case errors.Is(err, ErrImpressionNotFound):
		return "Impression not found"
	case errors.Is(err, ErrTraceMismatch):
		return "Trace does not match"
	case errors.Is(err, ErrOutsideEligibleWindow):
		return "Article is not within the past seven days"
	case errors.Is(err, ErrValidation):
		return "Validation failed"
	default:
		return "Internal server error"
	}
}
