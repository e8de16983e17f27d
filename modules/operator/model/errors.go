package model

import "errors"

var (
	// ErrOperatorNotFound is returned when an operator account is not found.
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrOperatorAlreadyExists is returned when an operator with the same email already exists.
	ErrOperatorAlreadyExists = errors.New("operator already exists")

	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidEmail is returned when the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when the password does not meet policy.
	ErrInvalidPassword = errors.New("invalid password")
)

// ErrorCode is a machine-readable error code returned to API callers.
type ErrorCode string

const (
	CodeOperatorNotFound      ErrorCode = "OPERATOR_NOT_FOUND"
	CodeOperatorAlreadyExists ErrorCode = "OPERATOR_ALREADY_EXISTS"
	CodeInvalidCredentials    ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidEmail          ErrorCode = "INVALID_EMAIL"
	CodeInvalidPassword       ErrorCode = "INVALID_PASSWORD"
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeValidationError       ErrorCode = "VALIDATION_ERROR"
)

// GetErrorCode maps a domain error to its error code.
func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrOperatorNotFound):
		return CodeOperatorNotFound
	case errors.Is(err, ErrOperatorAlreadyExists):
		return CodeOperatorAlreadyExists
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrInvalidEmail):
		return CodeInvalidEmail
	case errors.Is(err, ErrInvalidPassword):
		return CodeInvalidPassword
	default:
		return CodeInternalError
	}
}

// GetErrorMessage returns a user-friendly message for a domain error.
func GetErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrOperatorNotFound):
		return "Operator not found"
	case errors.Is(err, ErrOperatorAlreadyExists):
		return "Operator with this email already exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, ErrInvalidPassword):
		return "Password must be at least 8 characters"
	default:
		return "Internal server error"
	}
}
