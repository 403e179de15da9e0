package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode int

// Generic codes
const (
	ErrInternalServer     ErrorCode = 5000
	ErrInvalidInput       ErrorCode = 4000
	ErrInvalidRequestData ErrorCode = 4001
	ErrNotFound           ErrorCode = 4040
	ErrConflict           ErrorCode = 4091
)

// Calendar connection codes
const (
	ErrConfiguration ErrorCode = 5001
	ErrDecryption    ErrorCode = 5002
	ErrProvider      ErrorCode = 5003
	ErrStore         ErrorCode = 5004
	ErrNotConnected  ErrorCode = 4041
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var appErr *AppError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// CodeOf returns the outermost AppError code, or ErrInternalServer.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}

func ConfigurationError(message string, err error) *AppError {
	return NewAppError(ErrConfiguration, message, err)
}

func NotConnectedError(userID string) *AppError {
	return NewAppError(ErrNotConnected, "Not connected", fmt.Errorf("no calendar connection for user %q", userID))
}

func DecryptionError(message string, err error) *AppError {
	return NewAppError(ErrDecryption, message, err)
}

func ProviderError(message string, err error) *AppError {
	return NewAppError(ErrProvider, message, err)
}

func StoreError(message string, err error) *AppError {
	return NewAppError(ErrStore, message, err)
}
