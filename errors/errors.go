package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("NOT FOUND")
	ErrInvalidInput = errors.New("INVALID INPUT")
	ErrAuth         = errors.New("UNAUTHORIZED")
	ErrConflict     = errors.New("CONFLICT")
	ErrExpired      = errors.New("EXPIRED")
	ErrInternal     = errors.New("INTERNAL")
)

type ErrorResponse struct {
	Code    error  `json:"-"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	return fmt.Sprintf("code: %s, message: %s", e.Code, e.Message)
}

func (e ErrorResponse) Unwrap() error {
	return e.Code
}

// New builds an ErrorResponse carrying one of the sentinel codes above,
// so callers match with errors.Is while users see Message.
func New(code error, message string) error {
	return ErrorResponse{Code: code, Message: message}
}

// UserMessage extracts the user-facing message from an error chain,
// falling back to the raw error text.
func UserMessage(err error) string {
	var resp ErrorResponse
	if errors.As(err, &resp) {
		return resp.Message
	}
	return err.Error()
}
