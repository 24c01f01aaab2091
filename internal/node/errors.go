package node

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyText             = errors.New("text to translate cannot be empty")
	ErrMissingTargetLanguage = errors.New("target language is required")
	ErrNoTranslations        = errors.New("unexpected API response: no translations returned")
	ErrInvalidOption         = errors.New("invalid option value")
	ErrInvalidParameter      = errors.New("invalid parameter type")
	ErrNoHTTPClient          = errors.New("host provided no HTTP client")
)

// OperationError attributes a failure to the input item that caused it
type OperationError struct {
	ItemIndex int
	Err       error
}

// Error implements the error interface for OperationError
func (e *OperationError) Error() string {
	return fmt.Sprintf("item %d: %v", e.ItemIndex, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
