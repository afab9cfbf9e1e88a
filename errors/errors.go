package errors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidURL indicates a URL with an unsupported or missing scheme
	ErrInvalidURL = errors.New("invalid url")

	// ErrFetchTimeout indicates an outbound fetch exceeded its deadline
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrUnsupportedContentType indicates a response type the extractor cannot read
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrLLMCommunication indicates LLM communication failed
	ErrLLMCommunication = errors.New("llm communication failed")

	// ErrNoChartFound indicates text contained no usable chart block
	ErrNoChartFound = errors.New("no chart suggestion found")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsFetchTimeout checks if error is a fetch timeout error
func IsFetchTimeout(err error) bool {
	return errors.Is(err, ErrFetchTimeout)
}

// IsUnsupportedContentType checks if error is an unsupported content type error
func IsUnsupportedContentType(err error) bool {
	return errors.Is(err, ErrUnsupportedContentType)
}
