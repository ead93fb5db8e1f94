package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrNotFound indicates a file or resource was not found
	ErrNotFound = errors.New("not found")

	// ErrParse indicates a manifest document could not be parsed
	ErrParse = errors.New("parse error")

	// ErrDestinationNotEmpty indicates the combine destination already holds files
	ErrDestinationNotEmpty = errors.New("destination directory is not empty")

	// ErrDestinationNotADirectory indicates the combine destination exists but is not a directory
	ErrDestinationNotADirectory = errors.New("destination is not a directory")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")

	// ErrChecksum indicates a downloaded file failed checksum verification
	ErrChecksum = errors.New("checksum mismatch")

	// ErrUnknownRelease indicates an unknown (library, release) pair was requested
	ErrUnknownRelease = errors.New("unknown library release")

	// ErrUnsupportedArchive indicates an archive format we cannot extract
	ErrUnsupportedArchive = errors.New("unsupported archive format")

	// ErrConversionFailed indicates the external converter failed on a file
	ErrConversionFailed = errors.New("conversion failed")

	// ErrConverterNotFound indicates the external converter binary was not found
	ErrConverterNotFound = errors.New("converter not found")
)

// FileConflictError indicates two source files would collide on the same
// basename inside the combine destination.
type FileConflictError struct {
	Name   string
	Source string
}

func (e *FileConflictError) Error() string {
	return fmt.Sprintf("library file %s already exists in the combined library (while copying %s)", e.Name, e.Source)
}

// SourceManifestError indicates an input manifest could not be read or parsed.
type SourceManifestError struct {
	Path string
	Err  error
}

func (e *SourceManifestError) Error() string {
	return fmt.Sprintf("unable to read manifest %s: %v", e.Path, e.Err)
}

func (e *SourceManifestError) Unwrap() error {
	return e.Err
}

// FetchError represents an error during downloading
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		switch fetchErr.StatusCode {
		case 429, 502, 503, 504:
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ConversionError represents a failure converting one evaluated data file
type ConversionError struct {
	File string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion of %s failed: %v", e.File, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
