// ABOUTME: Custom error types for the feed fetching pipeline
// ABOUTME: Separates transport, HTTP status, redirect, parse and cache failures

package errors

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// FetchError is returned when the server answered with a status that does
// not yield a feed
type FetchError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s failed with HTTP status %d", e.URL, e.StatusCode)
}

// RedirectLoopError is returned when a redirect chain exceeds the hop limit.
// It unwraps to a FetchError carrying the last redirect status.
type RedirectLoopError struct {
	URL          string
	MaxRedirects int
	StatusCode   int
}

// Error implements the error interface
func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("fetching %s exceeded %d redirects", e.URL, e.MaxRedirects)
}

// Unwrap exposes the status failure
func (e *RedirectLoopError) Unwrap() error {
	return &FetchError{URL: e.URL, StatusCode: e.StatusCode}
}

// TransportError wraps connection, TLS and timeout failures. No response was received.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a body was received but could not be parsed
type ParseError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse feed from %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}

// CacheError reports a failed cache backend operation. It is never fatal
// for a fetch.
type CacheError struct {
	Op  string
	URL string
	Err error
}

// Error implements the error interface
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s for %s failed: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause
func (e *CacheError) Unwrap() error {
	return e.Err
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsFetch checks if an error is a FetchError (redirect loops included)
func IsFetch(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// IsRedirectLoop checks if an error is a RedirectLoopError
func IsRedirectLoop(err error) bool {
	var loopErr *RedirectLoopError
	return errors.As(err, &loopErr)
}

// IsTransport checks if an error is a TransportError
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// IsParse checks if an error is a ParseError
func IsParse(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsCache checks if an error is a CacheError
func IsCache(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr)
}

// StatusCode returns the HTTP status carried by err, if any
func StatusCode(err error) (int, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode, true
	}
	return 0, false
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
