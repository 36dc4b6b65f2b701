package client

import (
	"errors"
	"net/http"
)

// Common errors returned by the caller.
var (
	// ErrInterrupted is returned when the context is cancelled during backoff.
	ErrInterrupted = errors.New("call interrupted")
)

// ErrorClass represents a classification of remote call errors.
type ErrorClass string

const (
	// ErrorClassRateLimit represents a rate-limit signal from the server.
	// This is the only class that is retried.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/transport errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Classifier maps an operation error onto an ErrorClass. Each remote API
// supplies its own classifier matching that API's error shape.
type Classifier func(err error) ErrorClass

// shouldRetry determines if an error class should be retried.
// Only rate-limit responses are retried; everything else propagates to the
// caller so indexing can fail loudly and generation can record a sentinel.
func shouldRetry(class ErrorClass) bool {
	return class == ErrorClassRateLimit
}

// ClassifyHTTPStatus maps an HTTP status code onto an ErrorClass.
func ClassifyHTTPStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
