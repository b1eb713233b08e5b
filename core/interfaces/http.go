package interfaces

import (
	"context"
	"io"
	"net/http"
)

// Request describes one outbound GET for a feed
type Request struct {
	// URL is the absolute URL to fetch
	URL string

	// Header holds the conditional, encoding and auth headers to send
	Header http.Header
}

// HTTPClient defines the interface for sending feed requests.
// This abstraction allows for easy mocking in tests and switching between
// different HTTP client implementations.
//
// Implementations must not follow redirects and must hand back a body that
// is already decompressed when the server used gzip.
type HTTPClient interface {
	// Do sends a GET request. An error means no response was received.
	Do(ctx context.Context, req *Request) (Response, error)
}

// Response defines the interface for HTTP responses.
// This abstraction allows different HTTP client implementations to provide
// their own response types while maintaining a consistent interface.
type Response interface {
	// StatusCode returns the HTTP status code of the response.
	StatusCode() int

	// Body returns the response body as an io.ReadCloser.
	// The caller is responsible for closing the body when done.
	Body() io.ReadCloser

	// Header returns the value of the specified header.
	// Returns an empty string if the header is not present.
	// Header names are case-insensitive.
	Header(key string) string
}
