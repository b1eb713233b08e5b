package interfaces

import (
	"io"

	"feedfetcher/core/domain"
)

// ParseOptions tunes a single parse call
type ParseOptions struct {
	// Charset is the encoding announced by the transport, e.g. "ISO-8859-1"
	Charset string

	// PreserveWireFeed keeps the format specific document on the result
	PreserveWireFeed bool
}

// Parser turns a feed document into the normalized model
type Parser interface {
	Parse(body io.Reader, opts ParseOptions) (*domain.Feed, error)
}
