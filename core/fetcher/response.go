package fetcher

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"feedfetcher/core/interfaces"
)

// OutcomeKind classifies a single response
type OutcomeKind int

const (
	// OutcomeFailed means the response carries no usable feed
	OutcomeFailed OutcomeKind = iota

	// OutcomeFetched means a 200 or 226 response with a body to parse
	OutcomeFetched

	// OutcomeUnchanged means 304 Not Modified
	OutcomeUnchanged

	// OutcomeRedirected means the feed lives at Location
	OutcomeRedirected
)

// String returns the outcome name
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFetched:
		return "fetched"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeRedirected:
		return "redirected"
	default:
		return "failed"
	}
}

// Outcome is the interpretation of one response
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int

	// Location is the absolute redirect target for OutcomeRedirected
	Location string

	// Validators as sent by the server, possibly empty
	ETag         string
	LastModified string

	// Charset from the Content-Type header, or the default
	Charset string

	// Partial is set for 226 IM Used: the body holds only entries the
	// client has not seen and must be merged with the cached feed
	Partial bool
}

// Interpret maps a response to its outcome. requestURL resolves relative
// Location headers. Anything not explicitly recognized is a failure.
func Interpret(requestURL string, resp interfaces.Response, defaultCharset string) Outcome {
	out := Outcome{
		StatusCode:   resp.StatusCode(),
		ETag:         resp.Header("ETag"),
		LastModified: resp.Header("Last-Modified"),
	}

	switch code := out.StatusCode; {
	case code == http.StatusOK:
		out.Kind = OutcomeFetched
		out.Charset = CharsetFromContentType(resp.Header("Content-Type"), defaultCharset)
	case code == http.StatusIMUsed:
		out.Kind = OutcomeFetched
		out.Partial = true
		out.Charset = CharsetFromContentType(resp.Header("Content-Type"), defaultCharset)
	case code == http.StatusNotModified:
		out.Kind = OutcomeUnchanged
	case isRedirect(code):
		location, ok := resolveLocation(requestURL, resp.Header("Location"))
		if !ok {
			out.Kind = OutcomeFailed
			return out
		}
		out.Kind = OutcomeRedirected
		out.Location = location
	default:
		out.Kind = OutcomeFailed
	}

	return out
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

func resolveLocation(base, location string) (string, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", false
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	return baseURL.ResolveReference(ref).String(), true
}

// CharsetFromContentType extracts the charset parameter of a Content-Type
// value, falling back to def when there is none.
func CharsetFromContentType(contentType, def string) string {
	if contentType == "" {
		return def
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs := strings.TrimSpace(params["charset"]); cs != "" {
			return strings.Trim(cs, `"`)
		}
		return def
	}

	// Lenient fallback for headers mime rejects, e.g. "text/xml;charset=X;something"
	for _, part := range strings.Split(contentType, ";")[1:] {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "charset") {
			if cs := strings.Trim(strings.TrimSpace(kv[1]), `"`); cs != "" {
				return cs
			}
		}
	}
	return def
}
