package fetcher

import (
	"context"
	"net/http"

	"feedfetcher/core/domain"
	"feedfetcher/core/interfaces"
)

// StaticCredentials returns the same credentials for every URL
type StaticCredentials interfaces.Credentials

// Credentials implements interfaces.CredentialProvider
func (s StaticCredentials) Credentials(ctx context.Context, url string) (*interfaces.Credentials, error) {
	c := interfaces.Credentials(s)
	return &c, nil
}

// BuildRequest creates the GET for target, made conditional by the
// validators in info when there are any. With delta set the request asks
// for an RFC 3229 feed instance-manipulation (A-IM: feed).
func BuildRequest(target string, info *domain.FeedInfo, userAgent string, delta bool) *interfaces.Request {
	header := make(http.Header)
	header.Set("Accept-Encoding", "gzip")
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}
	if delta {
		header.Set("A-IM", "feed")
	}

	if info != nil {
		if info.ETag != "" {
			header.Set("If-None-Match", info.ETag)
		}
		if info.LastModified != "" {
			header.Set("If-Modified-Since", info.LastModified)
		}
	}

	return &interfaces.Request{URL: target, Header: header}
}

// applyCredentials adds the Authorization header for creds
func applyCredentials(req *interfaces.Request, creds *interfaces.Credentials) {
	if creds == nil {
		return
	}
	switch {
	case creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	case creds.Username != "" || creds.Password != "":
		// net/http builds the header the same way
		r := http.Request{Header: req.Header}
		r.SetBasicAuth(creds.Username, creds.Password)
	}
}
