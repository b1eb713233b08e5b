package fetcher

import (
	"context"
	"encoding/base64"
	"testing"

	"feedfetcher/core/domain"
	"feedfetcher/core/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name            string
		info            *domain.FeedInfo
		wantIfNoneMatch string
		wantIfModified  string
	}{
		{
			name: "no cached info",
			info: nil,
		},
		{
			name: "cached info without validators",
			info: &domain.FeedInfo{URL: "https://example.com/feed"},
		},
		{
			name:            "etag only",
			info:            &domain.FeedInfo{ETag: `"abc"`},
			wantIfNoneMatch: `"abc"`,
		},
		{
			name:           "last modified only",
			info:           &domain.FeedInfo{LastModified: "Wed, 21 Oct 2015 07:28:00 GMT"},
			wantIfModified: "Wed, 21 Oct 2015 07:28:00 GMT",
		},
		{
			name:            "both validators",
			info:            &domain.FeedInfo{ETag: `W/"weak"`, LastModified: "Wed, 21 Oct 2015 07:28:00 GMT"},
			wantIfNoneMatch: `W/"weak"`,
			wantIfModified:  "Wed, 21 Oct 2015 07:28:00 GMT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := BuildRequest("https://example.com/feed", tt.info, "Agent/1.0", false)

			assert.Equal(t, "https://example.com/feed", req.URL)
			assert.Equal(t, "gzip", req.Header.Get("Accept-Encoding"))
			assert.Equal(t, "Agent/1.0", req.Header.Get("User-Agent"))
			assert.Equal(t, tt.wantIfNoneMatch, req.Header.Get("If-None-Match"))
			assert.Equal(t, tt.wantIfModified, req.Header.Get("If-Modified-Since"))

			if tt.wantIfNoneMatch == "" {
				assert.NotContains(t, req.Header, "If-None-Match")
			}
			if tt.wantIfModified == "" {
				assert.NotContains(t, req.Header, "If-Modified-Since")
			}
			assert.NotContains(t, req.Header, "A-Im")
		})
	}
}

func TestBuildRequest_DeltaAsksForFeedInstanceManipulation(t *testing.T) {
	info := &domain.FeedInfo{ETag: `"v1"`}

	req := BuildRequest("https://example.com/feed", info, "Agent/1.0", true)

	assert.Equal(t, "feed", req.Header.Get("A-IM"))
	assert.Equal(t, `"v1"`, req.Header.Get("If-None-Match"))
}

func TestBuildRequest_EmptyUserAgent(t *testing.T) {
	req := BuildRequest("https://example.com/feed", nil, "", false)
	assert.Empty(t, req.Header.Get("User-Agent"))
}

func TestApplyCredentials(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		req := BuildRequest("https://example.com/feed", nil, "", false)
		applyCredentials(req, &interfaces.Credentials{Username: "alice", Password: "s3cret"})

		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("alice:s3cret"))
		assert.Equal(t, want, req.Header.Get("Authorization"))
	})

	t.Run("token wins over basic", func(t *testing.T) {
		req := BuildRequest("https://example.com/feed", nil, "", false)
		applyCredentials(req, &interfaces.Credentials{Username: "alice", Token: "tok"})

		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})

	t.Run("nil or empty credentials", func(t *testing.T) {
		req := BuildRequest("https://example.com/feed", nil, "", false)
		applyCredentials(req, nil)
		applyCredentials(req, &interfaces.Credentials{})

		assert.Empty(t, req.Header.Get("Authorization"))
	})
}

func TestStaticCredentials(t *testing.T) {
	provider := StaticCredentials{Username: "u", Password: "p"}

	creds, err := provider.Credentials(context.Background(), "https://any.example/feed")
	require.NoError(t, err)
	assert.Equal(t, "u", creds.Username)
	assert.Equal(t, "p", creds.Password)

	// the provider hands out copies
	creds.Username = "changed"
	again, _ := provider.Credentials(context.Background(), "https://any.example/feed")
	assert.Equal(t, "u", again.Username)
}
