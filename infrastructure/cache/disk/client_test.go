package disk

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"feedfetcher/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInfo(url string) *domain.FeedInfo {
	updated := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.FeedInfo{
		URL:          url,
		ETag:         `W/"abc"`,
		LastModified: "Fri, 01 Mar 2024 10:00:00 GMT",
		LastUpdated:  &updated,
		Feed: &domain.Feed{
			Title:      "Example",
			Link:       "https://example.com/",
			Categories: []string{"news"},
			Updated:    &updated,
			Entries: []domain.Entry{
				{ID: "b", Title: "B", Published: &updated},
				{ID: "a", Title: "A"},
			},
		},
		EntryIDs: []string{"b", "a"},
	}
}

func newCache(t *testing.T) *DiskCache {
	t.Helper()
	cache, err := NewDiskCache(filepath.Join(t.TempDir(), "feeds"))
	require.NoError(t, err)
	return cache
}

func TestNewDiskCache_EmptyDir(t *testing.T) {
	_, err := NewDiskCache("")
	assert.Error(t, err)
}

func TestDiskCache_GetMissing(t *testing.T) {
	cache := newCache(t)

	info, err := cache.Get(context.Background(), "https://example.com/feed")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	url := "https://example.com/feed?format=rss&x=../../etc"

	want := sampleInfo(url)
	require.NoError(t, cache.Put(ctx, url, want))

	got, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDiskCache_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	url := "https://example.com/feed"

	first, err := NewDiskCache(dir)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, url, sampleInfo(url)))

	second, err := NewDiskCache(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, url)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `W/"abc"`, got.ETag)
	assert.Equal(t, []string{"b", "a"}, got.EntryIDs)
}

func TestDiskCache_RemoveTwice(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	url := "https://example.com/feed"

	require.NoError(t, cache.Put(ctx, url, sampleInfo(url)))

	removed, err := cache.Remove(ctx, url)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, url, removed.URL)

	removed, err = cache.Remove(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, removed)

	got, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDiskCache_Clear(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	// clearing before the directory exists is fine
	require.NoError(t, cache.Clear(ctx))

	urls := []string{"https://a.example/feed", "https://b.example/feed", "https://c.example/feed"}
	for _, u := range urls {
		require.NoError(t, cache.Put(ctx, u, sampleInfo(u)))
	}

	unrelated := filepath.Join(cache.Dir(), "README.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep me"), 0o644))

	require.NoError(t, cache.Clear(ctx))

	for _, u := range urls {
		got, err := cache.Get(ctx, u)
		require.NoError(t, err)
		assert.Nil(t, got, "entry for %s survived Clear", u)
	}
	_, err := os.Stat(unrelated)
	assert.NoError(t, err, "Clear must not remove files it does not own")

	// clearing an empty cache is fine too
	require.NoError(t, cache.Clear(ctx))
}

func TestDiskCache_DirectoryRemovedExternally(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	url := "https://example.com/feed"

	require.NoError(t, cache.Put(ctx, url, sampleInfo(url)))
	require.NoError(t, os.RemoveAll(cache.Dir()))

	got, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, got)

	removed, err := cache.Remove(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, removed)

	require.NoError(t, cache.Clear(ctx))

	// the directory is recreated on the next write
	require.NoError(t, cache.Put(ctx, url, sampleInfo(url)))
	got, err = cache.Get(ctx, url)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDiskCache_CorruptFile(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	url := "https://example.com/feed"

	require.NoError(t, cache.Put(ctx, url, sampleInfo(url)))
	require.NoError(t, os.WriteFile(cache.path(url), []byte("{not json"), 0o644))

	_, err := cache.Get(ctx, url)
	assert.Error(t, err)
}

func TestDiskCache_NoTempFilesLeft(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.Put(ctx, "https://example.com/feed", sampleInfo("https://example.com/feed")))
	}

	entries, err := os.ReadDir(cache.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, isCacheFile(entries[0].Name()))
}

func TestDiskCache_PutNil(t *testing.T) {
	cache := newCache(t)
	assert.ErrorIs(t, cache.Put(context.Background(), "k", nil), ErrNilInfo)
}

func TestDiskCache_Concurrent(t *testing.T) {
	cache := newCache(t)
	ctx := context.Background()
	url := "https://example.com/feed"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.NoError(t, cache.Put(ctx, url, sampleInfo(url)))
				got, err := cache.Get(ctx, url)
				assert.NoError(t, err)
				if got != nil {
					assert.Equal(t, url, got.URL)
				}
			}
		}()
	}
	wg.Wait()
}

func TestIsCacheFile(t *testing.T) {
	cache := newCache(t)
	assert.True(t, isCacheFile(filepath.Base(cache.path("https://example.com"))))
	assert.False(t, isCacheFile("README.txt"))
	assert.False(t, isCacheFile("abc.json"))
	assert.False(t, isCacheFile(".tmp-123"))
}
