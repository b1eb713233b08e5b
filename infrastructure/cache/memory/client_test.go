package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"feedfetcher/core/domain"
)

func sampleInfo(url string) *domain.FeedInfo {
	published := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.FeedInfo{
		URL:          url,
		ETag:         `"v1"`,
		LastModified: "Fri, 01 Mar 2024 10:00:00 GMT",
		LastUpdated:  &published,
		Feed: &domain.Feed{
			Title:   "Example",
			Entries: []domain.Entry{{ID: "a", Title: "A", Published: &published}},
		},
		EntryIDs: []string{"a"},
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	cache := NewMemoryCache()

	info, err := cache.Get(context.Background(), "https://example.com/feed")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if info != nil {
		t.Errorf("Get on empty cache = %+v, want nil", info)
	}
}

func TestMemoryCache_PutGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	url := "https://example.com/feed"

	if err := cache.Put(ctx, url, sampleInfo(url)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	got, err := cache.Get(ctx, url)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil after Put")
	}
	if got.ETag != `"v1"` || got.Feed.Title != "Example" || len(got.EntryIDs) != 1 {
		t.Errorf("Get returned unexpected entry: %+v", got)
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	url := "https://example.com/feed"

	original := sampleInfo(url)
	cache.Put(ctx, url, original)

	// mutating the caller's value must not affect the cache
	original.ETag = "changed"
	original.Feed.Entries[0].Title = "changed"

	first, _ := cache.Get(ctx, url)
	first.EntryIDs[0] = "mutated"
	first.Feed.Title = "mutated"

	second, _ := cache.Get(ctx, url)
	if second.ETag != `"v1"` {
		t.Errorf("ETag = %q, caller mutation leaked into cache", second.ETag)
	}
	if second.Feed.Entries[0].Title != "A" {
		t.Errorf("Entry title = %q, caller mutation leaked into cache", second.Feed.Entries[0].Title)
	}
	if second.EntryIDs[0] != "a" || second.Feed.Title != "Example" {
		t.Error("mutating a returned value changed the cached entry")
	}
}

func TestMemoryCache_PutReplaces(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	url := "https://example.com/feed"

	cache.Put(ctx, url, sampleInfo(url))
	replacement := sampleInfo(url)
	replacement.ETag = `"v2"`
	cache.Put(ctx, url, replacement)

	got, _ := cache.Get(ctx, url)
	if got.ETag != `"v2"` {
		t.Errorf("ETag = %q, want v2", got.ETag)
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
}

func TestMemoryCache_Remove(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	url := "https://example.com/feed"

	cache.Put(ctx, url, sampleInfo(url))

	removed, err := cache.Remove(ctx, url)
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if removed == nil || removed.URL != url {
		t.Errorf("Remove returned %+v, want the stored entry", removed)
	}

	again, err := cache.Remove(ctx, url)
	if err != nil {
		t.Fatalf("second Remove returned error: %v", err)
	}
	if again != nil {
		t.Error("second Remove should return nil")
	}

	if got, _ := cache.Get(ctx, url); got != nil {
		t.Error("Get after Remove should return nil")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear on empty cache returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		cache.Put(ctx, url, sampleInfo(url))
	}
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	for i := 0; i < 5; i++ {
		if got, _ := cache.Get(ctx, fmt.Sprintf("https://example.com/%d", i)); got != nil {
			t.Errorf("entry %d survived Clear", i)
		}
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache(WithExpiration(20*time.Millisecond, time.Minute))
	ctx := context.Background()
	url := "https://example.com/feed"

	cache.Put(ctx, url, sampleInfo(url))
	if got, _ := cache.Get(ctx, url); got == nil {
		t.Fatal("entry should be present before expiring")
	}

	time.Sleep(40 * time.Millisecond)
	if got, _ := cache.Get(ctx, url); got != nil {
		t.Error("entry should have expired")
	}
}

func TestMemoryCache_CancelledContext(t *testing.T) {
	cache := NewMemoryCache()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Error("Get should fail with cancelled context")
	}
	if err := cache.Put(ctx, "k", sampleInfo("k")); err == nil {
		t.Error("Put should fail with cancelled context")
	}
	if _, err := cache.Remove(ctx, "k"); err == nil {
		t.Error("Remove should fail with cancelled context")
	}
	if err := cache.Clear(ctx); err == nil {
		t.Error("Clear should fail with cancelled context")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			url := fmt.Sprintf("https://example.com/%d", i%5)
			for j := 0; j < 50; j++ {
				cache.Put(ctx, url, sampleInfo(url))
				if got, err := cache.Get(ctx, url); err != nil {
					t.Errorf("Get returned error: %v", err)
				} else if got != nil && got.URL != url {
					t.Errorf("Get(%s) returned entry for %s", url, got.URL)
				}
				if j%10 == 0 {
					cache.Remove(ctx, url)
				}
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		url := fmt.Sprintf("https://example.com/%d", i)
		cache.Put(ctx, url, sampleInfo(url))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Get(ctx, fmt.Sprintf("https://example.com/%d", i%1000))
	}
}

func BenchmarkMemoryCache_ConcurrentPut(b *testing.B) {
	cache := NewMemoryCache()
	ctx := context.Background()
	info := sampleInfo("https://example.com/feed")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = cache.Put(ctx, fmt.Sprintf("https://example.com/%d", i%100), info)
			i++
		}
	})
}

func TestMemoryCache_PutNil(t *testing.T) {
	cache := NewMemoryCache()
	if err := cache.Put(context.Background(), "k", nil); err != ErrNilInfo {
		t.Errorf("Put(nil) error = %v, want ErrNilInfo", err)
	}
}
