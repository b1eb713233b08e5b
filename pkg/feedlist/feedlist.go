// ABOUTME: Feed list loading from YAML and live reloading with fsnotify
// ABOUTME: Used by the polling command to know which feeds to fetch

package feedlist

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedfetcher/core/interfaces"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	debounceInterval = 500 * time.Millisecond
	reloadAttempts   = 3
)

// Feed is one subscription
type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name,omitempty"`
}

// UnmarshalYAML accepts either a bare URL or a mapping
func (f *Feed) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.URL = node.Value
		return nil
	}
	type plain Feed
	return node.Decode((*plain)(f))
}

// List is the parsed feed list file
type List struct {
	Feeds []Feed `yaml:"feeds"`
}

// URLs returns the feed URLs in file order
func (l *List) URLs() []string {
	out := make([]string, len(l.Feeds))
	for i, f := range l.Feeds {
		out[i] = f.URL
	}
	return out
}

// Load reads and validates the feed list at path. Duplicate URLs are dropped.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed list: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML feed list
func Parse(data []byte) (*List, error) {
	var list List
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse feed list: %w", err)
	}

	seen := make(map[string]bool, len(list.Feeds))
	feeds := list.Feeds[:0]
	for i, f := range list.Feeds {
		f.URL = strings.TrimSpace(f.URL)
		if f.URL == "" {
			return nil, fmt.Errorf("feed %d has no url", i+1)
		}
		u, err := url.Parse(f.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("feed %d has an invalid url %q", i+1, f.URL)
		}
		if seen[f.URL] {
			continue
		}
		seen[f.URL] = true
		feeds = append(feeds, f)
	}
	list.Feeds = feeds

	return &list, nil
}

// Watch calls onChange with the reloaded list whenever the file at path is
// written, replaced or recreated. A list that fails to load is logged and the
// previous one stays in effect. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, logger interfaces.Logger, onChange func(*List)) error {
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// editors replace files on save, so the directory is watched instead of the file
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceInterval)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceInterval)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			list, err := reload(abs)
			if err != nil {
				logger.Warn("Feed list reload failed, keeping previous list", map[string]interface{}{
					"path":  abs,
					"error": err.Error(),
				})
				continue
			}
			logger.Info("Feed list reloaded", map[string]interface{}{
				"path":  abs,
				"feeds": len(list.Feeds),
			})
			onChange(list)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Feed list watcher error", map[string]interface{}{
				"path":  abs,
				"error": err.Error(),
			})
		}
	}
}

// reload retries briefly since the file may still be being written
func reload(path string) (*List, error) {
	var err error
	for i := 0; i < reloadAttempts; i++ {
		if i > 0 {
			time.Sleep(100 * time.Millisecond)
		}
		var list *List
		if list, err = Load(path); err == nil {
			return list, nil
		}
	}
	return nil, err
}
