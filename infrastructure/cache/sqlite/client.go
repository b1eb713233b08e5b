// ABOUTME: SQLite feed cache for persistent storage of feed metadata
// ABOUTME: One row per feed URL holding the JSON encoded FeedInfo

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedfetcher/core/domain"
	"feedfetcher/core/interfaces"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNilInfo is returned when Put is given a nil entry
var ErrNilInfo = errors.New("feed info cannot be nil")

// Client implements interfaces.FeedCache using SQLite
type Client struct {
	db       *sql.DB
	filePath string
	logger   interfaces.Logger
}

// NewSQLiteCache creates a new SQLite cache client
func NewSQLiteCache(filePath string) (*Client, error) {
	return NewSQLiteCacheWithLogger(filePath, nil)
}

// NewSQLiteCacheWithLogger creates a new SQLite cache client that reports
// rejected keys to logger
func NewSQLiteCacheWithLogger(filePath string, logger interfaces.Logger) (*Client, error) {
	if filePath == "" {
		filePath = "feedcache.db"
	}
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	db, err := sql.Open("sqlite3", filePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single writer connection keeps Put and Remove serialized
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	client := &Client{
		db:       db,
		filePath: filePath,
		logger:   logger,
	}

	if err := client.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return client, nil
}

func (c *Client) initSchema() error {
	_, err := c.db.Exec(schema)
	return err
}

// Get returns the entry for url, or nil
func (c *Client) Get(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := c.checkKey(url); err != nil {
		return nil, err
	}

	var data []byte
	err := c.db.QueryRowContext(ctx, selectQuery, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed info: %w", err)
	}

	return decode(url, data)
}

// Put stores info under url
func (c *Client) Put(ctx context.Context, url string, info *domain.FeedInfo) error {
	if err := c.checkKey(url); err != nil {
		return err
	}
	if info == nil {
		return ErrNilInfo
	}

	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode feed info: %w", err)
	}
	if err := validateValue(data); err != nil {
		return err
	}

	if _, err := c.db.ExecContext(ctx, upsertQuery, url, data, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store feed info: %w", err)
	}
	return nil
}

// Remove deletes the entry for url and returns it
func (c *Client) Remove(ctx context.Context, url string) (*domain.FeedInfo, error) {
	if err := c.checkKey(url); err != nil {
		return nil, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var data []byte
	err = tx.QueryRowContext(ctx, selectQuery, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed info: %w", err)
	}

	if _, err := tx.ExecContext(ctx, deleteQuery, url); err != nil {
		return nil, fmt.Errorf("failed to delete feed info: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	return decode(url, data)
}

// Clear removes every entry
func (c *Client) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, clearQuery); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Stats returns cache statistics
func (c *Client) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var count int
	if err := c.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return nil, err
	}
	stats["total_entries"] = count

	var oldest, newest sql.NullInt64
	if err := c.db.QueryRowContext(ctx, ageQuery).Scan(&oldest, &newest); err != nil {
		return nil, err
	}
	if oldest.Valid {
		stats["oldest_update"] = time.Unix(oldest.Int64, 0).UTC()
		stats["newest_update"] = time.Unix(newest.Int64, 0).UTC()
	}

	var pageCount, pageSize int
	if err := c.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := c.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["db_size_bytes"] = pageCount * pageSize
		}
	}

	stats["file_path"] = c.filePath

	return stats, nil
}

func (c *Client) checkKey(url string) error {
	if err := validateKey(url); err != nil {
		c.logger.Warn("Rejected feed cache key", map[string]interface{}{
			"key_length":  len(url),
			"key_preview": truncateKey(url),
			"error":       err.Error(),
		})
		return err
	}
	return nil
}

func decode(url string, data []byte) (*domain.FeedInfo, error) {
	var info domain.FeedInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("corrupt cache row for %s: %w", url, err)
	}
	return &info, nil
}
