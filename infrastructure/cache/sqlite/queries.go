// ABOUTME: SQL statements and input validation for the SQLite feed cache
// ABOUTME: Every statement is parameterized; keys and values are bounded

package sqlite

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxKeyLength   = 4096
	maxValueLength = 16 << 20
)

const schema = `
	CREATE TABLE IF NOT EXISTS feed_info (
		url TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feed_info_updated ON feed_info(updated_at);
`

const (
	selectQuery = "SELECT data FROM feed_info WHERE url = ?"
	upsertQuery = `
		INSERT INTO feed_info (url, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	deleteQuery = "DELETE FROM feed_info WHERE url = ?"
	clearQuery  = "DELETE FROM feed_info"
	countQuery  = "SELECT COUNT(*) FROM feed_info"
	ageQuery    = "SELECT MIN(updated_at), MAX(updated_at) FROM feed_info"
)

// validateKey rejects keys SQLite would store but that can never be feed URLs
func validateKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("key too long: max %d characters", maxKeyLength)
	}
	if strings.Contains(key, "\x00") {
		return errors.New("key cannot contain null bytes")
	}
	return nil
}

func validateValue(value []byte) error {
	if len(value) == 0 {
		return errors.New("value cannot be empty")
	}
	if len(value) > maxValueLength {
		return fmt.Errorf("value too large: max %d bytes", maxValueLength)
	}
	return nil
}

// truncateKey returns a safe preview of the key for logging
func truncateKey(key string) string {
	const maxPreview = 50
	if len(key) <= maxPreview {
		return key
	}
	return key[:maxPreview] + "..."
}
