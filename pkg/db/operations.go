package db

import (
	"crypto/sha256"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// InsertURL inserts a URL, returning the url_id. If the URL already exists,
// returns the existing url_id.
func (db *DB) InsertURL(rawURL string) (int64, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}

	var existingID int64
	err = db.QueryRow("SELECT url_id FROM urls WHERE url = ?", rawURL).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to check existing URL: %w", err)
	}

	result, err := db.Exec("INSERT INTO urls (url, domain) VALUES (?, ?)", rawURL, parsed.Host)
	if err != nil {
		return 0, fmt.Errorf("failed to insert URL: %w", err)
	}
	return result.LastInsertId()
}

// PutPage stores (or replaces) the raw HTML cached for a URL.
func (db *DB) PutPage(rawURL string, html []byte) error {
	urlID, err := db.InsertURL(rawURL)
	if err != nil {
		return err
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(html))
	_, err = db.Exec(`
		INSERT INTO pages (url_id, html, content_hash, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url_id) DO UPDATE SET
			html = excluded.html,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, urlID, html, hash, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store page: %w", err)
	}
	return nil
}

// GetPage returns the cached HTML for a URL if present and younger than
// maxAge. The second return value reports freshness.
func (db *DB) GetPage(rawURL string, maxAge time.Duration) ([]byte, bool, error) {
	var html []byte
	var fetchedAt int64
	err := db.QueryRow(`
		SELECT p.html, p.fetched_at FROM pages p
		JOIN urls u ON u.url_id = p.url_id
		WHERE u.url = ?
	`, rawURL).Scan(&html, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached page: %w", err)
	}

	if maxAge > 0 && time.Since(time.Unix(fetchedAt, 0)) > maxAge {
		return nil, false, nil
	}
	return html, true, nil
}

// RecordAccess records a fetch attempt.
func (db *DB) RecordAccess(rawURL string, statusCode int, errorType string, success bool) error {
	urlID, err := db.InsertURL(rawURL)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO accesses (url_id, status_code, error_type, success)
		VALUES (?, ?, ?, ?)
	`, urlID, statusCode, errorType, success)
	if err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}
