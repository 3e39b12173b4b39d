package cache

import (
	"database/sql"
	"errors"
	"time"

	"github.com/fragmede/navmark/internal/api"
)

// GetPage retrieves a cached page. Returns (page, isFresh, error).
// isFresh indicates whether the page is within its TTL.
// Returns nil page on cache miss.
func (d *DB) GetPage(url string, ttl time.Duration) (*api.Page, bool, error) {
	row := d.db.QueryRow(`SELECT url, path, status_code, content_type, body, fetched_at
		FROM pages WHERE url = ?`, url)

	var page api.Page
	var contentType sql.NullString
	var fetchedAt int64
	err := row.Scan(&page.URL, &page.Path, &page.StatusCode, &contentType, &page.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	page.ContentType = contentType.String
	page.FetchedAt = time.Unix(fetchedAt, 0)

	isFresh := time.Since(page.FetchedAt) < ttl
	return &page, isFresh, nil
}

// PutPage stores a page in the cache, replacing any previous copy.
func (d *DB) PutPage(page *api.Page) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := d.db.Exec(`INSERT OR REPLACE INTO pages
		(url, path, status_code, content_type, body, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		page.URL, page.Path, page.StatusCode, nullStr(page.ContentType), page.Body, fetchedAt.Unix())
	return err
}

// DeletePage drops one cached page.
func (d *DB) DeletePage(url string) error {
	_, err := d.db.Exec(`DELETE FROM pages WHERE url = ?`, url)
	return err
}

// PurgeOlderThan removes pages fetched more than age ago and returns how
// many were removed.
func (d *DB) PurgeOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).Unix()
	res, err := d.db.Exec(`DELETE FROM pages WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
