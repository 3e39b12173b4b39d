package api

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Page is one fetched forum page.
type Page struct {
	URL         string
	Path        string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// ErrBodyTooLarge is returned when a page exceeds the client's size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// PathOf returns the path the browser would report for u, which is "/"
// when the URL has none.
func PathOf(u *url.URL) string {
	if u == nil || u.EscapedPath() == "" {
		return "/"
	}
	return u.EscapedPath()
}
