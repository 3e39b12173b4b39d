package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForum(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/about/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<a id="nav-about-link">About</a>`))
	})
	mux.HandleFunc("/old/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/about/", http.StatusFound)
	})
	mux.HandleFunc("/huge/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), maxBodySize+100))
	})
	mux.HandleFunc("/exact/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), maxBodySize))
	})
	mux.HandleFunc("/slow/", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("home"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetPage(t *testing.T) {
	srv := newForum(t)
	c := NewClient()

	page, err := c.GetPage(context.Background(), srv.URL+"/about/")
	require.NoError(t, err)
	assert.Equal(t, "/about/", page.Path)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.ContentType, "text/html")
	assert.Equal(t, `<a id="nav-about-link">About</a>`, string(page.Body))
	assert.False(t, page.FetchedAt.IsZero())
}

func TestGetPageFollowsRedirect(t *testing.T) {
	srv := newForum(t)
	page, err := NewClient().GetPage(context.Background(), srv.URL+"/old/")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/old/", page.URL)
	assert.Equal(t, "/about/", page.Path)
}

func TestGetPageRootPath(t *testing.T) {
	srv := newForum(t)
	page, err := NewClient().GetPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "/", page.Path)
}

func TestGetPageStatusError(t *testing.T) {
	srv := newForum(t)
	_, err := NewClient().GetPage(context.Background(), srv.URL+"/missing/")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestGetPageBodyLimit(t *testing.T) {
	srv := newForum(t)
	c := NewClient()

	page, err := c.GetPage(context.Background(), srv.URL+"/huge/")
	require.ErrorIs(t, err, ErrBodyTooLarge)
	assert.Nil(t, page)

	page, err = c.GetPage(context.Background(), srv.URL+"/exact/")
	require.NoError(t, err)
	assert.Len(t, page.Body, maxBodySize)
}

func TestGetPageTimeout(t *testing.T) {
	srv := newForum(t)
	_, err := NewClient(WithTimeout(20*time.Millisecond)).GetPage(context.Background(), srv.URL+"/slow/")
	require.Error(t, err)
}

func TestBatchGetPages(t *testing.T) {
	srv := newForum(t)
	c := NewClient(WithConcurrency(2))

	pages, errs, err := c.BatchGetPages(context.Background(), []string{
		srv.URL + "/about/",
		srv.URL + "/missing/",
		srv.URL + "/",
	})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Len(t, errs, 3)
	assert.Equal(t, "/about/", pages[0].Path)
	assert.NoError(t, errs[0])
	assert.Nil(t, pages[1])
	var se *StatusError
	require.ErrorAs(t, errs[1], &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "/", pages[2].Path)
	assert.NoError(t, errs[2])
}

func TestPathOf(t *testing.T) {
	u, _ := url.Parse("http://forum.local/tags/go%20lang/questions/?page=2")
	assert.Equal(t, "/tags/go%20lang/questions/", PathOf(u))
	assert.Equal(t, "/", PathOf(nil))
}
