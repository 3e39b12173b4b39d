package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/navmark/internal/api"
	"github.com/fragmede/navmark/internal/cache"
	"github.com/fragmede/navmark/internal/config"
)

func TestLoadPagesUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(page))
	}))
	defer srv.Close()

	db, err := cache.Open(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	defer db.Close()

	a := &app{cfg: config.Default(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	client := api.NewClient()
	urls := []string{srv.URL + "/about/"}

	pages, errs, err := a.loadPages(context.Background(), client, db, urls, false)
	require.NoError(t, err)
	require.NotNil(t, pages[0])
	assert.NoError(t, errs[0])

	pages, _, err = a.loadPages(context.Background(), client, db, urls, false)
	require.NoError(t, err)
	require.NotNil(t, pages[0])
	assert.Equal(t, "/about/", pages[0].Path)
	assert.EqualValues(t, 1, hits.Load())

	_, _, err = a.loadPages(context.Background(), client, db, urls, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, hits.Load())
}

func TestLoadPagesKeepsFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	db, err := cache.Open(filepath.Join(t.TempDir(), "pages.db"))
	require.NoError(t, err)
	defer db.Close()

	a := &app{cfg: config.Default(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	pages, errs, err := a.loadPages(context.Background(), api.NewClient(), db, []string{srv.URL + "/gone/"}, false)
	require.NoError(t, err)
	assert.Nil(t, pages[0])

	var se *api.StatusError
	require.ErrorAs(t, errs[0], &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}
