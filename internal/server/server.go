// Package server runs a reverse proxy in front of the forum that decorates
// every HTML page on its way to the browser.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fragmede/navmark/internal/decorate"
	"github.com/fragmede/navmark/internal/render"
)

// ErrNoUpstream is returned by New when no upstream URL is configured.
var ErrNoUpstream = errors.New("no upstream configured")

// New returns the proxy handler for upstream.
func New(upstream string, rules decorate.Rules, logger *slog.Logger) (http.Handler, error) {
	if upstream == "" {
		return nil, ErrNoUpstream
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream: %w", err)
	}

	d := &decorator{rules: rules, logger: logger}
	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = pr.In.Host
			// Bodies must arrive uncompressed to be rewritten.
			pr.Out.Header.Set("Accept-Encoding", "identity")
			// Decorate with the path the browser sees, not the upstream one.
			ctx := context.WithValue(pr.Out.Context(), pathKey{}, pr.In.URL.EscapedPath())
			pr.Out = pr.Out.WithContext(ctx)
		},
		ModifyResponse: d.modifyResponse,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("upstream request failed",
				slog.String("path", r.URL.Path), slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/*", proxy)
	return r, nil
}

type pathKey struct{}

type decorator struct {
	rules  decorate.Rules
	logger *slog.Logger
}

func (d *decorator) modifyResponse(resp *http.Response) error {
	if !isHTML(resp) {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading upstream body: %w", err)
	}

	var out bytes.Buffer
	path, _ := resp.Request.Context().Value(pathKey{}).(string)
	if path == "" {
		path = "/"
	}
	res, err := render.Decorate(bytes.NewReader(raw), &out, path, d.rules)
	if err != nil {
		d.logger.Debug("page left undecorated",
			slog.String("path", path), slog.String("error", err.Error()))
		setBody(resp, raw)
		return nil
	}

	d.logger.Debug("page decorated",
		slog.String("path", path),
		slog.Bool("auth_revealed", res.AuthRevealed),
		slog.String("active_link", res.ActiveLink))
	setBody(resp, out.Bytes())
	return nil
}

func isHTML(resp *http.Response) bool {
	if resp.Request == nil || resp.Request.Method == http.MethodHead {
		return false
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return false
	}
	return render.IsHTML(resp.Header.Get("Content-Type"))
}

func setBody(resp *http.Response, body []byte) {
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	resp.Header.Del("Transfer-Encoding")
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", ww.Status()),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
