package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fragmede/navmark/internal/api"
	"github.com/fragmede/navmark/internal/cache"
	"github.com/fragmede/navmark/internal/render"
)

func newFetchCommand(a *app) *cobra.Command {
	var (
		refresh bool
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "fetch URL...",
		Short: "Fetch forum pages and decorate each with its own path",
		Long: `Fetch downloads each URL, caching the raw page, and decorates it as the
browser would at that URL's path. A report line is printed per URL.

Examples:
  navmark fetch http://localhost:8000/ http://localhost:8000/about/
  navmark fetch --out-dir ./out --refresh http://localhost:8000/question/ask/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(a.cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("creating cache dir: %w", err)
			}
			db, err := cache.Open(a.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer db.Close()

			client := api.NewClient(
				api.WithTimeout(a.cfg.RequestTimeout),
				api.WithConcurrency(a.cfg.FetchConcurrency),
			)
			pages, fetchErrs, err := a.loadPages(cmd.Context(), client, db, args, refresh)
			if err != nil {
				return err
			}

			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("creating output dir: %w", err)
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, HeaderStyle.Render(fmt.Sprintf("%d page(s)", len(args))))
			var failed int
			for i, page := range pages {
				if page == nil {
					failed++
					fmt.Fprintln(w, formatError(args[i], fetchErrs[i]))
					continue
				}

				data := page.Body
				isHTML := render.IsHTML(page.ContentType)
				if isHTML {
					var out bytes.Buffer
					res, err := render.Decorate(bytes.NewReader(page.Body), &out, page.Path, a.cfg.Rules())
					if err != nil {
						failed++
						fmt.Fprintln(w, formatError(args[i], err))
						continue
					}
					data = out.Bytes()
					fmt.Fprintln(w, formatResult(page.Path, res))
				} else {
					fmt.Fprintln(w, formatSkipped(page.Path, page.ContentType))
				}

				if outDir != "" {
					name := filepath.Join(outDir, fileNameFor(page.Path, isHTML))
					if err := os.WriteFile(name, data, 0o644); err != nil {
						return fmt.Errorf("writing %s: %w", name, err)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d page(s) failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached copies")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "write decorated pages into this directory")
	return cmd
}

// loadPages serves fresh pages from db and fetches the rest in one batch.
// A page that could not be loaded is nil, with its cause at the same index
// in errs.
func (a *app) loadPages(ctx context.Context, client *api.Client, db *cache.DB, urls []string, refresh bool) (pages []*api.Page, errs []error, err error) {
	pages = make([]*api.Page, len(urls))
	errs = make([]error, len(urls))
	var missing []string
	var missingIdx []int

	for i, u := range urls {
		if !refresh {
			page, fresh, err := db.GetPage(u, a.cfg.PageTTL)
			if err != nil {
				a.logger.Warn("cache read failed", slog.String("url", u), slog.String("error", err.Error()))
			} else if page != nil && fresh {
				a.logger.Debug("cache hit", slog.String("url", u))
				pages[i] = page
				continue
			}
		}
		missing = append(missing, u)
		missingIdx = append(missingIdx, i)
	}
	if len(missing) == 0 {
		return pages, errs, nil
	}

	fetched, fetchErrs, err := client.BatchGetPages(ctx, missing)
	if err != nil {
		return nil, nil, err
	}
	for j, page := range fetched {
		if page == nil {
			a.logger.Warn("fetch failed", slog.String("url", missing[j]), slog.Any("error", fetchErrs[j]))
			errs[missingIdx[j]] = fetchErrs[j]
			continue
		}
		if err := db.PutPage(page); err != nil {
			a.logger.Warn("cache write failed", slog.String("url", page.URL), slog.String("error", err.Error()))
		}
		pages[missingIdx[j]] = page
	}
	return pages, errs, nil
}

// fileNameFor maps a page path to a flat file name: "/" becomes index.html,
// "/question/ask/" becomes question_ask.html. Non-HTML bodies keep their
// own extension.
func fileNameFor(path string, isHTML bool) string {
	name := strings.Trim(path, "/")
	if name == "" {
		name = "index"
	}
	name = strings.NewReplacer("/", "_", "%", "_").Replace(name)
	if isHTML {
		return name + ".html"
	}
	return name
}
