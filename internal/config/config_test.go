package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/navmark/internal/decorate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navmark.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultRulesMatchDecorate(t *testing.T) {
	cfg := Default()
	assert.Equal(t, decorate.DefaultRules(), cfg.Rules())
	require.NoError(t, Validate(cfg))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
page_ttl: 30s
server:
  listen: ":9090"
  upstream: "http://127.0.0.1:8000"
decorate:
  hidden_class: d-none
  nav_links:
    - path: /
      element_id: home
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.PageTTL)
	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Server.Upstream)

	rules := cfg.Rules()
	assert.Equal(t, "d-none", rules.HiddenClass)
	assert.Equal(t, "auth-actions", rules.AuthActionsID)
	assert.Equal(t, []string{"/login", "/register"}, rules.AuthPaths)
	assert.Equal(t, []decorate.NavLink{{Path: "/", ElementID: "home"}}, rules.NavLinks)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("NAVMARK_LOG_FORMAT", "json")
	t.Setenv("NAVMARK_SERVER_LISTEN", ":7000")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "", "")
	fs.String("listen", "", "")
	require.NoError(t, fs.Parse([]string{"--listen", ":7100"}))

	cfg, err := Load(writeConfig(t, "log_level: warn\n"), fs)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":7100", cfg.Server.Listen)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"log level":   "log_level: loud\n",
		"concurrency": "fetch_concurrency: 0\n",
		"upstream":    "server:\n  upstream: ftp://example.com\n",
		"nav path":    "decorate:\n  nav_links:\n    - path: about\n      element_id: x\n",
		"empty class": "decorate:\n  active_class: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body), nil)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}
