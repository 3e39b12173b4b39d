package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fragmede/navmark/internal/decorate"
)

type Config struct {
	CacheDir         string        `mapstructure:"cache_dir" validate:"required"`
	DBPath           string        `mapstructure:"db_path" validate:"required"`
	LogLevel         string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string        `mapstructure:"log_format" validate:"oneof=text json"`
	PageTTL          time.Duration `mapstructure:"page_ttl" validate:"gte=0"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	FetchConcurrency int           `mapstructure:"fetch_concurrency" validate:"min=1,max=64"`
	Server           Server        `mapstructure:"server"`
	Decorate         Decorate      `mapstructure:"decorate"`
}

type Server struct {
	Listen          string        `mapstructure:"listen" validate:"required,hostname_port"`
	Upstream        string        `mapstructure:"upstream" validate:"omitempty,http_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// Decorate is the configurable form of decorate.Rules.
type Decorate struct {
	AuthActionsID string    `mapstructure:"auth_actions_id" validate:"required"`
	HiddenClass   string    `mapstructure:"hidden_class" validate:"required"`
	AuthPaths     []string  `mapstructure:"auth_paths" validate:"dive,required"`
	ActiveClass   string    `mapstructure:"active_class" validate:"required"`
	NavLinks      []NavLink `mapstructure:"nav_links" validate:"dive"`
}

type NavLink struct {
	Path      string `mapstructure:"path" validate:"required,startswith=/"`
	ElementID string `mapstructure:"element_id" validate:"required"`
}

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "navmark")
	rules := decorate.DefaultRules()
	links := make([]NavLink, len(rules.NavLinks))
	for i, l := range rules.NavLinks {
		links[i] = NavLink{Path: l.Path, ElementID: l.ElementID}
	}
	return Config{
		CacheDir:         cacheDir,
		DBPath:           filepath.Join(cacheDir, "pages.db"),
		LogLevel:         "info",
		LogFormat:        "text",
		PageTTL:          5 * time.Minute,
		RequestTimeout:   10 * time.Second,
		FetchConcurrency: 10,
		Server: Server{
			Listen:          "127.0.0.1:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Decorate: Decorate{
			AuthActionsID: rules.AuthActionsID,
			HiddenClass:   rules.HiddenClass,
			AuthPaths:     append([]string(nil), rules.AuthPaths...),
			ActiveClass:   rules.ActiveClass,
			NavLinks:      links,
		},
	}
}

// Rules converts the decorate section into the rule table used at runtime.
func (c Config) Rules() decorate.Rules {
	links := make([]decorate.NavLink, len(c.Decorate.NavLinks))
	for i, l := range c.Decorate.NavLinks {
		links[i] = decorate.NavLink{Path: l.Path, ElementID: l.ElementID}
	}
	return decorate.Rules{
		AuthActionsID: c.Decorate.AuthActionsID,
		HiddenClass:   c.Decorate.HiddenClass,
		AuthPaths:     append([]string(nil), c.Decorate.AuthPaths...),
		ActiveClass:   c.Decorate.ActiveClass,
		NavLinks:      links,
	}
}

// Load layers, lowest first: Default, the config file, NAVMARK_* environment
// variables, then flags in fs that were set on the command line. An empty
// path searches for navmark.yaml in the working directory and the default
// cache dir; not finding one is fine.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("NAVMARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("navmark")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Default().CacheDir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"log-format": "log_format",
	"listen":     "server.listen",
	"upstream":   "server.upstream",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("cache_dir", d.CacheDir)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("page_ttl", d.PageTTL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("fetch_concurrency", d.FetchConcurrency)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.upstream", d.Server.Upstream)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("decorate.auth_actions_id", d.Decorate.AuthActionsID)
	v.SetDefault("decorate.hidden_class", d.Decorate.HiddenClass)
	v.SetDefault("decorate.auth_paths", d.Decorate.AuthPaths)
	v.SetDefault("decorate.active_class", d.Decorate.ActiveClass)

	links := make([]map[string]any, len(d.Decorate.NavLinks))
	for i, l := range d.Decorate.NavLinks {
		links[i] = map[string]any{"path": l.Path, "element_id": l.ElementID}
	}
	v.SetDefault("decorate.nav_links", links)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
