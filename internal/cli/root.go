// Package cli implements the navmark command line.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fragmede/navmark/internal/config"
	"github.com/fragmede/navmark/internal/logging"
)

type app struct {
	cfgPath string
	cfg     config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the navmark command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "navmark",
		Short: "Apply the forum's page-load decorations to HTML pages",
		Long: `navmark reveals the auth actions region outside the login and register
pages and marks the nav link of the current route as active. It works on
files, on fetched pages, or as a reverse proxy in front of the forum.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default: navmark.yaml in . or the user config dir)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")

	root.AddCommand(
		newDecorateCommand(a),
		newFetchCommand(a),
		newServeCommand(a),
		newRulesCommand(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(stderr(cmd), cfg.LogLevel, cfg.LogFormat)
	return nil
}

func stderr(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}
