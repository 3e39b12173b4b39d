package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fragmede/navmark/internal/render"
)

func newDecorateCommand(a *app) *cobra.Command {
	var (
		path   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "decorate [file]",
		Short: "Decorate one HTML page as if it were served at --path",
		Long: `Decorate reads an HTML page from file, or stdin when no file is given,
applies the decoration rules for --path and writes the result.

Examples:
  navmark decorate --path / index.html
  curl -s http://localhost:8000/about/ | navmark decorate --path /about/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer f.Close()
				in = f
			}

			var out bytes.Buffer
			res, err := render.Decorate(in, &out, path, a.cfg.Rules())
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, output, out.Bytes()); err != nil {
				return err
			}
			fmt.Fprintln(stderr(cmd), formatResult(path, res))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "page path the document is served at")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.MarkFlagRequired("path")
	return cmd
}

func writeOutput(cmd *cobra.Command, output string, data []byte) error {
	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
