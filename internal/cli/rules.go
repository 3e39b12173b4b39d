package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRulesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective decoration rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := a.cfg.Rules()
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, HeaderStyle.Render("auth actions"))
			fmt.Fprintf(w, "  #%s drops .%s unless the path contains %s\n",
				r.AuthActionsID, r.HiddenClass, strings.Join(r.AuthPaths, " or "))

			fmt.Fprintln(w, HeaderStyle.Render("nav links"))
			for _, l := range r.NavLinks {
				fmt.Fprintf(w, "  %s  %s\n", PathStyle.Render(l.Path), ActiveStyle.Render("#"+l.ElementID+" ."+r.ActiveClass))
			}
			return nil
		},
	}
}
