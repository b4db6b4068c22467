package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tatipharma/pharmabi/internal"
)

func newVersionCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Display the pharmabi version",
		Args:    NoArgs,
		GroupID: groupOther,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cli.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
			defer w.Flush()

			fmt.Fprintln(w)
			fmt.Fprintln(w, "Client:\t", internal.FullVersion())
			if internal.Commit != "" {
				fmt.Fprintln(w, "Commit:\t", internal.Commit)
			}
			if internal.Date != "" {
				fmt.Fprintln(w, "Built:\t", internal.Date)
			}
			fmt.Fprintln(w, "Server:\t", cli.Config.Server)
			fmt.Fprintln(w)
			return nil
		},
	}
}
