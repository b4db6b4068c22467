package cmd

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Log out and remove the saved session",
		Example: "$ pharmabi logout",
		Args:    NoArgs,
		GroupID: groupCore,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.store.Clear(); err != nil {
				return err
			}
			cli.Output("Logged out")
			return nil
		},
	}
}
