package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tatipharma/pharmabi/internal/format"
)

func newWhoamiCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged in user",
		Args:    NoArgs,
		GroupID: groupCore,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cli.store.Load()
			if err != nil {
				return err
			}

			expires := "unknown"
			if exp, ok := sess.ExpiresAt(); ok {
				expires = format.HumanTime(exp, "unknown")
				if sess.Expired(cli.Clock.Now()) {
					expires = "expired " + expires
				}
			}

			fields := []field{{Name: "Server", Value: cli.Config.Server}}
			if p := sess.Profile; p != nil {
				fields = append(fields,
					field{Name: "User", Value: p.UserName},
					field{Name: "Name", Value: p.FullName},
					field{Name: "Email", Value: p.Email},
					field{Name: "Role", Value: p.Role},
				)
				if p.EmployeeID != 0 {
					fields = append(fields, field{Name: "Employee", Value: strconv.Itoa(p.EmployeeID)})
				}
			}
			fields = append(fields, field{Name: "Session expires", Value: expires})

			writeFields(cli.Stdout, fields...)
			return nil
		},
	}
}
