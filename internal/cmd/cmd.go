package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/cmd/cliopts"
	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/metrics"
)

// Run the main CLI command with the given args. The args should not contain
// the name of the binary (ex: os.Args[1:]).
func Run(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli := newCLI(ctx)
	cmd := NewRootCmd(cli)
	cmd.SetArgs(args)
	cmd.SetIn(cli.Stdin)
	cmd.SetOut(cli.Stdout)
	cmd.SetErr(cli.Stderr)
	return userError(cmd.ExecuteContext(ctx))
}

const (
	groupCore      = "group-core"
	groupData      = "group-data"
	groupMessaging = "group-messaging"
	groupOther     = "group-other"
)

func NewRootCmd(cli *CLI) *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:               "pharmabi",
		Short:             "Pharma sales and customer insights from the terminal",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cliopts.DefaultsFromEnv(envPrefix, cmd.Flags()); err != nil {
				return err
			}
			if err := cli.loadConfig(cmd.Flags()); err != nil {
				return err
			}
			if err := logging.SetLevel(cli.Config.LogLevel); err != nil {
				return err
			}
			return cli.serveMetrics(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddGroup(
		&cobra.Group{
			ID:    groupCore,
			Title: "Core commands:",
		},
		&cobra.Group{
			ID:    groupData,
			Title: "Data commands:",
		},
		&cobra.Group{
			ID:    groupMessaging,
			Title: "Messaging commands:",
		},
		&cobra.Group{
			ID:    groupOther,
			Title: "Other commands:",
		})

	rootCmd.AddCommand(
		// Core commands
		newLoginCmd(cli),
		newLogoutCmd(cli),
		newWhoamiCmd(cli),

		// Data commands
		newCustomersCmd(cli),
		newProductsCmd(cli),
		newLogsCmd(cli),
		newAnalyticsCmd(cli),
		newLookupCmd(cli),

		// Messaging commands
		newWhatsappCmd(cli),

		// Other commands
		newVersionCmd(cli))

	flags := rootCmd.PersistentFlags()
	flags.Bool("help", false, "Display help")
	flags.String("config", "", "Config file (default ~/.pharmabi/config.yaml)")
	flags.String("server", api.DefaultURL, "Base URL of the API")
	flags.String("log-level", "info", "Show logs when running the command [error, warn, info, debug]")
	flags.Int("page-size", api.DefaultPageSize, "Rows per page [5, 10, 25, 50, 100]")
	flags.Duration("timeout", defaultTimeout, "Timeout of each API request")
	flags.String("session-dir", "", "Directory of the session file (default ~/.pharmabi)")
	flags.String("metrics-addr", "", "Serve prometheus metrics on this address while the command runs")
	flags.Bool("export-fixed-paging", false, "Send pageNumber=1 and pageSize=1 with pdf and excel exports")
	_ = flags.MarkHidden("export-fixed-paging")

	rootCmd.SetHelpCommandGroupID(groupOther)
	rootCmd.SetUsageTemplate(usageTemplate())
	return rootCmd
}

// serveMetrics serves /metrics until ctx is done, when an address is
// configured.
func (c *CLI) serveMetrics(ctx context.Context) error {
	if c.Config.MetricsAddr == "" {
		return nil
	}
	addr, err := metrics.Serve(ctx, c.Config.MetricsAddr, metrics.NewRegistry())
	if err != nil {
		return Error{Cause: "failed to serve metrics", OriginalError: err}
	}
	logging.Infof("serving metrics on http://%s/metrics", addr)
	return nil
}

func usageTemplate() string {
	return `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Available Commands:{{end}}{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
