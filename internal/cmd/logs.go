package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/cmd/types"
	"github.com/tatipharma/pharmabi/internal/listview"
	"github.com/tatipharma/pharmabi/internal/query"
)

var messageLogView = listview.View[api.MessageLog]{
	Columns: []listview.Column[api.MessageLog]{
		{Header: "ID", Value: func(l api.MessageLog) string { return strconv.Itoa(l.ID) }, Numeric: true},
		{Header: "CREATED", Value: func(l api.MessageLog) string { return l.CreatedAtUTC.Format("2006-01-02 15:04") }},
		{Header: "CUSTOMER", Value: func(l api.MessageLog) string { return l.CustomerName }},
		{Header: "RECIPIENT", Value: func(l api.MessageLog) string { return l.Recipient }},
		{Header: "ENDPOINT", Value: func(l api.MessageLog) string { return l.APIEndpoint }},
		{Header: "STATUS", Value: func(l api.MessageLog) string { return l.Status }},
		{Header: "RETRIES", Value: func(l api.MessageLog) string { return strconv.Itoa(l.RetryAttempts) }, Numeric: true},
	},
	Window: query.DefaultWindow,
}

type messageLogFilterOptions struct {
	Search   string
	Status   string
	Endpoint string
	From     types.Date
	To       types.Date
}

func addMessageLogFilterFlags(flags *pflag.FlagSet, options *messageLogFilterOptions) {
	flags.StringVar(&options.Search, "search", "", "Search by customer, recipient or message")
	flags.StringVar(&options.Status, "status", "", "Filter by delivery status")
	flags.StringVar(&options.Endpoint, "endpoint", "", "Filter by the messaging endpoint that sent the message")
	flags.Var(&options.From, "from", "Only messages created on or after this date (YYYY-MM-DD)")
	flags.Var(&options.To, "to", "Only messages created on or before this date (YYYY-MM-DD)")
}

func (o *messageLogFilterOptions) filter() (api.MessageLogFilter, error) {
	if !o.From.IsZero() && !o.To.IsZero() && o.To.Before(o.From.Time) {
		return api.MessageLogFilter{}, fmt.Errorf("--to must not be before --from")
	}
	return api.MessageLogFilter{
		Search:      strings.TrimSpace(o.Search),
		Status:      o.Status,
		APIEndpoint: o.Endpoint,
		FromDateUTC: o.From.APITime(),
		ToDateUTC:   o.To.EndOfDay(),
	}, nil
}

func messageLogSearch(f api.MessageLogFilter, text string) api.MessageLogFilter {
	f.Search = strings.TrimSpace(text)
	return f
}

func setMessageLogFilter(f api.MessageLogFilter, key, value string) (api.MessageLogFilter, error) {
	switch key {
	case "status":
		f.Status = value
	case "endpoint":
		f.APIEndpoint = value
	case "search":
		f.Search = value
	case "from", "to":
		var d types.Date
		if value != "" {
			if err := d.Set(value); err != nil {
				return f, err
			}
		}
		if key == "from" {
			f.FromDateUTC = d.APITime()
		} else {
			f.ToDateUTC = d.EndOfDay()
		}
	default:
		return f, fmt.Errorf("unknown filter %q, expected status, endpoint, from or to", key)
	}
	return f, nil
}

func newLogsCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Short:   "Search the WhatsApp message log",
		GroupID: groupData,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(newLogsListCmd(cli))
	cmd.AddCommand(newLogsBrowseCmd(cli))
	return cmd
}

func newLogsListCmd(cli *CLI) *cobra.Command {
	var filterOptions messageLogFilterOptions
	var options listCmdOptions

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List sent messages",
		Aliases: []string{"ls"},
		Args:    NoArgs,
		Example: `# Failed messages of the last week of March
pharmabi logs list --status failed --from 2024-03-25 --to 2024-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			return listPage(cmd.Context(), cli, cli.apiClient().SearchMessageLogs, filter, messageLogView, options)
		},
	}

	addMessageLogFilterFlags(cmd.Flags(), &filterOptions)
	addListFlags(cmd.Flags(), &options)
	return cmd
}

// messageLogDebounce is longer than the default, since the log search is
// slower than the other lists.
const messageLogDebounce = 400 * time.Millisecond

func newLogsBrowseCmd(cli *CLI) *cobra.Command {
	var filterOptions messageLogFilterOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through sent messages interactively",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			return browse(cmd.Context(), cli, screen[api.MessageLogFilter, api.MessageLog]{
				Fetch:      cli.apiClient().SearchMessageLogs,
				Filter:     filter,
				WithSearch: messageLogSearch,
				SetFilter:  setMessageLogFilter,
				FilterKeys: "status, endpoint, from, to",
				View:       messageLogView,
				Debounce:   messageLogDebounce,
			})
		},
	}

	addMessageLogFilterFlags(cmd.Flags(), &filterOptions)
	return cmd
}
