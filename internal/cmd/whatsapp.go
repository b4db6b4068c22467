package cmd

import (
	"context"
	"fmt"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/format"
	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/internal/query"
	"github.com/tatipharma/pharmabi/internal/selection"
	"github.com/tatipharma/pharmabi/metrics"
)

// defaultSummaryDays is the period covered by an order summary.
const defaultSummaryDays = 30

type recipientOptions struct {
	IDs            []int
	All            bool
	Partial        bool
	Yes            bool
	NonInteractive bool
}

func addRecipientFlags(flags *pflag.FlagSet, cli *CLI, options *recipientOptions) {
	flags.IntSliceVar(&options.IDs, "ids", nil, "Customer ids to send to")
	flags.BoolVar(&options.All, "all", false, "Send to every customer matching the filters")
	flags.BoolVar(&options.Partial, "partial", false, "With --all, send to the loaded customers when not all of them could be loaded")
	flags.BoolVar(&options.Yes, "yes", false, "Send without asking for confirmation")
	addNonInteractiveFlag(flags, cli, &options.NonInteractive)
}

func newWhatsappCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "whatsapp",
		Short:   "Send WhatsApp messages to customers",
		GroupID: groupMessaging,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(newInactiveReminderCmd(cli))
	cmd.AddCommand(newOrderSummaryCmd(cli))
	cmd.AddCommand(newPaymentReminderCmd(cli))
	return cmd
}

func newInactiveReminderCmd(cli *CLI) *cobra.Command {
	var options recipientOptions
	var days int

	cmd := &cobra.Command{
		Use:   "inactive-reminder",
		Short: "Remind customers without recent orders",
		Args:  NoArgs,
		Example: `# Remind every customer without an order in 90 days
pharmabi whatsapp inactive-reminder --days 90 --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := cli.apiClient()

			filter := api.InactiveCustomerFilter{Days: days}
			set, err := selectRecipients(ctx, cli, options, client.ListInactiveCustomers, filter, nil)
			if err != nil {
				return err
			}
			if err := selection.Check(set, options.Partial); err != nil {
				return err
			}

			ok, err := confirm(cli, options, fmt.Sprintf("Send an inactive reminder to %s customer(s)?", format.Number(set.Len())))
			if err != nil || !ok {
				return err
			}

			defer set.Clear()
			res, err := client.SendInactiveReminder(ctx, &api.InactiveReminderRequest{CustomerIDs: set.IDs()})
			if err != nil {
				return Error{Cause: "failed to send inactive reminders", OriginalError: err}
			}

			cli.Output("Inactive reminders sent.\n")
			writeFields(cli.Stdout,
				field{Name: "Successful", Value: format.Number(res.TotalSuccessful)},
				field{Name: "Failed", Value: format.Number(res.TotalFailed)},
			)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultInactiveDays, "With --all, minimum number of days without an order")
	addRecipientFlags(cmd.Flags(), cli, &options)
	return cmd
}

func newOrderSummaryCmd(cli *CLI) *cobra.Command {
	var options recipientOptions
	var filterOptions customerFilterOptions
	var days int

	cmd := &cobra.Command{
		Use:   "order-summary",
		Short: "Send customers a summary of their recent orders",
		Args:  NoArgs,
		Example: `# Send the last week of orders to two customers
pharmabi whatsapp order-summary --days 7 --ids 12,15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := cli.apiClient()
			days = max(days, 0)

			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			set, err := selectRecipients(ctx, cli, options, client.ListCustomers, filter, nil)
			if err != nil {
				return err
			}
			if err := selection.Check(set, options.Partial); err != nil {
				return err
			}

			msg := fmt.Sprintf("Send an order summary for the last %d day(s) to %s customer(s)?", days, format.Number(set.Len()))
			ok, err := confirm(cli, options, msg)
			if err != nil || !ok {
				return err
			}

			defer set.Clear()
			res, err := client.SendOrderSummary(ctx, &api.OrderSummaryRequest{CustomerIDs: set.IDs(), Days: days})
			if err != nil {
				return Error{Cause: "failed to send order summary", OriginalError: err}
			}

			cli.Output("Order summary sent.\n")
			writeFields(cli.Stdout,
				field{Name: "Sent", Value: format.Number(res.TotalSent)},
				field{Name: "Failed", Value: format.Number(res.TotalFailed)},
			)
			for _, r := range res.Results {
				if !r.Success {
					logging.Debugf("order summary to customer %d failed: %s", r.CustomerID, r.Message)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultSummaryDays, "Number of days of orders to summarize")
	addCustomerFilterFlags(cmd.Flags(), &filterOptions)
	addRecipientFlags(cmd.Flags(), cli, &options)
	return cmd
}

func newPaymentReminderCmd(cli *CLI) *cobra.Command {
	var options recipientOptions
	var filterOptions customerFilterOptions
	var amount float64
	var to string

	cmd := &cobra.Command{
		Use:   "payment-reminder",
		Short: "Remind customers of an outstanding payment",
		Long: `Remind customers of an outstanding payment.

Reminders are sent one customer at a time. Each one goes to the customer's
mobile number, or to the number given with --to. Customers without a number
are skipped.`,
		Args: NoArgs,
		Example: `# Remind two customers of 1,500 outstanding
pharmabi whatsapp payment-reminder --amount 1500 --ids 12,15

# At most one reminder every two seconds
pharmabi whatsapp payment-reminder --amount 1500 --all --status active --bulk-interval 2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := cli.apiClient()
			to = strings.TrimSpace(to)

			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			known := map[int]api.Customer{}
			set, err := selectRecipients(ctx, cli, options, client.ListCustomers, filter, known)
			if err != nil {
				return err
			}
			if err := selection.Check(set, options.Partial); err != nil {
				return err
			}

			msg := fmt.Sprintf("Send a payment reminder of %s to %s customer(s)?", format.Money(amount), format.Number(set.Len()))
			if amount <= 0 {
				msg = "The outstanding amount is 0. " + msg
			}
			if to != "" {
				msg += fmt.Sprintf(" Every reminder goes to %s.", to)
			}
			ok, err := confirm(cli, options, msg)
			if err != nil || !ok {
				return err
			}

			bulk := selection.Bulk[api.Customer]{
				Action: "payment-reminder",
				Lookup: func(ctx context.Context, id int) (api.Customer, error) {
					if c, ok := known[id]; ok || to != "" {
						c.ID = id
						return c, nil
					}
					detail, err := client.GetCustomer(ctx, id)
					if err != nil {
						return api.Customer{}, err
					}
					return detail.Customer, nil
				},
				Skip: func(c api.Customer) bool {
					return recipient(c, to) == ""
				},
				Send: func(ctx context.Context, id int, c api.Customer) error {
					_, err := client.SendPaymentReminder(ctx, &api.PaymentReminderRequest{
						CustomerID:        id,
						OutstandingAmount: amount,
						To:                recipient(c, to),
					})
					return err
				},
				AllowIncomplete: options.Partial,
				OnItem: func(id int, outcome string, err error) {
					switch outcome {
					case metrics.OutcomeFailed:
						fmt.Fprintf(cli.Stderr, "  customer %d: failed: %v\n", id, err)
					case metrics.OutcomeSkipped:
						fmt.Fprintf(cli.Stderr, "  customer %d: skipped, no WhatsApp number\n", id)
					}
				},
			}
			if interval := cli.Config.BulkInterval; interval > 0 {
				bulk.Limiter = rate.NewLimiter(rate.Every(interval), 1)
			}

			result, err := bulk.Run(ctx, set)
			if err != nil && ctx.Err() == nil {
				return err
			}

			cli.Output("Payment reminders processed in %s.\n", format.ExactDuration(result.Elapsed))
			writeFields(cli.Stdout,
				field{Name: "Successful", Value: format.Number(result.Success)},
				field{Name: "Failed", Value: format.Number(result.Failed)},
				field{Name: "Skipped (no WhatsApp number)", Value: format.Number(result.Skipped)},
			)
			return err
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Outstanding amount")
	cmd.Flags().StringVar(&to, "to", "", "Send every reminder to this number instead of the customer's")
	cmd.Flags().Duration("bulk-interval", 0, "Minimum time between two reminders")
	addCustomerFilterFlags(cmd.Flags(), &filterOptions)
	addRecipientFlags(cmd.Flags(), cli, &options)
	return cmd
}

// recipient is the number a reminder to c is sent to.
func recipient(c api.Customer, override string) string {
	if override != "" {
		return override
	}
	return c.Contact()
}

// selectRecipients returns the ids given with --ids, or with --all every
// customer matching filter. The customers loaded on the way are saved in
// known when it is not nil. A failed select all is offered for retry; when
// it is not retried the returned set is incomplete.
func selectRecipients[F any](ctx context.Context, cli *CLI, options recipientOptions, fetch query.Fetcher[F, api.Customer], filter F, known map[int]api.Customer) (*selection.Set, error) {
	set := selection.NewSet()
	if !options.All {
		set.Select(options.IDs...)
		return set, nil
	}
	if len(options.IDs) > 0 {
		return nil, fmt.Errorf("--ids and --all cannot be used together")
	}

	recording := func(ctx context.Context, page api.PageRequest, filter F) (*api.Page[api.Customer], error) {
		res, err := fetch(ctx, page, filter)
		if err == nil && known != nil {
			for _, c := range res.Items {
				known[c.ID] = c
			}
		}
		return res, err
	}

	first, err := recording(ctx, api.FirstPage(cli.Config.PageSize), filter)
	if err != nil {
		return nil, err
	}
	visible := make([]int, 0, len(first.Items))
	for _, c := range first.Items {
		visible = append(visible, c.ID)
	}

	fetchIDs := selection.ListIDs[F, api.Customer](recording, filter, customerID)
	for {
		err := set.SelectAll(ctx, visible, first.TotalCount, fetchIDs)
		if err == nil || options.Partial || options.NonInteractive {
			if err != nil {
				fmt.Fprintf(cli.Stderr, "Failed to load every customer: %v\n", err)
			}
			return set, nil
		}

		fmt.Fprintf(cli.Stderr, "Failed to load every customer: %v\n", err)
		retry := true
		if err := survey.AskOne(&survey.Confirm{Message: "Retry?", Default: true}, &retry, cli.surveyIO); err != nil {
			return nil, err
		}
		if !retry {
			return set, nil
		}
	}
}

// confirm asks before sending, unless --yes is set.
func confirm(cli *CLI, options recipientOptions, message string) (bool, error) {
	if options.Yes {
		return true, nil
	}
	if options.NonInteractive {
		return false, Error{Cause: "confirmation required", OriginalError: ErrNonInteractive, Suggestion: "Pass --yes to send without a prompt."}
	}

	var ok bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &ok, cli.surveyIO); err != nil {
		return false, err
	}
	if !ok {
		cli.Output("Nothing was sent.")
	}
	return ok, nil
}
