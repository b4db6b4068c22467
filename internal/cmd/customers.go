package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/format"
	"github.com/tatipharma/pharmabi/internal/listview"
	"github.com/tatipharma/pharmabi/internal/query"
)

// defaultInactiveDays selects customers without an order in the last 60 days.
const defaultInactiveDays = 60

var customerView = listview.View[api.Customer]{
	Columns: []listview.Column[api.Customer]{
		{Header: "ID", Value: func(c api.Customer) string { return strconv.Itoa(c.ID) }, Numeric: true},
		{Header: "CODE", Value: func(c api.Customer) string { return c.Code }},
		{Header: "NAME", Value: api.Customer.Name},
		{Header: "MOBILE", Value: api.Customer.Contact},
		{Header: "CITY", Value: func(c api.Customer) string { return c.City }},
		{Header: "REGION", Value: func(c api.Customer) string { return c.Region }},
		{Header: "STATUS", Value: api.Customer.Status},
		{Header: "CREDIT LIMIT", Value: func(c api.Customer) string { return format.Money(c.CreditLimit) }, Numeric: true},
	},
	ID:     customerID,
	Window: query.DefaultWindow,
}

func customerID(c api.Customer) int {
	return c.ID
}

type customerFilterOptions struct {
	Search string
	Status string
}

func addCustomerFilterFlags(flags *pflag.FlagSet, options *customerFilterOptions) {
	flags.StringVar(&options.Search, "search", "", "Search by name, code or phone")
	flags.StringVar(&options.Status, "status", "all", "Filter by status [active, inactive, all]")
}

func (o customerFilterOptions) filter() (api.CustomerFilter, error) {
	f := api.CustomerFilter{Search: strings.TrimSpace(o.Search)}
	return withCustomerStatus(f, o.Status)
}

func withCustomerStatus(f api.CustomerFilter, status string) (api.CustomerFilter, error) {
	switch strings.ToLower(status) {
	case "", "all":
		f.IsActive = nil
	case "active":
		active := true
		f.IsActive = &active
	case "inactive":
		active := false
		f.IsActive = &active
	default:
		return f, fmt.Errorf("unknown status %q, expected active, inactive or all", status)
	}
	return f, nil
}

func customerSearch(f api.CustomerFilter, text string) api.CustomerFilter {
	f.Search = strings.TrimSpace(text)
	return f
}

func newCustomersCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Short:   "List and export customers",
		Aliases: []string{"customer"},
		GroupID: groupData,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(newCustomersListCmd(cli))
	cmd.AddCommand(newCustomersInactiveCmd(cli))
	cmd.AddCommand(newCustomersGetCmd(cli))
	cmd.AddCommand(newCustomersExportCmd(cli))
	cmd.AddCommand(newCustomersBrowseCmd(cli))
	return cmd
}

func newCustomersListCmd(cli *CLI) *cobra.Command {
	var filterOptions customerFilterOptions
	var options listCmdOptions

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List customers",
		Aliases: []string{"ls"},
		Args:    NoArgs,
		Example: `# List active customers in Freetown
pharmabi customers list --status active --search freetown

# Every customer as json
pharmabi customers list --all --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			return listPage(cmd.Context(), cli, cli.apiClient().ListCustomers, filter, customerView, options)
		},
	}

	addCustomerFilterFlags(cmd.Flags(), &filterOptions)
	addListFlags(cmd.Flags(), &options)
	return cmd
}

func newCustomersInactiveCmd(cli *CLI) *cobra.Command {
	var days int
	var options listCmdOptions

	cmd := &cobra.Command{
		Use:   "inactive",
		Short: "List customers without recent orders",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("days must not be negative")
			}
			filter := api.InactiveCustomerFilter{Days: days}
			return listPage(cmd.Context(), cli, cli.apiClient().ListInactiveCustomers, filter, customerView, options)
		},
	}

	cmd.Flags().IntVar(&days, "days", defaultInactiveDays, "Minimum number of days without an order")
	addListFlags(cmd.Flags(), &options)
	return cmd
}

func newCustomersGetCmd(cli *CLI) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a customer with their orders and payments",
		Args:  ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}

			detail, err := cli.apiClient().GetCustomer(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outputFormat != "" {
				return writeStructured(cli.Stdout, outputFormat, detail)
			}
			printCustomer(cli, detail)
			return nil
		},
	}

	addFormatFlag(cmd.Flags(), &outputFormat)
	return cmd
}

type orderRow struct {
	Order  int    `header:"ORDER"`
	Date   string `header:"DATE"`
	Items  int    `header:"ITEMS"`
	Total  string `header:"TOTAL"`
	Status string `header:"STATUS"`
}

type paymentRow struct {
	Payment int    `header:"PAYMENT"`
	Date    string `header:"DATE"`
	Amount  string `header:"AMOUNT"`
	Method  string `header:"METHOD"`
	Status  string `header:"STATUS"`
}

func printCustomer(cli *CLI, d *api.CustomerDetail) {
	var customerType, salesRep string
	if d.CustomerType != nil {
		customerType = d.CustomerType.Name
	}
	if d.Employee != nil {
		salesRep = d.Employee.Name
	}
	var licenseExpiry string
	if d.LicenseExpiry != nil {
		licenseExpiry = format.Date(time.Time(*d.LicenseExpiry), "")
	}

	writeFields(cli.Stdout,
		field{Name: "ID", Value: strconv.Itoa(d.ID)},
		field{Name: "Code", Value: d.Code},
		field{Name: "Name", Value: d.Name()},
		field{Name: "Status", Value: d.Status()},
		field{Name: "Mobile", Value: d.Contact()},
		field{Name: "Email", Value: d.Email},
		field{Name: "Address", Value: strings.TrimSpace(strings.Join([]string{d.Address, d.City, d.District, d.Region}, " "))},
		field{Name: "Type", Value: customerType},
		field{Name: "Sales rep", Value: salesRep},
		field{Name: "Customer since", Value: format.Date(time.Time(d.DateCreated), "")},
		field{Name: "License", Value: strings.TrimSpace(d.License + " " + d.LicenseType)},
		field{Name: "License expiry", Value: licenseExpiry},
		field{Name: "Credit limit", Value: format.Money(d.CreditLimit)},
		field{Name: "Credit days", Value: strconv.Itoa(d.CreditDays)},
		field{Name: "Total orders", Value: format.Number(d.TotalOrders)},
		field{Name: "Lifetime value", Value: format.Money(d.LifetimeValue)},
		field{Name: "Last purchase", Value: format.Date(time.Time(d.LastPurchase), "never")},
	)

	if section(cli.Stdout, "Orders", len(d.OrderHistory)) {
		rows := make([]orderRow, 0, len(d.OrderHistory))
		for _, o := range d.OrderHistory {
			rows = append(rows, orderRow{
				Order:  o.OrderID,
				Date:   o.Date.Date(),
				Items:  o.Items,
				Total:  format.Money(o.Total),
				Status: o.Status,
			})
		}
		cli.Table(rows)
	}

	if section(cli.Stdout, "Payments", len(d.PaymentHistory)) {
		rows := make([]paymentRow, 0, len(d.PaymentHistory))
		for _, p := range d.PaymentHistory {
			rows = append(rows, paymentRow{
				Payment: p.PaymentID,
				Date:    p.Date.Date(),
				Amount:  format.Money(p.Amount),
				Method:  p.Method,
				Status:  p.Status,
			})
		}
		cli.Table(rows)
	}
}

func newCustomersExportCmd(cli *CLI) *cobra.Command {
	var filterOptions customerFilterOptions
	var options exportCmdOptions

	cmd := &cobra.Command{
		Use:   "export FORMAT",
		Short: "Export customers to pdf, excel or csv",
		Args:  ExactArgs(1),
		Example: `# Export active customers to a spreadsheet and open it
pharmabi customers export excel --status active --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			return exportResource(cmd.Context(), cli, api.ExportCustomers, args[0], filter, options)
		},
	}

	addCustomerFilterFlags(cmd.Flags(), &filterOptions)
	addExportFlags(cmd.Flags(), &options)
	return cmd
}

func newCustomersBrowseCmd(cli *CLI) *cobra.Command {
	var filterOptions customerFilterOptions
	var inactive bool
	var days int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through customers interactively",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cli.apiClient()
			if inactive {
				return browse(cmd.Context(), cli, screen[api.InactiveCustomerFilter, api.Customer]{
					Fetch:      client.ListInactiveCustomers,
					Filter:     api.InactiveCustomerFilter{Days: days},
					SetFilter:  setInactiveCustomerFilter,
					FilterKeys: "days",
					View:       customerView,
				})
			}

			filter, err := filterOptions.filter()
			if err != nil {
				return err
			}
			return browse(cmd.Context(), cli, screen[api.CustomerFilter, api.Customer]{
				Fetch:      client.ListCustomers,
				Filter:     filter,
				WithSearch: customerSearch,
				SetFilter:  setCustomerFilter,
				FilterKeys: "status",
				View:       customerView,
			})
		},
	}

	addCustomerFilterFlags(cmd.Flags(), &filterOptions)
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Browse customers without recent orders")
	cmd.Flags().IntVar(&days, "days", defaultInactiveDays, "Minimum number of days without an order, with --inactive")
	return cmd
}

func setCustomerFilter(f api.CustomerFilter, key, value string) (api.CustomerFilter, error) {
	switch key {
	case "status":
		return withCustomerStatus(f, value)
	case "search":
		return customerSearch(f, value), nil
	}
	return f, fmt.Errorf("unknown filter %q, expected status", key)
}

func setInactiveCustomerFilter(f api.InactiveCustomerFilter, key, value string) (api.InactiveCustomerFilter, error) {
	if key != "days" {
		return f, fmt.Errorf("unknown filter %q, expected days", key)
	}
	days, err := strconv.Atoi(value)
	if err != nil || days < 0 {
		return f, fmt.Errorf("days must be a number of days")
	}
	f.Days = days
	return f, nil
}
