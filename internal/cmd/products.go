package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/format"
	"github.com/tatipharma/pharmabi/internal/listview"
	"github.com/tatipharma/pharmabi/internal/query"
)

var productView = listview.View[api.Product]{
	Columns: []listview.Column[api.Product]{
		{Header: "ID", Value: func(p api.Product) string { return strconv.Itoa(p.ID) }, Numeric: true},
		{Header: "CODE", Value: func(p api.Product) string { return p.Code }},
		{Header: "NAME", Value: func(p api.Product) string { return p.Name }},
		{Header: "STRENGTH", Value: func(p api.Product) string { return p.Strength }},
		{Header: "CATEGORY", Value: api.Product.Category},
		{Header: "STOCK", Value: func(p api.Product) string { return quantity(p.CurrentStock) }, Numeric: true},
		{Header: "PRICE", Value: func(p api.Product) string { return format.Money(p.SellingPrice) }, Numeric: true},
		{Header: "STATUS", Value: api.Product.Status},
	},
	Window: query.DefaultWindow,
}

func quantity(q float64) string {
	if q == float64(int(q)) {
		return format.Number(int(q))
	}
	return strconv.FormatFloat(q, 'f', 2, 64)
}

type productFilterOptions struct {
	Search   string
	DrugType string
}

func addProductFilterFlags(flags *pflag.FlagSet, options *productFilterOptions) {
	flags.StringVar(&options.Search, "search", "", "Search by name or code")
	flags.StringVar(&options.DrugType, "drug-type", "", "Filter by drug type name or id")
}

func (o productFilterOptions) filter(ctx context.Context, client *api.Client) (api.ProductFilter, error) {
	f := api.ProductFilter{Search: strings.TrimSpace(o.Search)}
	if o.DrugType == "" {
		return f, nil
	}
	id, err := resolveDrugType(ctx, client, o.DrugType)
	if err != nil {
		return f, err
	}
	f.DrugTypeID = id
	return f, nil
}

// resolveDrugType accepts a drug type id, or a name looked up in the list of
// drug types.
func resolveDrugType(ctx context.Context, client *api.Client, value string) (int, error) {
	if id, err := strconv.Atoi(value); err == nil {
		return id, nil
	}

	types, err := client.ListDrugTypes(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range types {
		if strings.EqualFold(t.Name, strings.TrimSpace(value)) {
			return t.ID, nil
		}
	}
	return 0, Error{
		Cause:      fmt.Sprintf("no drug type named %q", value),
		Suggestion: `Use "pharmabi lookup drug-types" to list drug types.`,
	}
}

func productSearch(f api.ProductFilter, text string) api.ProductFilter {
	f.Search = strings.TrimSpace(text)
	return f
}

func newProductsCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Short:   "List and export products",
		Aliases: []string{"product"},
		GroupID: groupData,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(newProductsListCmd(cli))
	cmd.AddCommand(newProductsGetCmd(cli))
	cmd.AddCommand(newProductsExportCmd(cli))
	cmd.AddCommand(newProductsBrowseCmd(cli))
	return cmd
}

func newProductsListCmd(cli *CLI) *cobra.Command {
	var filterOptions productFilterOptions
	var options listCmdOptions

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List products",
		Aliases: []string{"ls"},
		Args:    NoArgs,
		Example: `# List antibiotics
pharmabi products list --drug-type antibiotic`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cli.apiClient()
			filter, err := filterOptions.filter(cmd.Context(), client)
			if err != nil {
				return err
			}
			return listPage(cmd.Context(), cli, client.ListProducts, filter, productView, options)
		},
	}

	addProductFilterFlags(cmd.Flags(), &filterOptions)
	addListFlags(cmd.Flags(), &options)
	return cmd
}

type batchRow struct {
	Batch     string `header:"BATCH"`
	Expiry    string `header:"EXPIRY"`
	Remaining string `header:"REMAINING"`
	Expiring  string `header:"EXPIRING SOON"`
}

type recentOrderRow struct {
	Order    string `header:"ORDER"`
	Date     string `header:"DATE"`
	Customer string `header:"CUSTOMER"`
	Quantity string `header:"QUANTITY"`
	Total    string `header:"TOTAL"`
}

func newProductsGetCmd(cli *CLI) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a product with its stock, batches and recent orders",
		Args:  ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			id, err := parseID("product id", args[0])
			if err != nil {
				return err
			}

			detail, err := cli.apiClient().GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			if outputFormat != "" {
				return writeStructured(cli.Stdout, outputFormat, detail)
			}
			printProduct(cli, detail)
			return nil
		},
	}

	addFormatFlag(cmd.Flags(), &outputFormat)
	return cmd
}

func printProduct(cli *CLI, d *api.ProductDetail) {
	fields := []field{
		{Name: "ID", Value: strconv.Itoa(d.ID)},
		{Name: "Code", Value: d.Code},
		{Name: "Name", Value: d.Name},
		{Name: "Strength", Value: d.Strength},
		{Name: "Brand", Value: d.BrandName},
		{Name: "Category", Value: d.Category()},
		{Name: "Manufacturer", Value: d.ManufacturerName},
		{Name: "Status", Value: d.Status()},
	}
	if d.Narcotics || d.IsNarcotic {
		fields = append(fields, field{Name: "Narcotic", Value: "yes"})
	}
	if s := d.StockSummary; s != nil {
		stock := quantity(s.CurrentStock)
		switch {
		case s.IsOutOfStock:
			stock += " (out of stock)"
		case s.IsLowStock:
			stock += " (low)"
		}
		fields = append(fields,
			field{Name: "Stock", Value: stock},
			field{Name: "Stock levels", Value: fmt.Sprintf("min %s, max %s", quantity(s.MinLevel), quantity(s.MaxLevel))},
			field{Name: "Purchased", Value: quantity(s.TotalPurchased)},
			field{Name: "Sold", Value: quantity(s.TotalSold)},
		)
	}
	if p := d.Pricing; p != nil {
		fields = append(fields,
			field{Name: "Unit cost", Value: format.Money(p.UnitCost)},
			field{Name: "Margin", Value: fmt.Sprintf("%.1f%% (%s)", p.MarginPercent, format.Money(p.MarginAmount))},
			field{Name: "Sale price", Value: format.Money(p.SalePrice)},
		)
	}
	writeFields(cli.Stdout, fields...)

	if section(cli.Stdout, "Alerts", len(d.Alerts)) {
		for _, a := range d.Alerts {
			cli.Output("  %s", a.Message)
		}
	}

	if section(cli.Stdout, "Active batches", len(d.ActiveBatches)) {
		rows := make([]batchRow, 0, len(d.ActiveBatches))
		for _, b := range d.ActiveBatches {
			row := batchRow{Batch: b.BatchNo, Expiry: b.ExpiryDate.Date(), Remaining: quantity(b.RemainingQty)}
			if b.IsExpiringSoon {
				row.Expiring = "yes"
			}
			rows = append(rows, row)
		}
		cli.Table(rows)
	}

	if section(cli.Stdout, "Recent orders", len(d.RecentOrders)) {
		rows := make([]recentOrderRow, 0, len(d.RecentOrders))
		for _, o := range d.RecentOrders {
			rows = append(rows, recentOrderRow{
				Order:    o.OrderID,
				Date:     o.Date.Date(),
				Customer: o.Customer,
				Quantity: quantity(o.Quantity),
				Total:    format.Money(o.Total),
			})
		}
		cli.Table(rows)
	}
}

func newProductsExportCmd(cli *CLI) *cobra.Command {
	var filterOptions productFilterOptions
	var options exportCmdOptions

	cmd := &cobra.Command{
		Use:   "export FORMAT",
		Short: "Export products to pdf, excel or csv",
		Args:  ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := filterOptions.filter(cmd.Context(), cli.apiClient())
			if err != nil {
				return err
			}
			return exportResource(cmd.Context(), cli, api.ExportProducts, args[0], filter, options)
		},
	}

	addProductFilterFlags(cmd.Flags(), &filterOptions)
	addExportFlags(cmd.Flags(), &options)
	return cmd
}

func newProductsBrowseCmd(cli *CLI) *cobra.Command {
	var filterOptions productFilterOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through products interactively",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := cli.apiClient()
			filter, err := filterOptions.filter(cmd.Context(), client)
			if err != nil {
				return err
			}

			return browse(cmd.Context(), cli, screen[api.ProductFilter, api.Product]{
				Fetch:      client.ListProducts,
				Filter:     filter,
				WithSearch: productSearch,
				SetFilter: func(f api.ProductFilter, key, value string) (api.ProductFilter, error) {
					switch key {
					case "drug-type", "type":
						id, err := resolveDrugType(cmd.Context(), client, value)
						if err != nil {
							return f, err
						}
						f.DrugTypeID = id
						return f, nil
					case "search":
						return productSearch(f, value), nil
					}
					return f, fmt.Errorf("unknown filter %q, expected drug-type", key)
				},
				FilterKeys: "drug-type",
				View:       productView,
			})
		},
	}

	addProductFilterFlags(cmd.Flags(), &filterOptions)
	return cmd
}
