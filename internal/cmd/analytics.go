package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/spf13/cobra"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/format"
)

func newAnalyticsCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "analytics",
		Short:   "Show sales, product and inventory analytics",
		GroupID: groupData,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(newAnalyticsDashboardCmd(cli))
	cmd.AddCommand(newAnalyticsSummaryCmd(cli))
	cmd.AddCommand(newAnalyticsProductsCmd(cli))
	cmd.AddCommand(newAnalyticsInventoryCmd(cli))
	cmd.AddCommand(newAnalyticsExportCmd(cli))
	return cmd
}

// analyticsCmd builds a command that fetches a report with get and prints
// it with write, or as json or yaml with --format.
func analyticsCmd[T any](cli *CLI, use, short string, get func(*cobra.Command) (*T, error), write func(io.Writer, *T)) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			report, err := get(cmd)
			if err != nil {
				return err
			}
			if outputFormat != "" {
				return writeStructured(cli.Stdout, outputFormat, report)
			}
			write(cli.Stdout, report)
			return nil
		},
	}

	addFormatFlag(cmd.Flags(), &outputFormat)
	return cmd
}

func newAnalyticsDashboardCmd(cli *CLI) *cobra.Command {
	get := func(cmd *cobra.Command) (*api.Dashboard, error) {
		return cli.apiClient().GetDashboard(cmd.Context())
	}
	return analyticsCmd(cli, "dashboard", "Show the sales dashboard", get, func(w io.Writer, d *api.Dashboard) {
		writeKPIs(w, d.KPIs)
		writeRows(w, "Revenue performance", d.RevenuePerformance)
		writeRows(w, "Product categories", d.ProductCategories)
		writeRows(w, "Regional performance", d.RegionalPerformance)
		writeRows(w, "Top pharmacies", d.TopPharmacies)
	})
}

type topProductRow struct {
	ID       int    `header:"ID"`
	Product  string `header:"PRODUCT"`
	Revenue  string `header:"REVENUE"`
	Quantity string `header:"QUANTITY"`
}

type regionRow struct {
	Region  string `header:"REGION"`
	Revenue string `header:"REVENUE"`
	Orders  string `header:"ORDERS"`
	Growth  string `header:"GROWTH"`
}

func newAnalyticsSummaryCmd(cli *CLI) *cobra.Command {
	get := func(cmd *cobra.Command) (*api.Analytics, error) {
		return cli.apiClient().GetAnalytics(cmd.Context())
	}
	return analyticsCmd(cli, "summary", "Show sales trends, top products and sales by region", get, func(w io.Writer, a *api.Analytics) {
		writeKPIs(w, a.KPIs)
		writeRows(w, "Sales trend", a.SalesTrend)

		if section(w, "Top products", len(a.TopProducts)) {
			rows := make([]topProductRow, 0, len(a.TopProducts))
			for _, p := range a.TopProducts {
				rows = append(rows, topProductRow{
					ID:       p.ProductID,
					Product:  p.ProductName,
					Revenue:  format.Money(p.Revenue),
					Quantity: quantity(p.Quantity),
				})
			}
			newTable(w).Print(rows)
		}

		if section(w, "Sales by region", len(a.SalesByRegion)) {
			rows := make([]regionRow, 0, len(a.SalesByRegion))
			for _, r := range a.SalesByRegion {
				rows = append(rows, regionRow{
					Region:  r.Label(),
					Revenue: format.Money(r.Revenue),
					Orders:  format.Number(r.Orders),
					Growth:  fmt.Sprintf("%+.1f%%", r.Growth),
				})
			}
			newTable(w).Print(rows)
		}
	})
}

func newAnalyticsProductsCmd(cli *CLI) *cobra.Command {
	get := func(cmd *cobra.Command) (*api.ProductInsights, error) {
		return cli.apiClient().GetProductInsights(cmd.Context())
	}
	return analyticsCmd(cli, "products", "Show product insights", get, func(w io.Writer, p *api.ProductInsights) {
		writeKPIs(w, p.KPIs)
		writeRows(w, "Top SKUs", p.TopSKUs)
		writeRows(w, "Lifecycle stages", p.LifecycleStages)
		writeRows(w, "Products", p.Products)
		writeRows(w, "Recommendations", p.AIRecommendations)
	})
}

type stockAlertRow struct {
	Product  string `header:"PRODUCT"`
	Category string `header:"CATEGORY"`
	Status   string `header:"STATUS"`
	Stock    string `header:"STOCK"`
	Action   string `header:"ACTION"`
}

func newAnalyticsInventoryCmd(cli *CLI) *cobra.Command {
	get := func(cmd *cobra.Command) (*api.InventoryAnalytics, error) {
		return cli.apiClient().GetInventoryAnalytics(cmd.Context())
	}
	return analyticsCmd(cli, "inventory", "Show stock levels, turnover and stock alerts", get, func(w io.Writer, inv *api.InventoryAnalytics) {
		writeKPIs(w, inv.KPIs)
		writeRows(w, "Stock by category", inv.StockByCategory)
		writeRows(w, "Turnover ratio", inv.TurnoverRatio)

		if section(w, "Stock alerts", len(inv.StockAlerts)) {
			rows := make([]stockAlertRow, 0, len(inv.StockAlerts))
			for _, a := range inv.StockAlerts {
				rows = append(rows, stockAlertRow(a))
			}
			newTable(w).Print(rows)
		}
	})
}

var analyticsExports = map[string]string{
	"products":  api.ExportProductInsights,
	"inventory": api.ExportInventory,
}

func newAnalyticsExportCmd(cli *CLI) *cobra.Command {
	var options exportCmdOptions

	cmd := &cobra.Command{
		Use:   "export REPORT FORMAT",
		Short: "Export the products or inventory report to pdf, excel or csv",
		Args:  ExactArgs(2),
		Example: `# Export the inventory report as a pdf
pharmabi analytics export inventory pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource, ok := analyticsExports[args[0]]
			if !ok {
				return fmt.Errorf("unknown report %q, expected products or inventory", args[0])
			}
			return exportResource(cmd.Context(), cli, resource, args[1], nil, options)
		},
	}

	addExportFlags(cmd.Flags(), &options)
	return cmd
}

// label turns a json key such as "totalRevenue" into "Total revenue".
func label(key string) string {
	words := strings.ReplaceAll(strcase.ToSnake(key), "_", " ")
	if words == "" {
		return key
	}
	return strings.ToUpper(words[:1]) + words[1:]
}

// isMoney reports whether a metric named key is an amount of money.
func isMoney(key string) bool {
	key = strings.ToLower(key)
	for _, word := range []string{"revenue", "sales", "amount", "value", "price", "cost"} {
		if strings.Contains(key, word) {
			return true
		}
	}
	return false
}

func formatMetric(key string, v float64) string {
	if isMoney(key) {
		return format.Money(v)
	}
	return quantity(v)
}

func writeKPIs(w io.Writer, kpis map[string]float64) {
	keys := make([]string, 0, len(kpis))
	for k := range kpis {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, field{Name: label(k), Value: formatMetric(k, kpis[k])})
	}
	writeFields(w, fields...)
}

// writeRows prints loosely typed rows as a table. Columns are the keys of
// every row, sorted, with text columns first.
func writeRows(w io.Writer, title string, rows []api.Row) {
	if !section(w, title, len(rows)) {
		return
	}

	numericKeys := map[string]bool{}
	seen := map[string]bool{}
	var keys []string
	for _, row := range rows {
		for k, v := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
				numericKeys[k] = true
			}
			if _, ok := v.(float64); !ok && v != nil {
				numericKeys[k] = false
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if numericKeys[keys[i]] != numericKeys[keys[j]] {
			return !numericKeys[keys[i]]
		}
		return keys[i] < keys[j]
	})

	headers := make([]string, 0, len(keys))
	var numeric []int
	for i, k := range keys {
		headers = append(headers, strings.ToUpper(label(k)))
		if numericKeys[k] {
			numeric = append(numeric, i)
		}
	}

	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := make([]string, 0, len(keys))
		for _, k := range keys {
			line = append(line, cellValue(k, row[k]))
		}
		table = append(table, line)
	}
	newTable(w).Render(headers, table, numeric, false)
}

func cellValue(key string, v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return formatMetric(key, v)
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(v)
}
