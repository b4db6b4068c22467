package cmd

import (
	"github.com/spf13/cobra"
)

type lookupRow struct {
	ID   int    `header:"ID" json:"id"`
	Name string `header:"NAME" json:"name"`
}

type cityRow struct {
	City string `header:"CITY" json:"city"`
}

func newLookupCmd(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lookup",
		Short:   "List the values accepted by filters",
		GroupID: groupData,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, nil); err != nil {
				return err
			}
			return cli.mustBeLoggedIn()
		},
	}

	cmd.AddCommand(lookupCmd(cli, "products", "List product names", func(cmd *cobra.Command) (any, error) {
		products, err := cli.apiClient().ListHelperProducts(cmd.Context())
		if err != nil {
			return nil, err
		}
		rows := make([]lookupRow, 0, len(products))
		for _, p := range products {
			rows = append(rows, lookupRow{ID: p.ID, Name: p.Name})
		}
		return rows, nil
	}))

	cmd.AddCommand(lookupCmd(cli, "drug-types", "List drug types", func(cmd *cobra.Command) (any, error) {
		drugTypes, err := cli.apiClient().ListDrugTypes(cmd.Context())
		if err != nil {
			return nil, err
		}
		rows := make([]lookupRow, 0, len(drugTypes))
		for _, t := range drugTypes {
			rows = append(rows, lookupRow{ID: t.ID, Name: t.Name})
		}
		return rows, nil
	}))

	cmd.AddCommand(lookupCmd(cli, "cities", "List customer cities", func(cmd *cobra.Command) (any, error) {
		cities, err := cli.apiClient().ListCities(cmd.Context())
		if err != nil {
			return nil, err
		}
		rows := make([]cityRow, 0, len(cities))
		for _, c := range cities {
			rows = append(rows, cityRow{City: c.Name})
		}
		return rows, nil
	}))

	return cmd
}

func lookupCmd(cli *CLI, use, short string, list func(*cobra.Command) (any, error)) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(outputFormat); err != nil {
				return err
			}
			rows, err := list(cmd)
			if err != nil {
				return err
			}
			if outputFormat != "" {
				return writeStructured(cli.Stdout, outputFormat, rows)
			}
			cli.Table(rows)
			return nil
		},
	}

	addFormatFlag(cmd.Flags(), &outputFormat)
	return cmd
}
