package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/listview"
	"github.com/tatipharma/pharmabi/internal/query"
)

type listCmdOptions struct {
	Page   int
	All    bool
	Format string
}

func addListFlags(flags *pflag.FlagSet, options *listCmdOptions) {
	flags.IntVar(&options.Page, "page", 1, "Page number")
	flags.BoolVar(&options.All, "all", false, "List every page")
	addFormatFlag(flags, &options.Format)
}

func addFormatFlag(flags *pflag.FlagSet, bind *string) {
	flags.StringVar(bind, "format", "", "Output format [json|yaml]")
}

// listPage prints one page of a list, or every page with --all.
func listPage[F, T any](ctx context.Context, cli *CLI, fetch query.Fetcher[F, T], filter F, view listview.View[T], options listCmdOptions) error {
	if err := validateFormat(options.Format); err != nil {
		return err
	}
	if options.Page < 1 {
		return fmt.Errorf("page must be at least 1")
	}

	var page *api.Page[T]
	if options.All {
		items, err := listAll(ctx, fetch, filter, cli.Config.PageSize)
		if err != nil {
			return err
		}
		page = &api.Page[T]{Items: items, TotalCount: len(items), PageNumber: 1, PageSize: len(items)}
		if len(items) > 0 {
			page.TotalPages = 1
		}
	} else {
		var err error
		page, err = fetch(ctx, api.PageRequest{PageNumber: options.Page, PageSize: cli.Config.PageSize}, filter)
		if err != nil {
			return err
		}
	}

	if options.Format != "" {
		return writeStructured(cli.Stdout, options.Format, page)
	}

	state := query.State[F, T]{
		Filter:          filter,
		PageNumber:      page.PageNumber,
		PageSize:        page.PageSize,
		Items:           page.Items,
		TotalCount:      page.TotalCount,
		TotalPages:      page.TotalPages,
		HasNextPage:     page.HasNextPage,
		HasPreviousPage: page.HasPreviousPage,
	}
	listview.Render(cli.Stdout, termOutput(cli.Stdout), view, state, nil)
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported format %q, expected json or yaml", format)
}

// writeStructured writes v as json or yaml. The yaml is converted from the
// json encoding, so both use the same field names.
func writeStructured(w io.Writer, format string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if format == "yaml" {
		// MapSlice keeps the json field order
		var doc any = &yaml.MapSlice{}
		if bytes.HasPrefix(out, []byte("[")) {
			doc = &[]yaml.MapSlice{}
		}
		if err := yaml.Unmarshal(out, doc); err != nil {
			return err
		}
		if out, err = yaml.Marshal(doc); err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}

	_, err = fmt.Fprintln(w, string(out))
	return err
}
