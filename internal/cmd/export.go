package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	clibrowser "github.com/cli/browser"
	"github.com/natefinch/atomic"
	"github.com/spf13/pflag"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/logging"
)

type exportCmdOptions struct {
	Page int
	Open bool
}

func addExportFlags(flags *pflag.FlagSet, options *exportCmdOptions) {
	flags.IntVar(&options.Page, "page", 1, "Page of the list to export")
	flags.String("output-dir", ".", "Directory the file is written to")
	flags.BoolVar(&options.Open, "open", false, "Open the file once it is written")
}

// exportResource downloads an export and writes it to the output directory.
// The file is written atomically, so a failed export never leaves a partial
// file behind.
func exportResource(ctx context.Context, cli *CLI, resource, formatArg string, filter any, options exportCmdOptions) error {
	exportFormat, err := api.ParseExportFormat(formatArg)
	if err != nil {
		return err
	}
	if options.Page < 1 {
		return fmt.Errorf("page must be at least 1")
	}

	page := api.PageRequest{PageNumber: options.Page, PageSize: cli.Config.PageSize}
	data, err := cli.apiClient().Export(ctx, resource, exportFormat, page, filter)
	if err != nil {
		return Error{Cause: "export failed", OriginalError: err}
	}
	if len(data) == 0 {
		return Error{Cause: "export failed", Suggestion: "The server returned an empty file."}
	}

	path := filepath.Join(cli.Config.OutputDir, api.ExportFilename(resource, exportFormat, cli.Clock.Now()))
	if err := writeFile(path, data); err != nil {
		return Error{Cause: "failed to save export", OriginalError: err}
	}
	cli.Output("Exported %s", path)

	if options.Open {
		if err := cli.openFile(path); err != nil {
			logging.Warnf("failed to open %s: %v", path, err)
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

func openFile(path string) error {
	return clibrowser.OpenFile(path)
}
