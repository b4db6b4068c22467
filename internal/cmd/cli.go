package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/benbjohnson/clock"
	"github.com/lensesio/tableprinter"
	"github.com/muesli/termenv"
	"github.com/spf13/afero"
	"golang.org/x/term"

	"github.com/tatipharma/pharmabi/internal/session"
)

// CLI exposes common dependencies to commands.
type CLI struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Config is loaded before any command runs.
	Config Config
	// Fs holds the config file and the session.
	Fs    afero.Fs
	Clock clock.Clock

	// openFile opens an exported file with the default application.
	openFile func(path string) error

	store *session.FileStore
}

// Output a string to CLI.Stdout. Output is like fmt.Printf except that it always
// adds a trailing newline.
// To write output without a trailing newline use CLI.Stdout directly.
func (c *CLI) Output(format string, args ...interface{}) {
	fmt.Fprintf(c.Stdout, format+"\n", args...)
}

// Table prints a slice of structs with `header` tags.
func (c *CLI) Table(rows interface{}) {
	newTable(c.Stdout).Print(rows)
}

// termOutput styles text written to w. Colors are only used when w is a
// terminal.
func termOutput(w io.Writer) *termenv.Output {
	if !isTerminal(w) {
		return termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}
	return termenv.NewOutput(w)
}

// interactive reports whether prompts can be shown.
func (c *CLI) interactive() bool {
	return isTerminal(c.Stdin)
}

func (c *CLI) surveyIO(options *survey.AskOptions) error {
	in, ok := c.Stdin.(terminal.FileReader)
	if !ok {
		return fmt.Errorf("stdin is not a terminal")
	}
	out, ok := c.Stdout.(terminal.FileWriter)
	if !ok {
		return fmt.Errorf("stdout is not a terminal")
	}
	options.Stdio.In = in
	options.Stdio.Out = out
	options.Stdio.Err = c.Stderr
	return nil
}

type fder interface {
	Fd() uintptr
}

func isTerminal(v interface{}) bool {
	f, ok := v.(fder)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newTable(w io.Writer) *tableprinter.Printer {
	table := tableprinter.New(w)
	table.HeaderAlignment = tableprinter.AlignLeft
	table.AutoWrapText = false
	table.DefaultAlignment = tableprinter.AlignLeft
	table.CenterSeparator = ""
	table.ColumnSeparator = ""
	table.RowSeparator = ""
	table.HeaderLine = false
	table.BorderBottom = false
	table.BorderLeft = false
	table.BorderRight = false
	table.BorderTop = false
	return table
}

// key is a type to ensure no other package can access the CLI value in context.
type key struct{}

// ctxKey used to store CLI in the context.
var ctxKey = key{}

// newCLI looks for a CLI stores in context. If one exists, the CLI from
// context is returned, otherwise a new CLI is created with streams set to the
// standard input and output streams.
//
// newCLI is a shim for testing, allowing tests to use a buffer instead of the
// standard streams.
func newCLI(ctx context.Context) *CLI {
	cli, ok := ctx.Value(ctxKey).(*CLI)
	if ok {
		return cli
	}

	return &CLI{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Fs:       afero.NewOsFs(),
		Clock:    clock.New(),
		openFile: openFile,
	}
}
