package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// field is one line of a detail view.
type field struct {
	Name  string
	Value string
}

// writeFields writes aligned "Name: value" lines. Empty values are shown as
// a dash.
func writeFields(out io.Writer, fields ...field) {
	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	defer w.Flush()

	for _, f := range fields {
		value := f.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s:\t%s\n", f.Name, value)
	}
}

// section writes a blank line and a title, unless rows is empty.
func section(out io.Writer, title string, rows int) bool {
	if rows == 0 {
		return false
	}
	fmt.Fprintf(out, "\n%s\n", title)
	return true
}
