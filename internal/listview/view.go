// Package listview renders the state of a list query as a table with a
// pagination line. It keeps no state of its own.
package listview

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lensesio/tableprinter"
	"github.com/muesli/termenv"

	"github.com/tatipharma/pharmabi/internal/format"
	"github.com/tatipharma/pharmabi/internal/query"
	"github.com/tatipharma/pharmabi/internal/selection"
)

type Column[T any] struct {
	Header string
	Value  func(T) string
	// Numeric columns are aligned to the right.
	Numeric bool
}

type View[T any] struct {
	Columns []Column[T]
	// ID identifies a row in a selection. When it is nil no selection column
	// is shown.
	ID     func(T) int
	Window int
}

// Render writes state, and the selection marks of sel when it is not nil.
// out controls colors; a nil out writes plain text to w.
func Render[F, T any](w io.Writer, out *termenv.Output, v View[T], state query.State[F, T], sel *selection.Set) {
	if out == nil {
		out = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
	}

	if state.Err != nil {
		fmt.Fprintln(w, errorBanner(out, state.Err))
	}
	if state.Loading {
		fmt.Fprintln(w, out.String("Loading...").Faint())
	}

	if len(state.Items) == 0 {
		if state.Err == nil && !state.Loading {
			fmt.Fprintln(w, "No results.")
		}
	} else {
		renderTable(w, v, state.Items, sel)
	}

	if sel != nil {
		if line := selectionLine(out, sel); line != "" {
			fmt.Fprintln(w, line)
		}
	}
	if line := PaginationLine(state.PageNumber, state.TotalPages, state.TotalCount, v.Window); line != "" {
		fmt.Fprintln(w, line)
	}
}

func renderTable[T any](w io.Writer, v View[T], items []T, sel *selection.Set) {
	showSelection := sel != nil && v.ID != nil

	var headers []string
	var numeric []int
	if showSelection {
		headers = append(headers, "")
	}
	for _, col := range v.Columns {
		if col.Numeric {
			numeric = append(numeric, len(headers))
		}
		headers = append(headers, col.Header)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, 0, len(headers))
		if showSelection {
			mark := "[ ]"
			if sel.Contains(v.ID(item)) {
				mark = "[x]"
			}
			row = append(row, mark)
		}
		for _, col := range v.Columns {
			row = append(row, col.Value(item))
		}
		rows = append(rows, row)
	}

	table := newTable(w)
	table.Render(headers, rows, numeric, false)
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

// PaginationLine renders "« 1 2 [3] 4 5 »  page 3 of 12, 118 results". It is
// empty when there are no pages.
func PaginationLine(current, total, count, window int) string {
	pages := query.VisiblePages(current, total, window)
	if len(pages) == 0 {
		return ""
	}

	var b strings.Builder
	if current > 1 {
		b.WriteString("« ")
	}
	for i, p := range pages {
		if i > 0 {
			b.WriteString(" ")
		}
		if p == current {
			b.WriteString("[" + strconv.Itoa(p) + "]")
		} else {
			b.WriteString(strconv.Itoa(p))
		}
	}
	if current < total {
		b.WriteString(" »")
	}

	results := "results"
	if count == 1 {
		results = "result"
	}
	fmt.Fprintf(&b, "  page %d of %d, %s %s", current, total, format.Number(count), results)
	return b.String()
}

func selectionLine(out *termenv.Output, sel *selection.Set) string {
	n := sel.Len()
	switch {
	case sel.IsAllSelected() && !sel.Complete():
		return out.String(fmt.Sprintf("All %s rows selected, but only %s are loaded. Retry select all before sending.",
			format.Number(sel.Total()), format.Number(n))).Foreground(out.Color("3")).String()
	case sel.IsAllSelected():
		return fmt.Sprintf("All %s rows selected.", format.Number(n))
	case n > 0:
		return fmt.Sprintf("%s selected.", format.Number(n))
	}
	return ""
}

func errorBanner(out *termenv.Output, err error) string {
	label := out.String(" ERROR ").Bold().Foreground(out.Color("15")).Background(out.Color("1"))
	return fmt.Sprintf("%s %s (r to retry)", label, err)
}
