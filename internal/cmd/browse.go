package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/tatipharma/pharmabi/internal/listview"
	"github.com/tatipharma/pharmabi/internal/query"
	"github.com/tatipharma/pharmabi/internal/selection"
)

// screen describes one browsable list.
type screen[F, T any] struct {
	Fetch      query.Fetcher[F, T]
	Filter     F
	WithSearch func(filter F, text string) F
	// SetFilter applies "f key=value". Nil disables the command.
	SetFilter func(filter F, key, value string) (F, error)
	// FilterKeys is shown in the help text.
	FilterKeys string
	View       listview.View[T]
	// Debounce replaces the configured search debounce when it is longer.
	Debounce time.Duration
}

const browseHelp = `Commands:
  n, p        next or previous page
  g N         go to page N
  s TEXT      search, "s" alone clears the search
  f KEY=VALUE set a filter (%s)
  clear       clear the search and filters
  size N      rows per page (5, 10, 25, 50, 100)
  r           reload the page
  x ID        select or unselect a row
  a           select every matching row, again to retry or unselect
  ids         print the selected ids
  q           quit`

// lineReader is implemented by liner.State.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// scanReader reads commands from a non-terminal input, one per line.
type scanReader struct {
	scanner *bufio.Scanner
}

func (r scanReader) Prompt(string) (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (scanReader) AppendHistory(string) {}

func (scanReader) Close() error {
	return nil
}

type browser[F, T any] struct {
	cli    *CLI
	screen screen[F, T]
	ctrl   *query.Controller[F, T]
	sel    *selection.Set

	// interactive sessions return to the prompt while a search is debounced
	interactive bool

	mu sync.Mutex
}

// browse runs a command loop over one list until the user quits or the
// input ends.
func browse[F, T any](ctx context.Context, cli *CLI, s screen[F, T]) error {
	debounce := max(cli.Config.Debounce, s.Debounce)
	ctrl, err := query.New(query.Options[F, T]{
		Fetch:      s.Fetch,
		WithSearch: s.WithSearch,
		Filter:     s.Filter,
		PageSize:   cli.Config.PageSize,
		Debounce:   debounce,
		Clock:      cli.Clock,
	})
	if err != nil {
		return err
	}
	defer ctrl.Close()

	b := &browser[F, T]{
		cli:         cli,
		screen:      s,
		ctrl:        ctrl,
		sel:         selection.NewSet(),
		interactive: cli.interactive(),
	}

	var reader lineReader = scanReader{scanner: bufio.NewScanner(cli.Stdin)}
	if b.interactive {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		reader = state
	}
	defer reader.Close()

	unsubscribe := ctrl.Subscribe(func(state query.State[F, T]) {
		if !state.Loading {
			b.render(state)
		}
	})
	defer unsubscribe()

	ctrl.Refresh()
	b.settle()

	for {
		input, err := reader.Prompt("> ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		reader.AppendHistory(input)

		quit, err := b.exec(ctx, input)
		if err != nil {
			fmt.Fprintln(cli.Stderr, err)
		}
		if quit {
			return nil
		}
	}
}

// exec runs one command. It returns true when the user quits.
func (b *browser[F, T]) exec(ctx context.Context, input string) (bool, error) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit", "exit":
		return true, nil
	case "?", "h", "help":
		b.cli.Output(browseHelp, b.screen.FilterKeys)
		return false, nil
	case "n", "next":
		if !b.ctrl.NextPage() {
			return false, errors.New("no next page")
		}
	case "p", "prev":
		if !b.ctrl.PreviousPage() {
			return false, errors.New("no previous page")
		}
	case "g":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("usage: g N")
		}
		if !b.ctrl.GoToPage(n) {
			state := b.ctrl.State()
			if n == state.PageNumber {
				return false, nil
			}
			return false, fmt.Errorf("page %d is out of range 1-%d", n, state.TotalPages)
		}
	case "s", "search":
		b.filterChanged()
		b.ctrl.SetSearchText(arg)
		if b.interactive {
			return false, nil
		}
	case "f", "filter":
		if b.screen.SetFilter == nil {
			return false, errors.New("this list has no filters")
		}
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return false, fmt.Errorf("usage: f KEY=VALUE (%s)", b.screen.FilterKeys)
		}
		filter, err := b.screen.SetFilter(b.ctrl.State().Filter, strings.TrimSpace(key), strings.TrimSpace(value))
		if err != nil {
			return false, err
		}
		b.filterChanged()
		b.ctrl.SetFilter(func(F) F { return filter })
	case "clear":
		b.filterChanged()
		b.ctrl.ClearFilters()
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("usage: size N")
		}
		if err := b.ctrl.SetPageSize(n); err != nil {
			return false, err
		}
	case "r", "refresh":
		b.ctrl.Refresh()
	case "x":
		if err := b.toggle(arg); err != nil {
			return false, err
		}
		b.render(b.ctrl.State())
		return false, nil
	case "a", "all":
		if err := b.selectAll(ctx); err != nil {
			b.render(b.ctrl.State())
			return false, err
		}
		b.render(b.ctrl.State())
		return false, nil
	case "ids":
		b.cli.Output("%s", joinIDs(b.sel.IDs()))
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q, type ? for help", name)
	}

	b.settle()
	return false, nil
}

// filterChanged leaves select-all mode, since it selected the rows of the
// previous filter.
func (b *browser[F, T]) filterChanged() {
	if b.sel.IsAllSelected() {
		b.sel.Clear()
	}
}

func (b *browser[F, T]) toggle(arg string) error {
	if b.screen.View.ID == nil {
		return errors.New("rows of this list cannot be selected")
	}
	id, err := parseID("id", arg)
	if err != nil {
		return err
	}
	b.sel.Toggle(id)
	return nil
}

func (b *browser[F, T]) selectAll(ctx context.Context) error {
	if b.screen.View.ID == nil {
		return errors.New("rows of this list cannot be selected")
	}
	// an incomplete select all is retried, a complete one is undone
	if b.sel.IsAllSelected() && b.sel.Complete() {
		b.sel.Clear()
		return nil
	}

	state := b.ctrl.State()
	visible := make([]int, 0, len(state.Items))
	for _, item := range state.Items {
		visible = append(visible, b.screen.View.ID(item))
	}

	fetch := selection.ListIDs(b.screen.Fetch, state.Filter, b.screen.View.ID)
	if err := b.sel.SelectAll(ctx, visible, state.TotalCount, fetch); err != nil {
		return fmt.Errorf("%w, type a to retry", err)
	}
	return nil
}

// settle waits for a debounced search and the requests in flight, so the
// page is rendered before the next prompt.
func (b *browser[F, T]) settle() {
	for b.ctrl.SearchPending() {
		b.cli.Clock.Sleep(10 * time.Millisecond)
	}
	b.ctrl.Wait()
}

func (b *browser[F, T]) render(state query.State[F, T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Fprintln(b.cli.Stdout)
	listview.Render(b.cli.Stdout, termOutput(b.cli.Stdout), b.screen.View, state, b.sel)
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
