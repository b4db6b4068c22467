package query

// DefaultWindow is the number of page links shown by a pagination control.
const DefaultWindow = 5

// VisiblePages returns the inclusive range of page numbers to show around
// current. The range has min(window, total) entries, is centered on current
// when possible, and is clamped to [1, total]. It is empty when total is 0.
func VisiblePages(current, total, window int) []int {
	if total <= 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}

	start := max(1, current-(window-1)/2)
	end := min(total, start+window-1)
	if end == total {
		start = max(1, total-window+1)
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
