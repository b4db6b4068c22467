// Package selection tracks rows chosen across the pages of a list and sends
// bulk actions to them one at a time.
package selection

import (
	"context"
	"fmt"
	"sync"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/query"
)

// FallbackPageSize is the page size used to fetch every id when the total
// count is not known.
const FallbackPageSize = 10000

// Set is a set of ids, kept in the order they were selected. In select-all
// mode it stands for every row matching the current filter, whether or not
// the ids of those rows have been fetched yet.
type Set struct {
	mu       sync.Mutex
	ids      []int
	index    map[int]struct{}
	all      bool
	complete bool
	total    int
}

func NewSet() *Set {
	return &Set{index: map[int]struct{}{}}
}

func (s *Set) add(id int) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *Set) remove(id int) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return true
}

// Toggle flips the selection of id and reports whether it is now selected.
// Deselecting any id leaves select-all mode.
func (s *Set) Toggle(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove(id) {
		s.all = false
		return false
	}
	s.add(id)
	return true
}

func (s *Set) Select(ids ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.add(id)
	}
}

// SelectPage selects every id of the visible page.
func (s *Set) SelectPage(ids []int) {
	s.Select(ids...)
}

// ClearPage deselects every id of the visible page, leaving select-all mode.
func (s *Set) ClearPage(ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.remove(id)
	}
	s.all = false
}

func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = nil
	s.index = map[int]struct{}{}
	s.all = false
	s.complete = false
	s.total = 0
}

func (s *Set) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// IDs returns the selected ids in the order they were selected.
func (s *Set) IDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.ids...)
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IsAllSelected reports whether the set is in select-all mode. It stays true
// when fetching the ids of every row failed.
func (s *Set) IsAllSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all
}

// Complete reports whether the set holds every id it stands for. It is
// always true outside select-all mode.
func (s *Set) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isComplete()
}

func (s *Set) isComplete() bool {
	return !s.all || (s.complete && len(s.ids) >= s.total)
}

// Total is the number of rows the set stands for in select-all mode, or the
// number of selected ids otherwise.
func (s *Set) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.all && s.total > len(s.ids) {
		return s.total
	}
	return len(s.ids)
}

// FetchIDs loads the ids of the first pageSize rows matching the current
// filter.
type FetchIDs func(ctx context.Context, pageSize int) ([]int, error)

// SelectAll selects the visible ids right away and enters select-all mode,
// then fetches the ids of every matching row with a single request of
// totalCount rows. When the fetch fails the set stays in select-all mode
// but is not Complete, and the error is returned.
func (s *Set) SelectAll(ctx context.Context, visible []int, totalCount int, fetch FetchIDs) error {
	s.mu.Lock()
	for _, id := range visible {
		s.add(id)
	}
	s.all = true
	s.complete = false
	s.total = totalCount
	s.mu.Unlock()

	size := totalCount
	if size <= 0 {
		size = FallbackPageSize
	}

	ids, err := fetch(ctx, size)
	if err != nil {
		return fmt.Errorf("select all: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// deselected while the fetch was in flight
	if !s.all {
		return nil
	}
	for _, id := range ids {
		s.add(id)
	}
	s.complete = true
	if totalCount <= 0 {
		s.total = len(ids)
	}
	return nil
}

// ListIDs adapts a list fetcher to FetchIDs.
func ListIDs[F, T any](fetch query.Fetcher[F, T], filter F, id func(T) int) FetchIDs {
	return func(ctx context.Context, pageSize int) ([]int, error) {
		page, err := fetch(ctx, api.PageRequest{PageNumber: 1, PageSize: pageSize}, filter)
		if err != nil {
			return nil, err
		}
		ids := make([]int, 0, len(page.Items))
		for _, item := range page.Items {
			ids = append(ids, id(item))
		}
		return ids, nil
	}
}
