package api

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, expected int
	}{
		{count: 95, size: 10, expected: 10},
		{count: 100, size: 10, expected: 10},
		{count: 1, size: 100, expected: 1},
		{count: 0, size: 10, expected: 0},
		{count: 37, size: 0, expected: 0},
	}
	for _, tc := range tests {
		assert.Equal(t, TotalPages(tc.count, tc.size), tc.expected, "count=%d size=%d", tc.count, tc.size)
	}
}

func TestPage_normalize(t *testing.T) {
	t.Run("fills page from request", func(t *testing.T) {
		p := &Page[int]{TotalCount: 12}
		p.normalize(PageRequest{PageNumber: 2, PageSize: 5})

		assert.DeepEqual(t, p, &Page[int]{
			Items:           []int{},
			TotalCount:      12,
			PageNumber:      2,
			PageSize:        5,
			TotalPages:      3,
			HasNextPage:     true,
			HasPreviousPage: true,
		})
	})

	t.Run("last page", func(t *testing.T) {
		p := &Page[int]{Items: []int{1}, TotalCount: 11, PageNumber: 3, PageSize: 5, HasNextPage: true}
		p.normalize(FirstPage(5))

		assert.Equal(t, p.TotalPages, 3)
		assert.Assert(t, !p.HasNextPage)
		assert.Assert(t, p.HasPreviousPage)
	})
}
