package selection

import (
	"context"
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/tatipharma/pharmabi/api"
)

func TestSet_Toggle(t *testing.T) {
	s := NewSet()
	assert.Assert(t, s.Toggle(3))
	assert.Assert(t, s.Toggle(1))
	assert.Assert(t, s.Toggle(2))
	assert.Assert(t, !s.Toggle(1))

	assert.DeepEqual(t, s.IDs(), []int{3, 2})
	assert.Assert(t, s.Contains(2))
	assert.Assert(t, !s.Contains(1))
	assert.Equal(t, s.Len(), 2)

	s.Clear()
	assert.Equal(t, s.Len(), 0)
	assert.Assert(t, s.Complete())
}

func TestSet_Pages(t *testing.T) {
	s := NewSet()
	s.SelectPage([]int{1, 2, 3})
	s.SelectPage([]int{3, 4})
	assert.DeepEqual(t, s.IDs(), []int{1, 2, 3, 4})

	s.ClearPage([]int{2, 3})
	assert.DeepEqual(t, s.IDs(), []int{1, 4})
}

func TestSet_SelectAll(t *testing.T) {
	ctx := context.Background()
	all := make([]int, 37)
	for i := range all {
		all[i] = i + 1
	}

	t.Run("fetches totalCount rows", func(t *testing.T) {
		s := NewSet()
		var requested int
		err := s.SelectAll(ctx, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 37, func(_ context.Context, size int) ([]int, error) {
			requested = size
			return all, nil
		})
		assert.NilError(t, err)
		assert.Equal(t, requested, 37)
		assert.Assert(t, s.IsAllSelected())
		assert.Assert(t, s.Complete())
		assert.Equal(t, s.Len(), 37)
		assert.NilError(t, Check(s, false))
	})

	t.Run("failed fetch leaves an incomplete select-all", func(t *testing.T) {
		s := NewSet()
		err := s.SelectAll(ctx, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 37, func(context.Context, int) ([]int, error) {
			return nil, errors.New("Error Code: 0")
		})
		assert.ErrorContains(t, err, "Error Code: 0")
		assert.Assert(t, s.IsAllSelected())
		assert.Assert(t, !s.Complete())
		assert.Equal(t, s.Len(), 10)
		assert.Equal(t, s.Total(), 37)

		err = Check(s, false)
		assert.Assert(t, errors.Is(err, ErrIncompleteSelection))
		assert.ErrorContains(t, err, "10 of 37 selected")
		assert.NilError(t, Check(s, true))
	})

	t.Run("unknown total uses the fallback size", func(t *testing.T) {
		s := NewSet()
		var requested int
		err := s.SelectAll(ctx, nil, 0, func(_ context.Context, size int) ([]int, error) {
			requested = size
			return []int{5, 6}, nil
		})
		assert.NilError(t, err)
		assert.Equal(t, requested, FallbackPageSize)
		assert.Assert(t, s.Complete())
	})

	t.Run("toggling off leaves select-all mode", func(t *testing.T) {
		s := NewSet()
		assert.NilError(t, s.SelectAll(ctx, nil, 37, func(context.Context, int) ([]int, error) {
			return all, nil
		}))
		assert.Assert(t, !s.Toggle(5))
		assert.Assert(t, !s.IsAllSelected())
		assert.Equal(t, s.Len(), 36)
		assert.Assert(t, s.Complete())
	})
}

func TestListIDs(t *testing.T) {
	type filter struct{ Search string }

	var got api.PageRequest
	fetch := func(_ context.Context, page api.PageRequest, f filter) (*api.Page[api.Customer], error) {
		got = page
		assert.Equal(t, f.Search, "far")
		return &api.Page[api.Customer]{Items: []api.Customer{{ID: 4}, {ID: 9}}}, nil
	}

	ids, err := ListIDs(fetch, filter{Search: "far"}, func(c api.Customer) int { return c.ID })(context.Background(), 37)
	assert.NilError(t, err)
	assert.DeepEqual(t, ids, []int{4, 9})
	assert.Equal(t, got, api.PageRequest{PageNumber: 1, PageSize: 37})
}
