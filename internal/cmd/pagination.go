package cmd

import (
	"context"

	"github.com/tatipharma/pharmabi/api"
	"github.com/tatipharma/pharmabi/internal/logging"
	"github.com/tatipharma/pharmabi/internal/query"
)

// listAll fetches every page of a list, one request after the other.
func listAll[F, T any](ctx context.Context, fetch query.Fetcher[F, T], filter F, pageSize int) ([]T, error) {
	logging.Debugf("call server: page 1")
	res, err := fetch(ctx, api.FirstPage(pageSize), filter)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, res.TotalCount)
	items = append(items, res.Items...)

	// first page done in first request
	for page := 2; page <= res.TotalPages; page++ {
		logging.Debugf("call server: page %d", page)
		res, err = fetch(ctx, api.PageRequest{PageNumber: page, PageSize: pageSize}, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, res.Items...)
	}

	return items, nil
}
