package api

// PageSizes is the set of page sizes a list screen may request.
var PageSizes = []int{5, 10, 25, 50, 100}

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

type PageRequest struct {
	PageNumber int `url:"pageNumber" json:"pageNumber" validate:"min=1"`
	PageSize   int `url:"pageSize" json:"pageSize" validate:"oneof=5 10 25 50 100"`
}

// FirstPage returns a request for the first page with the given size.
func FirstPage(size int) PageRequest {
	return PageRequest{PageNumber: 1, PageSize: size}
}

// Page is one page of a list response. Items are sent as "data" by the
// backend.
type Page[T any] struct {
	Items           []T  `json:"data"`
	TotalCount      int  `json:"totalCount"`
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// TotalPages returns ceil(totalCount/pageSize), or 0 when pageSize is not
// positive.
func TotalPages(totalCount, pageSize int) int {
	if pageSize <= 0 || totalCount <= 0 {
		return 0
	}
	return (totalCount + pageSize - 1) / pageSize
}

// normalize recomputes the derived pagination fields. Some endpoints omit
// totalPages and hasNextPage, others send them, and the values they send are
// not always consistent with totalCount. The client never trusts them.
func (p *Page[T]) normalize(req PageRequest) {
	if p.PageSize <= 0 {
		p.PageSize = req.PageSize
	}
	if p.PageNumber <= 0 {
		p.PageNumber = req.PageNumber
	}
	if p.TotalCount < 0 {
		p.TotalCount = 0
	}
	if p.Items == nil {
		p.Items = []T{}
	}

	p.TotalPages = TotalPages(p.TotalCount, p.PageSize)
	p.HasNextPage = p.PageNumber < p.TotalPages
	p.HasPreviousPage = p.PageNumber > 1
}
