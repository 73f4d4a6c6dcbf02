package utils

// Page is a bounded page request. Number starts at 1 and Limit is always
// positive.
type Page struct {
	Number int
	Limit  int
}

// PageMeta describes where a page sits in a listing
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPage clamps a requested page. A missing or non-positive limit falls
// back to defaultLimit and nothing may exceed maxLimit.
func NewPage(number, limit, defaultLimit, maxLimit int) Page {
	if number < 1 {
		number = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = 1
	}
	return Page{Number: number, Limit: limit}
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Meta reports the page position for a listing of total rows
func (p Page) Meta(total int64) PageMeta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageMeta{
		Page:       p.Number,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: pages,
	}
}
