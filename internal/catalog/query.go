package catalog

import "strings"

const (
	defaultPageSize = 10
	maxPageSize     = 40 // provider hard limit per request
)

// SearchQuery holds the caller's search parameters before normalization.
type SearchQuery struct {
	Term       string
	PageNumber int
	PageSize   int
	SortBy     string
	FilterBy   string
}

var (
	allowedOrder = map[string]bool{
		"newest":    true,
		"relevance": true,
	}
	allowedFilter = map[string]bool{
		"ebooks":      true,
		"free-ebooks": true,
		"paid-ebooks": true,
		"full":        true,
		"partial":     true,
	}
)

// normalize clamps pagination and maps sort/filter against the provider's
// allow-lists. Unknown tokens are dropped silently rather than rejected.
func (q SearchQuery) normalize() SearchQuery {
	q.Term = strings.TrimSpace(q.Term)
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if q.PageNumber <= 0 {
		q.PageNumber = 1
	}

	sort := strings.ToLower(strings.TrimSpace(q.SortBy))
	if !allowedOrder[sort] {
		sort = ""
	}
	q.SortBy = sort

	filter := strings.ToLower(strings.TrimSpace(q.FilterBy))
	if !allowedFilter[filter] {
		filter = ""
	}
	q.FilterBy = filter

	return q
}

// startIndex is the zero-based offset sent upstream.
func (q SearchQuery) startIndex() int {
	return (q.PageNumber - 1) * q.PageSize
}
