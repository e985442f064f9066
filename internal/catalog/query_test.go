package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchQueryNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    SearchQuery
		expected SearchQuery
	}{
		{
			name:     "defaults for non-positive values",
			input:    SearchQuery{Term: "go", PageNumber: 0, PageSize: -5},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 10},
		},
		{
			name:     "page size clamped to provider limit",
			input:    SearchQuery{Term: "go", PageNumber: 1, PageSize: 999},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 40},
		},
		{
			name:     "page number unbounded above",
			input:    SearchQuery{Term: "go", PageNumber: 5000, PageSize: 20},
			expected: SearchQuery{Term: "go", PageNumber: 5000, PageSize: 20},
		},
		{
			name:     "sort allow-list is case-insensitive",
			input:    SearchQuery{Term: "go", SortBy: " NEWEST "},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 10, SortBy: "newest"},
		},
		{
			name:     "unknown sort dropped silently",
			input:    SearchQuery{Term: "go", SortBy: "alphabetical"},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 10},
		},
		{
			name:     "filter allow-list",
			input:    SearchQuery{Term: "go", FilterBy: "Free-Ebooks"},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 10, FilterBy: "free-ebooks"},
		},
		{
			name:     "unknown filter dropped silently",
			input:    SearchQuery{Term: "go", FilterBy: "hardcover"},
			expected: SearchQuery{Term: "go", PageNumber: 1, PageSize: 10},
		},
		{
			name:     "term trimmed",
			input:    SearchQuery{Term: "  distributed systems  "},
			expected: SearchQuery{Term: "distributed systems", PageNumber: 1, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.input.normalize())
		})
	}
}

func TestSearchQueryStartIndex(t *testing.T) {
	q := SearchQuery{PageNumber: 3, PageSize: 20}
	assert.Equal(t, 40, q.startIndex())

	q = SearchQuery{PageNumber: 1, PageSize: 10}
	assert.Equal(t, 0, q.startIndex())
}
