package shared

import (
	"slices"
	"strings"
)

// Filter represents query filter options shared by list endpoints
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "updated_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}

// Offset returns the row offset for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated represents a page of results
type Paginated[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// HasNext reports whether a page follows this one
func (p Paginated[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether a page precedes this one
func (p Paginated[T]) HasPrevious() bool {
	return p.Page > 1
}

// SortField is one column of an ORDER BY clause
type SortField struct {
	Field string
	Desc  bool
}

// ParseOrdering parses a comma separated ordering parameter such as
// "-updated_at,min_price". Fields not in allowed are dropped.
// When nothing valid remains the fallback is returned.
func ParseOrdering(raw string, allowed []string, fallback ...SortField) []SortField {
	var fields []SortField
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if name == "" || seen[name] || !slices.Contains(allowed, name) {
			continue
		}
		seen[name] = true
		fields = append(fields, SortField{Field: name, Desc: desc})
	}
	if len(fields) == 0 {
		return fallback
	}
	return fields
}
