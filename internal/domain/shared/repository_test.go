package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrdering(t *testing.T) {
	allowed := []string{"updated_at", "min_price"}
	fallback := SortField{Field: "updated_at", Desc: true}

	tests := []struct {
		name string
		raw  string
		want []SortField
	}{
		{"empty uses fallback", "", []SortField{fallback}},
		{"ascending", "min_price", []SortField{{Field: "min_price"}}},
		{"descending", "-min_price", []SortField{{Field: "min_price", Desc: true}}},
		{"multiple", "min_price,-updated_at", []SortField{{Field: "min_price"}, {Field: "updated_at", Desc: true}}},
		{"unknown dropped", "title,-min_price", []SortField{{Field: "min_price", Desc: true}}},
		{"only unknown uses fallback", "title", []SortField{fallback}},
		{"duplicates keep first", "min_price,-min_price", []SortField{{Field: "min_price"}}},
		{"whitespace tolerated", " -updated_at , min_price ", []SortField{{Field: "updated_at", Desc: true}, {Field: "min_price"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOrdering(tt.raw, allowed, fallback))
		})
	}
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2, 3}, 7, 2, 3)

	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrevious())

	last := NewPaginated([]int{7}, 7, 3, 3)
	assert.False(t, last.HasNext())

	empty := NewPaginated([]int{}, 0, 1, 6)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasPrevious())
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 6}.Offset())
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 6}.Offset())
	assert.Equal(t, 12, Filter{Page: 3, PageSize: 6}.Offset())
}

func TestDomainError_Is(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Offer not found.")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.NotErrorIs(t, err, ErrForbidden)

	field := NewFieldError("rating", "rating must be between 1 and 5.")
	assert.ErrorIs(t, field, ErrInvalidInput)
	assert.Equal(t, "rating", field.Field)
}
