package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePageParams(t *testing.T) {
	tests := []struct {
		name  string
		page  string
		limit string
		want  PageParams
	}{
		{"Defaults", "", "", PageParams{Page: 1, Limit: 5}},
		{"Explicit values", "3", "20", PageParams{Page: 3, Limit: 20}},
		{"Unparsable", "abc", "x1", PageParams{Page: 1, Limit: 5}},
		{"Non-positive", "0", "-4", PageParams{Page: 1, Limit: 5}},
		{"Limit capped", "2", "500", PageParams{Page: 2, Limit: 100}},
		{"Whitespace", " 2 ", " 7 ", PageParams{Page: 2, Limit: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePageParams(tt.page, tt.limit, DefaultVariantPageSize, DefaultMaxPageSize))
		})
	}
}

func TestParsePageParams_FallbackDefaults(t *testing.T) {
	assert.Equal(t, PageParams{Page: 1, Limit: DefaultVariantPageSize}, ParsePageParams("", "", 0, 0))
	assert.Equal(t, PageParams{Page: 1, Limit: 10}, ParsePageParams("", "", DefaultDrugPageSize, 0))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(7, 5))
	assert.Equal(t, 0, TotalPages(7, 0))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	first := Paginate(items, PageParams{Page: 1, Limit: 5})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, first.Items)
	assert.Equal(t, int64(7), first.TotalItems)
	assert.Equal(t, 2, first.TotalPages)

	second := Paginate(items, PageParams{Page: 2, Limit: 5})
	assert.Equal(t, []int{6, 7}, second.Items)

	beyond := Paginate(items, PageParams{Page: 3, Limit: 5})
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 2, beyond.TotalPages)
}

func TestPaginate_Extremes(t *testing.T) {
	items := []string{"a", "b"}

	huge := Paginate(items, PageParams{Page: math.MaxInt, Limit: 100})
	assert.Empty(t, huge.Items)

	empty := Paginate([]string{}, PageParams{Page: 1, Limit: 5})
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestPageParams_Offset(t *testing.T) {
	assert.Equal(t, 0, PageParams{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, PageParams{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, math.MaxInt, PageParams{Page: math.MaxInt, Limit: 100}.Offset())
}

func TestNewPageParams(t *testing.T) {
	assert.Equal(t, PageParams{Page: 1, Limit: 5}, NewPageParams(0, 0, 5, 100))
	assert.Equal(t, PageParams{Page: 3, Limit: 20}, NewPageParams(3, 20, 5, 100))
	assert.Equal(t, PageParams{Page: 1, Limit: 100}, NewPageParams(-2, 500, 5, 100))
}
