package service

import (
	"math"
	"strconv"
	"strings"
)

// Default pagination values.
const (
	DefaultPage            = 1
	DefaultVariantPageSize = 5
	DefaultDrugPageSize    = 10
	DefaultMaxPageSize     = 100
)

// PageParams are coerced, always-positive pagination parameters
type PageParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of items preceding the page, saturating instead of overflowing.
func (p PageParams) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// ParsePageParams coerces untrusted page/limit strings. Unparsable or non-positive
// values fall back to page 1 and defaultLimit; limits above maxLimit are capped.
func ParsePageParams(page, limit string, defaultLimit, maxLimit int) PageParams {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		p = 0
	}
	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		l = 0
	}
	return NewPageParams(p, l, defaultLimit, maxLimit)
}

// NewPageParams applies the same coercion as ParsePageParams to numeric input.
func NewPageParams(page, limit, defaultLimit, maxLimit int) PageParams {
	if defaultLimit <= 0 {
		defaultLimit = DefaultVariantPageSize
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxPageSize
	}

	p := PageParams{Page: DefaultPage, Limit: defaultLimit}
	if page > 0 {
		p.Page = page
	}
	if limit > 0 {
		p.Limit = limit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// TotalPages returns ceil(totalItems / limit).
func TotalPages(totalItems int64, limit int) int {
	if limit <= 0 || totalItems <= 0 {
		return 0
	}
	return int((totalItems + int64(limit) - 1) / int64(limit))
}

// Page is one slice of a larger result
type Page[T any] struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	Items      []T   `json:"-"`
}

// Paginate slices items for the requested page. Pages past the end are empty.
func Paginate[T any](items []T, params PageParams) Page[T] {
	total := len(items)
	totalPages := TotalPages(int64(total), params.Limit)
	start := total
	if params.Page >= 1 && params.Page <= totalPages {
		start = params.Offset()
	}
	end := start + params.Limit
	if end > total || end < start {
		end = total
	}

	return Page[T]{
		Page:       params.Page,
		Limit:      params.Limit,
		TotalItems: int64(total),
		TotalPages: totalPages,
		Items:      append(make([]T, 0, end-start), items[start:end]...),
	}
}
