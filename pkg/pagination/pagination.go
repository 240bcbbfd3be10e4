package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params selects a page of a list. Zero or negative values fall back to the defaults.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Page is one slice of a list plus the totals needed to render pagers.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Normalize returns p with defaults applied.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Paginate slices items in their existing order.
func Paginate[T any](items []T, p Params) Page[T] {
	p = p.Normalize()
	total := len(items)

	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}

	data := make([]T, 0)
	if p.Page <= pages {
		// p.Page-1 < pages bounds the product by total, so it cannot overflow.
		start := (p.Page - 1) * p.Limit
		data = append(data, items[start:start+min(p.Limit, total-start)]...)
	}

	return Page[T]{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: pages,
	}
}

// FromQuery reads page and limit from query parameters. Unparseable values are ignored.
func FromQuery(q url.Values) Params {
	var p Params
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = v
	}
	return p.Normalize()
}
