package paging

import (
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is the pagination block returned next to every listing. Nil offsets
// serialize as null.
type Page struct {
	Next     *int `json:"next"`
	Limit    int  `json:"limit"`
	Previous *int `json:"previous"`
}

// New computes the page metadata for a window [offset, offset+limit) over total rows.
func New(offset, limit, total int) Page {
	p := Page{Limit: limit}
	if offset+limit < total {
		n := offset + limit
		p.Next = &n
	}
	if offset > 0 {
		prev := offset - limit
		p.Previous = &prev
	}
	return p
}

// Parse reads raw limit/offset query values, applying defaults for empty ones.
func Parse(rawLimit, rawOffset string) (limit, offset int, err error) {
	const op = "paging.Parse"
	limit, offset = DefaultLimit, 0
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit < 1 || limit > MaxLimit {
			return 0, 0, apperr.Validation(op, "limit must be an integer between 1 and %d", MaxLimit)
		}
	}
	if rawOffset != "" {
		if offset, err = strconv.Atoi(rawOffset); err != nil || offset < 0 {
			return 0, 0, apperr.Validation(op, "offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
