package inventory

import (
	"github.com/ariefcatur/go-shop-orders.git/internal/apperr"
	"math"
	"regexp"
	"strings"
)

const (
	MinPrice = 1.0
	// MaxQuantity bounds a size quantity and the product total (INTEGER column).
	MaxQuantity = math.MaxInt32
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

// normalize validates n and returns it with lowercase sizes.
func (n NewProduct) normalize() (NewProduct, error) {
	const op = "inventory.Create"
	if strings.TrimSpace(n.Name) == "" {
		return n, apperr.Validation(op, "name is required")
	}
	if !nameRe.MatchString(n.Name) {
		return n, apperr.Validation(op, "name may only contain letters, digits and spaces")
	}
	if n.Price < MinPrice {
		return n, apperr.Validation(op, "price must be at least %.1f", MinPrice)
	}
	if len(n.Sizes) == 0 {
		return n, apperr.Validation(op, "at least one size is required")
	}

	total := 0
	seen := make(map[Size]bool, len(n.Sizes))
	sizes := make([]SizeStock, 0, len(n.Sizes))
	for _, s := range n.Sizes {
		sz, ok := ParseSize(string(s.Size))
		if !ok {
			return n, apperr.Validation(op, "invalid size %q, must be one of %v", s.Size, allSizes)
		}
		if seen[sz] {
			return n, apperr.Validation(op, "size %q listed more than once", sz)
		}
		if s.Quantity < 0 {
			return n, apperr.Validation(op, "quantity for size %q must be non-negative", sz)
		}
		if s.Quantity > MaxQuantity || total > MaxQuantity-s.Quantity {
			return n, apperr.Validation(op, "total quantity must not exceed %d", MaxQuantity)
		}
		total += s.Quantity
		seen[sz] = true
		sizes = append(sizes, SizeStock{Size: sz, Quantity: s.Quantity})
	}
	n.Sizes = sizes
	return n, nil
}
