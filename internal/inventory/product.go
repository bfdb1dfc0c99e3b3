package inventory

import (
	"strings"
	"time"
)

type Size string

const (
	SizeXS  Size = "xs"
	SizeSM  Size = "sm"
	SizeMD  Size = "md"
	SizeLG  Size = "lg"
	SizeXL  Size = "xl"
	SizeXXL Size = "xxl"
)

var allSizes = []Size{SizeXS, SizeSM, SizeMD, SizeLG, SizeXL, SizeXXL}

// ParseSize is case-insensitive.
func ParseSize(s string) (Size, bool) {
	sz := Size(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range allSizes {
		if v == sz {
			return sz, true
		}
	}
	return "", false
}

type SizeStock struct {
	Size     Size `json:"size"`
	Quantity int  `json:"quantity"`
}

type Product struct {
	ID            string
	Name          string
	Price         float64
	Sizes         []SizeStock
	TotalQuantity int // selalu = sum(Sizes[i].Quantity)
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p Product) clone() Product {
	p.Sizes = append([]SizeStock(nil), p.Sizes...)
	return p
}

type NewProduct struct {
	Name  string
	Price float64
	Sizes []SizeStock
}

// Reservation records what one Reserve call took out of a product, per size,
// so Release can put exactly that back.
type Reservation struct {
	Product  Product // state after the reservation
	Quantity int
	Drawn    []SizeStock
}

// Filter drives the catalog listing. Zero values mean "no filter".
type Filter struct {
	Name   string
	Size   Size
	Limit  int
	Offset int
}

func sumSizes(sizes []SizeStock) int {
	n := 0
	for _, s := range sizes {
		n += s.Quantity
	}
	return n
}

// draw takes qty units out of sizes in their stored order. Caller has already
// checked qty <= sumSizes(sizes).
func draw(sizes []SizeStock, qty int) (left, drawn []SizeStock) {
	left = append([]SizeStock(nil), sizes...)
	for i := range left {
		if qty == 0 {
			break
		}
		take := min(left[i].Quantity, qty)
		if take == 0 {
			continue
		}
		left[i].Quantity -= take
		drawn = append(drawn, SizeStock{Size: left[i].Size, Quantity: take})
		qty -= take
	}
	return left, drawn
}

// restore is the inverse of draw.
func restore(sizes, drawn []SizeStock) []SizeStock {
	out := append([]SizeStock(nil), sizes...)
	for _, d := range drawn {
		found := false
		for i := range out {
			if out[i].Size == d.Size {
				out[i].Quantity += d.Quantity
				found = true
				break
			}
		}
		if !found {
			out = append(out, d)
		}
	}
	return out
}
