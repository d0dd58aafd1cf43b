package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Catalog is the canonical shape served by the menu endpoint:
// ordered categories and products under a single data envelope.
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
}

// Category groups products on the menu. Sort orders categories ascending;
// categories without a sort value are pushed last.
type Category struct {
	ID   string `json:"id,omitempty"`
	Ref  string `json:"ref,omitempty"`
	Name string `json:"name,omitempty"`
	Sort *int   `json:"sort,omitempty"`
}

// Product is a single menu item. Upstream payloads vary: the price may be a
// number or a formatted string, and sizes may arrive as SKUs.
type Product struct {
	ID          string      `json:"id,omitempty"`
	Ref         string      `json:"ref,omitempty"`
	CategoryRef string      `json:"category_ref,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price,omitempty"`
	PriceCents  int64       `json:"price_cents,omitempty"`
	Image       string      `json:"image,omitempty"`
	SKUs        []SKU       `json:"skus,omitempty"`
}

// SKU is a sized/priced variant of a product.
type SKU struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Price      json.Number `json:"price,omitempty"`
	PriceCents int64       `json:"price_cents,omitempty"`
}

// SortKey returns the effective sort rank for ordering; missing sorts rank
// after every explicit value.
func (c Category) SortKey() int {
	if c.Sort == nil {
		return math.MaxInt32
	}

	return *c.Sort
}

// PriceCents normalizes a heterogeneous price value (number or formatted
// string such as "$12.50") into integer cents. Unparseable values yield 0.
func PriceCents(v json.Number) int64 {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return 0
	}

	var cleaned strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			cleaned.WriteRune(r)
		}
	}

	f, err := strconv.ParseFloat(cleaned.String(), 64)
	if err != nil {
		return 0
	}

	return int64(math.Round(f * 100))
}
