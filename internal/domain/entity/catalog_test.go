package entity

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceCents(t *testing.T) {
	cases := map[string]int64{
		"14.50":  1450,
		"14.5":   1450,
		"18":     1800,
		"$12.50": 1250,
		"32.50":  3250,
		"":       0,
		"free":   0,
	}

	for raw, want := range cases {
		assert.Equal(t, want, PriceCents(json.Number(raw)), "price %q", raw)
	}
}

func TestCategory_SortKey(t *testing.T) {
	five := 5
	assert.Equal(t, 5, Category{Sort: &five}.SortKey())
	assert.Equal(t, math.MaxInt32, Category{}.SortKey(), "missing sort ranks last")
}
