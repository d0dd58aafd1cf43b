package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+61400000001", NormalizePhone("+61 (400) 000-001"))
	assert.Equal(t, "0400000001", NormalizePhone("0400.000.001"))
	assert.Equal(t, "", NormalizePhone("not a phone"))
}
