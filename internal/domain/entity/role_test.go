package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Ordering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleStaff))
	assert.True(t, RoleStaff.AtLeast(RoleCustomer))
	assert.True(t, RoleCustomer.AtLeast(RoleCustomer))
	assert.False(t, RoleCustomer.AtLeast(RoleStaff))
	assert.False(t, RoleStaff.AtLeast(RoleAdmin))
}

func TestRole_UnknownRanksBelowCustomer(t *testing.T) {
	unknown := Role("superuser")

	assert.False(t, unknown.IsValid())
	assert.Equal(t, -1, unknown.Level())
	assert.False(t, unknown.AtLeast(RoleCustomer))
}

func TestMaxRole_NeverDowngrades(t *testing.T) {
	assert.Equal(t, RoleAdmin, MaxRole(RoleAdmin, RoleCustomer))
	assert.Equal(t, RoleAdmin, MaxRole(RoleCustomer, RoleAdmin))
	assert.Equal(t, RoleStaff, MaxRole(RoleStaff, RoleStaff))
	assert.Equal(t, RoleCustomer, MaxRole(RoleCustomer, Role("bogus")))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("staff")
	assert.True(t, ok)
	assert.Equal(t, RoleStaff, role)

	_, ok = ParseRole("Staff")
	assert.False(t, ok, "role parsing is case-sensitive")

	_, ok = ParseRole("")
	assert.False(t, ok)
}
