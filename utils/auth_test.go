package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPermission(t *testing.T) {
	adminRoles := []string{"admin-role"}
	userRoles := []string{"user-role"}
	developers := []string{"dev-user"}
	superAdminRoles := []string{"super-role"}

	cases := []struct {
		name        string
		memberRoles []string
		userID      string
		want        string
	}{
		{"developer wins regardless of roles", nil, "dev-user", DeveloperPermission},
		{"super admin role", []string{"super-role"}, "u1", SuperAdminPermission},
		{"admin role", []string{"admin-role"}, "u1", AdminPermission},
		{"user role", []string{"user-role"}, "u1", UserPermission},
		{"no roles", []string{"other"}, "u1", GuestPermission},
		{"super admin beats admin", []string{"admin-role", "super-role"}, "u1", SuperAdminPermission},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckPermission(tc.memberRoles, tc.userID, adminRoles, userRoles, developers, superAdminRoles)
			assert.Equal(t, tc.want, got)
		})
	}
}
