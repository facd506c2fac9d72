package utils

// Permission levels
const (
	DeveloperPermission  = "developer"
	SuperAdminPermission = "super_admin"
	AdminPermission      = "admin"
	UserPermission       = "user"
	GuestPermission      = "guest"
)

func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

func containsAny(slice, items []string) bool {
	for _, item := range items {
		if contains(slice, item) {
			return true
		}
	}
	return false
}

// CheckPermission resolves the highest permission level a member holds given
// their role ids and the configured role lists.
func CheckPermission(memberRoleIDs []string, userID string, adminRoleIDs, userRoleIDs, developerUserIDs, superAdminRoleIDs []string) string {
	if contains(developerUserIDs, userID) {
		return DeveloperPermission
	}
	if containsAny(superAdminRoleIDs, memberRoleIDs) {
		return SuperAdminPermission
	}
	if containsAny(adminRoleIDs, memberRoleIDs) {
		return AdminPermission
	}
	if containsAny(userRoleIDs, memberRoleIDs) {
		return UserPermission
	}
	return GuestPermission
}
