package authz

const (
	RoleStaff   = 10
	RoleManager = 40
	RoleAdmin   = 50
)

// CanViewAllReports reports whether the role may read reports about other
// users, projects and departments. Staff only see their own user report.
func CanViewAllReports(roleID int) bool {
	return roleID == RoleManager || roleID == RoleAdmin
}
