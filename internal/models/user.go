package models

type User struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Department   string   `json:"department"`
	Roles        []string `json:"roles"`
	RoleID       int      `json:"role_id"`
	PasswordHash string   `json:"-"`
}

// Ref returns the populated-reference view of the user.
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Username: u.Username, Department: u.Department, Roles: u.Roles}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
