package entities

// Role is a back-office user role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Valid reports whether the role is one the back office recognizes.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// User represents a back-office user as returned by the backend API.
// Password is write-only: it is sent on creation and never echoed back.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password,omitempty"`
}
