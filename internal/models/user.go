package models

// Role is the platform role of a user
type Role string

const (
	RoleCreator Role = "Creator"
	RoleViewer  Role = "Viewer"
	RoleAdmin   Role = "Admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleCreator: true,
	RoleViewer:  true,
	RoleAdmin:   true,
}

// User represents a platform user as reported by the remote API
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user may moderate content
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Session is the client state persisted between runs
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// Clone returns a copy that shares no pointers with s
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.User != nil {
		u := *s.User
		cp.User = &u
	}
	return &cp
}
