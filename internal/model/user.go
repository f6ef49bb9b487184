package model

type UserID string

// AnonymousUserID is the author id recorded on anonymous comments.
const AnonymousUserID UserID = "anonymous"

type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// User is the acting user supplied by the session context.
type User struct {
	ID     UserID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
