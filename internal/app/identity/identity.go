package identity

import "bookmytourguide/internal/domain/user"

// Actor is the pre-resolved caller identity every request carries. The
// services never authenticate; they only authorize against this.
type Actor struct {
	ID   user.ID
	Role user.Role
	Name string
}

func (a Actor) IsZero() bool {
	return a.ID == ""
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}
