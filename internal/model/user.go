package model

import (
	"encoding/json"
	"time"
)

// Role names stored on users.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleRider = "rider"
)

// User represents an account identified by its unique email. Users are
// created by the web client after sign-in; roles only change through admin
// actions or rider activation.
//
// Fields:
//
//	ID           – opaque identifier generated by the store.
//	Email        – unique email address.
//	Name         – display name (optional).
//	Role         – user, admin or rider.
//	CreatedAt    – first sign-in.
//	LastLoggedIn – most recent sign-in.
//	Extra        – any other profile key sent by the client (photo URL...).
type User struct {
	ID           string     `json:"_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoggedIn *time.Time `json:"last_logged_in,omitempty"`
	Extra        Extra      `json:"-"`
}

var userKeys = keySet("_id", "email", "name", "role", "created_at", "last_logged_in")

// userStamped are set by the server; client values are ignored.
var userStamped = keySet("created_at", "last_logged_in")

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	b, err := json.Marshal(alias(u))
	if err != nil {
		return nil, err
	}
	return mergeExtra(b, u.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var a alias
	extra, err := decodeClient(data, userKeys, userStamped, &a)
	if err != nil {
		return err
	}
	*u = User(a)
	u.Extra = extra
	return nil
}

// AssignableRole reports whether role may be set through the admin role
// endpoints. The rider role is only granted by rider activation.
func AssignableRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// UserRole is the public projection returned by the role lookup.
type UserRole struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
