package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is the two-level authorization model. There are no finer-grained
// permissions: administrators can manage the directory, members can not.
type Role string

const (
	RoleMember        Role = "member"
	RoleAdministrator Role = "administrator"
)

// ParseRole maps a stored or user-supplied role name to a Role.
// The legacy short forms "ta" and "admin" are accepted so directories
// written by earlier deployments keep loading.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "member", "ta":
		return RoleMember, nil
	case "administrator", "admin":
		return RoleAdministrator, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// User is a single directory record. PasswordHash is only ever a bcrypt
// hash; plaintext passwords never reach this struct.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the safe view of a User returned to clients. It never
// carries the password hash.
type PublicUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{Email: u.Email, Name: u.Name, Role: u.Role}
}

// Principal is the authenticated identity attached to a request after
// token verification. It reflects the token claims, not the live
// directory: role changes take effect at the next login.
type Principal struct {
	Email string
	Name  string
	Role  Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdministrator }

// NormalizeEmail lower-cases an identity so lookups can not create
// duplicate accounts differing only by letter case.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
