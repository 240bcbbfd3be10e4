package domain

import "fmt"

// Role decides which routes a user may reach
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// AllRoles lists every role in display order
var AllRoles = []Role{RoleAdmin, RoleManager, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is an authenticated identity. Role never changes after creation.
type User struct {
	Base
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	CompanyID string `json:"companyId"`
	Sector    string `json:"sector,omitempty"`
	Position  string `json:"position,omitempty"`
	IsActive  bool   `json:"isActive"`
}
