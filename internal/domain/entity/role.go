package entity

import "strings"

// Role tags a User with the capability set it is allowed to use
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDoctor     Role = "doctor"
	RolePatient    Role = "patient"
	RolePharmacist Role = "pharmacist"
)

// ParseRole normalizes a role name, accepting "administrator" as an alias of admin
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator":
		return RoleAdmin, true
	case "doctor":
		return RoleDoctor, true
	case "patient":
		return RolePatient, true
	case "pharmacist":
		return RolePharmacist, true
	}
	return "", false
}

// IsStaff reports whether the role belongs to hospital staff
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleDoctor || r == RolePharmacist
}
