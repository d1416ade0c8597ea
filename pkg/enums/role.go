package enums

// Role is the access level carried by an authenticated principal.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role grants administrative surfaces.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}
