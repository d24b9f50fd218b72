package domain

// Role is the access tier assigned to an authenticated account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleUser   Role = "user"
)

// ParseRole maps a raw role string onto the closed enumeration. Anything the
// backend sends that is not a known tier yields ok == false: access control
// treats an unrecognized role as no role at all.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleWriter, RoleUser:
		return Role(s), true
	}
	return "", false
}

func (r Role) String() string { return string(r) }
