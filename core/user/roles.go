package user

// Role is the closed set of resolved access roles. Every authorization
// decision downstream derives from this resolution plus the principal's
// visibility set; no other component compares role strings on its own.
type Role int

const (
	RoleUnassigned Role = iota
	RoleResolvedParent
	RoleResolvedTeacher
	RoleResolvedAdmin
)

func (r Role) String() string {
	switch r {
	case RoleResolvedAdmin:
		return "admin"
	case RoleResolvedTeacher:
		return "teacher"
	case RoleResolvedParent:
		return "parent"
	}
	return "unassigned"
}

// Resolve maps a principal to exactly one Role, first match wins in
// priority order: a user who is both admin and teacher resolves to admin.
func Resolve(u User) Role {
	switch {
	case u.IsAdmin():
		return RoleResolvedAdmin
	case u.IsTeacher():
		return RoleResolvedTeacher
	case u.IsParent():
		return RoleResolvedParent
	}
	return RoleUnassigned
}

// IsStaff reports whether the resolved role is admin or teacher.
func (r Role) IsStaff() bool {
	return r == RoleResolvedAdmin || r == RoleResolvedTeacher
}
