package user

import "testing"

func TestResolve(t *testing.T) {
	usr := func(roles ...string) User {
		return User{Roles: roles}
	}

	tests := []struct {
		name string
		usr  User
		want Role
	}{
		{name: "no roles", usr: usr(), want: RoleUnassigned},
		{name: "unknown role", usr: usr("lol:"), want: RoleUnassigned},
		{name: "parent", usr: usr(RoleParent), want: RoleResolvedParent},
		{name: "teacher", usr: usr(RoleTeacher), want: RoleResolvedTeacher},
		{name: "admin", usr: usr(RoleAdmin), want: RoleResolvedAdmin},
		{name: "admin owner", usr: usr(RoleAdminOwner), want: RoleResolvedAdmin},
		{name: "admin director", usr: usr(RoleAdminDirector), want: RoleResolvedAdmin},
		// first match wins: admin > teacher > parent
		{name: "teacher and parent", usr: usr(RoleParent, RoleTeacher), want: RoleResolvedTeacher},
		{name: "admin and teacher", usr: usr(RoleTeacher, RoleAdmin), want: RoleResolvedAdmin},
		{name: "all roles", usr: usr(AllRoles...), want: RoleResolvedAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.usr); got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleIsStaff(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleResolvedAdmin, true},
		{RoleResolvedTeacher, true},
		{RoleResolvedParent, false},
		{RoleUnassigned, false},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			if got := tt.role.IsStaff(); got != tt.want {
				t.Errorf("IsStaff() = %v, want %v", got, tt.want)
			}
		})
	}
}
