package session

// Role is the canonical role the application's authorization logic reasons
// over, after normalizing server and legacy role strings.
type Role string

const (
	RoleUser       Role = "user"
	RoleSuperAdmin Role = "super_admin"
)

// roleAliases maps legacy backend role strings onto the two canonical
// roles. Matching is exact and case-sensitive.
var roleAliases = map[string]Role{
	"root":        RoleSuperAdmin,
	"admin":       RoleSuperAdmin,
	"cp_admin":    RoleSuperAdmin,
	"super_admin": RoleSuperAdmin,
	"user":        RoleUser,
	"normal":      RoleUser,
}

// ResolveRole normalizes a raw role string. Unrecognized or empty input
// resolves to RoleUser so an unknown role string never gains elevated
// access.
func ResolveRole(raw string) Role {
	if role, ok := roleAliases[raw]; ok {
		return role
	}
	return RoleUser
}
