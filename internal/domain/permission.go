package domain

// PermissionLevel is the effective access a user holds on an application.
// Levels are ordered: none < read < write < admin.
type PermissionLevel string

const (
	PermissionNone  PermissionLevel = "none"
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

func (l PermissionLevel) rank() int {
	switch l {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

// Grantable reports whether l may be stored on a grant row.
func (l PermissionLevel) Grantable() bool {
	switch l {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	default:
		return false
	}
}

func (l PermissionLevel) AtLeast(min PermissionLevel) bool {
	return l.rank() >= min.rank()
}

// ResolvePermission applies site Admin > owner > explicit grant > none.
// grant may be nil when no row exists for the pair.
func ResolvePermission(user User, app Application, grant *Grant) PermissionLevel {
	switch user.Role {
	case RoleAdmin:
		return PermissionAdmin
	case RoleUser:
		if app.OwnedBy(user.ID) {
			return PermissionAdmin
		}
		if grant != nil && grant.UserID == user.ID && grant.ApplicationID == app.ID && grant.PermissionLevel.Grantable() {
			return grant.PermissionLevel
		}
		return PermissionNone
	default:
		return PermissionNone
	}
}
