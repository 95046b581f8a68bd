package domain

// PermissionAction enumerates the verbs a permission can grant.
type PermissionAction string

const (
	ActionCreate PermissionAction = "CREATE"
	ActionRead   PermissionAction = "READ"
	ActionUpdate PermissionAction = "UPDATE"
	ActionDelete PermissionAction = "DELETE"
)

// PermissionSubject enumerates the resources a permission applies to.
type PermissionSubject string

const (
	SubjectUser  PermissionSubject = "USER"
	SubjectBook  PermissionSubject = "BOOK"
	SubjectOrder PermissionSubject = "ORDER"
)

// Permission is a capability identified by its (action, subject) pair.
type Permission struct {
	ID          string
	Action      PermissionAction
	Subject     PermissionSubject
	Description *string
}

// Role defines a named permission bundle. Seeded once, read-only at runtime.
type Role struct {
	ID          string
	Name        RoleName
	Description *string
	Permissions []Permission
}

// HasPermission reports whether the role grants an exact (action, subject)
// match. The permission set per role is small, a linear scan is fine.
func (r Role) HasPermission(action PermissionAction, subject PermissionSubject) bool {
	for _, p := range r.Permissions {
		if p.Action == action && p.Subject == subject {
			return true
		}
	}
	return false
}

// RolePermission links a role with a permission.
type RolePermission struct {
	RoleID       string
	PermissionID string
}
