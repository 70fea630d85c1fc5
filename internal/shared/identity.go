package shared

import "github.com/google/uuid"

// RoleAdmin is the role that lifts ownership filtering within a tenant.
const RoleAdmin = "admin"

// Identity describes the authenticated actor resolved from a bearer credential.
type Identity struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Role      string
	IsActive  bool
}

// IsAdmin reports whether the actor sees all tenant data.
func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// Scope carries the (tenant, actor) pair every repository call is
// parameterized by. Queries append its predicates; single-row mutations go
// through Authorize.
type Scope struct {
	CompanyID uuid.UUID
	UserID    uuid.UUID
	Admin     bool
}

// ScopeFor derives a Scope from an identity.
func ScopeFor(id Identity) Scope {
	return Scope{CompanyID: id.CompanyID, UserID: id.UserID, Admin: id.IsAdmin()}
}

// Owned is implemented by rows subject to the tenant and soft-ownership rule.
type Owned interface {
	TenantID() uuid.UUID
	OwnerIDs() []uuid.UUID
}

// Authorize applies the uniform row rule: the row must belong to the actor's
// tenant, and the actor must be an admin or one of the row's owners.
// Cross-tenant rows surface as ErrNotFound so tenant existence never leaks.
func Authorize(scope Scope, row Owned) error {
	if row.TenantID() != scope.CompanyID {
		return ErrNotFound
	}
	if scope.Admin {
		return nil
	}
	for _, owner := range row.OwnerIDs() {
		if owner != uuid.Nil && owner == scope.UserID {
			return nil
		}
	}
	return ErrForbidden
}
