package accounts

import "github.com/odyssey-erp/inventory-admin/internal/shared"

// Role is an account's access level.
type Role string

const (
	RoleStaff      Role = "staff"
	RoleManager    Role = "manager"
	RoleSuperadmin Role = "superadmin"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStaff, RoleManager, RoleSuperadmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleManager, RoleSuperadmin:
		return true
	}
	return false
}

// ErrInvalidAssignment rejects a permission batch without an account or
// without any permission. It matches shared.ErrValidation.
var ErrInvalidAssignment error = &shared.UserError{Message: "Select at least one permission to assign."}

// Account is a dashboard user managed by the account service.
type Account struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	Role        Role         `json:"role"`
	Permissions []Permission `json:"permissions"`
}

// Permission is a grantable capability.
type Permission struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateInput registers a new account.
type CreateInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
	Role     Role   `json:"role" form:"role" validate:"required,oneof=staff manager superadmin"`
}

// RoleInput changes an account's role.
type RoleInput struct {
	Role Role `json:"role" form:"role" validate:"required,oneof=staff manager superadmin"`
}

type grantRequest struct {
	PermissionID string `json:"permissionId"`
}
