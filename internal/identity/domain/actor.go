package domain

import "errors"

// Role types
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleSeller     = "seller"
)

// Capabilities granted through roles. Handlers check capabilities, never
// role names, so adding a role is a change to this table only.
const (
	CapabilityCreateSale     = "sales.create"
	CapabilityCancelSale     = "sales.cancel"
	CapabilityReadSales      = "sales.read"
	CapabilityManageStock    = "stock.manage"
	CapabilityManageProducts = "products.manage"
)

// ErrUnauthorized is returned when an actor's role lacks the required capability
var ErrUnauthorized = errors.New("operation not permitted for this role")

var rolePermissions = map[string][]string{
	RoleSuperAdmin: {
		CapabilityCreateSale,
		CapabilityCancelSale,
		CapabilityReadSales,
		CapabilityManageStock,
		CapabilityManageProducts,
	},
	RoleAdmin: {
		CapabilityCreateSale,
		CapabilityCancelSale,
		CapabilityReadSales,
		CapabilityManageStock,
		CapabilityManageProducts,
	},
	RoleSeller: {
		CapabilityCreateSale,
		CapabilityCancelSale,
		CapabilityReadSales,
	},
}

// Actor is the authenticated caller of an operation. TenantID is nil for
// platform-level actors.
type Actor struct {
	ID       uint
	Role     string
	TenantID *uint
}

// IsPlatform reports whether the actor operates across all tenants
func (a Actor) IsPlatform() bool {
	return a.Role == RoleSuperAdmin
}

// Can reports whether the actor's role grants the capability
func (a Actor) Can(capability string) bool {
	for _, granted := range rolePermissions[a.Role] {
		if granted == capability {
			return true
		}
	}
	return false
}
