package domain

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	identity "github.com/tair/retail-core/internal/identity/domain"
)

// CanAccessTenant reports whether the actor may operate on the given tenant's
// data. Platform actors may access any tenant, everyone else only their own.
func CanAccessTenant(actor identity.Actor, tenantID uint) bool {
	if actor.IsPlatform() {
		return true
	}
	return actor.TenantID != nil && *actor.TenantID == tenantID
}

// Scope is the tenant visibility of an actor, applied to list queries
type Scope struct {
	All      bool
	None     bool
	TenantID uint
}

// ScopeFor derives the query scope from the actor's identity
func ScopeFor(actor identity.Actor) Scope {
	if actor.IsPlatform() {
		return Scope{All: true}
	}
	if actor.TenantID == nil {
		return Scope{None: true}
	}
	return Scope{TenantID: *actor.TenantID}
}

// Apply narrows a query to the scope's visible tenants
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s.All {
		return db
	}
	if s.None {
		return db.Where("1 = 0")
	}
	return db.Where("tenant_id = ?", s.TenantID)
}

// Allows reports whether a single tenant falls inside the scope
func (s Scope) Allows(tenantID uint) bool {
	if s.All {
		return true
	}
	if s.None {
		return false
	}
	return s.TenantID == tenantID
}

// Policy validates tenant access for write operations. Beyond the ownership
// check it verifies the target tenant exists and is active.
type Policy struct {
	tenants TenantRepository
}

// NewPolicy creates a tenant access policy
func NewPolicy(tenants TenantRepository) *Policy {
	return &Policy{tenants: tenants}
}

// ValidateTenantAccess checks that the actor may write into the tenant and
// that the tenant is able to transact
func (p *Policy) ValidateTenantAccess(ctx context.Context, actor identity.Actor, tenantID uint) error {
	if !CanAccessTenant(actor, tenantID) {
		return ErrAccessDenied
	}

	tenant, err := p.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to load tenant %d: %w", tenantID, err)
	}
	if !tenant.IsActive() {
		return fmt.Errorf("tenant %d: %w", tenantID, ErrSuspended)
	}
	return nil
}
