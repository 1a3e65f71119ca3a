package domain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "github.com/tair/retail-core/internal/identity/domain"
	"github.com/tair/retail-core/internal/tenant/domain"
	"github.com/tair/retail-core/internal/tenant/repository"
)

func uintPtr(v uint) *uint { return &v }

func TestCanAccessTenant(t *testing.T) {
	platform := identity.Actor{ID: 1, Role: identity.RoleSuperAdmin}
	seller := identity.Actor{ID: 2, Role: identity.RoleSeller, TenantID: uintPtr(3)}
	orphan := identity.Actor{ID: 4, Role: identity.RoleAdmin}

	assert.True(t, domain.CanAccessTenant(platform, 3))
	assert.True(t, domain.CanAccessTenant(platform, 99))
	assert.True(t, domain.CanAccessTenant(seller, 3))
	assert.False(t, domain.CanAccessTenant(seller, 4))
	assert.False(t, domain.CanAccessTenant(orphan, 3))
}

func TestScopeFor(t *testing.T) {
	platformScope := domain.ScopeFor(identity.Actor{Role: identity.RoleSuperAdmin})
	assert.True(t, platformScope.All)
	assert.True(t, platformScope.Allows(1))
	assert.True(t, platformScope.Allows(42))

	tenantScope := domain.ScopeFor(identity.Actor{Role: identity.RoleSeller, TenantID: uintPtr(7)})
	assert.False(t, tenantScope.All)
	assert.True(t, tenantScope.Allows(7))
	assert.False(t, tenantScope.Allows(8))

	orphanScope := domain.ScopeFor(identity.Actor{Role: identity.RoleAdmin})
	assert.True(t, orphanScope.None)
	assert.False(t, orphanScope.Allows(7))
}

func TestValidateTenantAccess(t *testing.T) {
	tenants := repository.NewMemoryTenantRepository()
	tenants.Seed(domain.Tenant{ID: 1, Name: "Acme Retail", Status: domain.StatusActive})
	tenants.Seed(domain.Tenant{ID: 2, Name: "Dormant Shop", Status: domain.StatusSuspended})
	policy := domain.NewPolicy(tenants)

	seller := identity.Actor{ID: 10, Role: identity.RoleSeller, TenantID: uintPtr(1)}
	platform := identity.Actor{ID: 11, Role: identity.RoleSuperAdmin}

	t.Run("own active tenant", func(t *testing.T) {
		assert.NoError(t, policy.ValidateTenantAccess(context.Background(), seller, 1))
	})

	t.Run("foreign tenant denied", func(t *testing.T) {
		err := policy.ValidateTenantAccess(context.Background(), seller, 2)
		assert.ErrorIs(t, err, domain.ErrAccessDenied)
	})

	t.Run("suspended tenant refused", func(t *testing.T) {
		err := policy.ValidateTenantAccess(context.Background(), platform, 2)
		assert.ErrorIs(t, err, domain.ErrSuspended)
	})

	t.Run("missing tenant", func(t *testing.T) {
		err := policy.ValidateTenantAccess(context.Background(), platform, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("platform actor any active tenant", func(t *testing.T) {
		assert.NoError(t, policy.ValidateTenantAccess(context.Background(), platform, 1))
	})
}
