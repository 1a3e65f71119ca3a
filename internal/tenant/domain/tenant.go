package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Tenant status
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

var (
	// ErrAccessDenied is returned when an actor operates outside its tenant scope
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound is returned when the target tenant does not exist
	ErrNotFound = errors.New("tenant not found")

	// ErrSuspended is returned when the target tenant is suspended
	ErrSuspended = errors.New("tenant is suspended")
)

// Tenant represents an isolated retail business. Tenants are provisioned by
// a platform-level actor; this service only reads them for scoping.
type Tenant struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Status    string         `json:"status" gorm:"not null;default:'active'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Tenant) TableName() string {
	return "tenants"
}

// IsActive reports whether the tenant may transact
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// TenantRepository defines the contract for tenant data access
type TenantRepository interface {
	FindByID(ctx context.Context, id uint) (*Tenant, error)
}
