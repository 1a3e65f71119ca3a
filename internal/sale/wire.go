//go:build wireinject
// +build wireinject

package sale

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/tair/retail-core/internal/sale/delivery/http"
	"github.com/tair/retail-core/internal/sale/domain"
	"github.com/tair/retail-core/internal/sale/repository"
	"github.com/tair/retail-core/internal/sale/usecase/command"
	"github.com/tair/retail-core/internal/sale/usecase/query"
	tenantdomain "github.com/tair/retail-core/internal/tenant/domain"
)

// ProvideSaleStore provides the sale store wrapped with tracing
func ProvideSaleStore(db *gorm.DB) domain.Store {
	return repository.NewTracedStore(repository.NewGormStore(db))
}

// Wire sets
var StoreSet = wire.NewSet(
	ProvideSaleStore,
)

// InitializeSaleHandler initializes the HTTP handler with all dependencies
func InitializeSaleHandler(db *gorm.DB, tenants tenantdomain.TenantRepository, events command.EventPublisher) (*http.SaleHandler, error) {
	wire.Build(
		StoreSet,
		tenantdomain.NewPolicy,
		command.NewCreateSaleHandler,
		command.NewCancelSaleHandler,
		query.NewGetSaleHandler,
		query.NewListSalesHandler,
		http.NewSaleHandler,
	)
	return nil, nil
}
