// Package orders manages laundry orders: pricing against the catalog, the
// fulfillment pipeline, and the money invariant subtotal + tax = total.
package orders

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"lavanderia_backend/internal/events"
	apphttp "lavanderia_backend/internal/http"
	"lavanderia_backend/internal/orders/handler"
	"lavanderia_backend/internal/orders/repository"
	"lavanderia_backend/internal/orders/service"
	"lavanderia_backend/platform/logger"
	"lavanderia_backend/platform/validator"
)

// Module is the orders module implementing http.Module.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// NewModule creates the orders module with its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	catalog service.ServiceCatalog,
	customers service.CustomerAccounts,
	bus events.Bus,
	taxRate float64,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, customers, bus, taxRate, log)

	return &Module{
		svc:     svc,
		handler: handler.New(svc, val),
	}
}

// Service exposes the order workflow to other modules and the scheduler.
func (m *Module) Service() *service.Service {
	return m.svc
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes registers order endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.Protected.Group("/orders")
	{
		orders.GET("", m.handler.List)
		orders.POST("", m.handler.Create)
		orders.GET("/:id", m.handler.GetByID)
		orders.PATCH("/:id", m.handler.Update)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
