// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/exhibition-stall-reservation/internal/config"
	"github.com/iliyamo/exhibition-stall-reservation/internal/handler"
	"github.com/iliyamo/exhibition-stall-reservation/internal/middleware"
)

// Register wires every route of the reservation engine onto the
// provided Echo instance.
//
//	GET  /healthz                        liveness probe
//	GET  /v1/stalls                      public floor availability
//	POST /v1/stalls/:id/hold             vendor: hold a stall
//	POST /v1/reservations/:id/confirm    vendor: confirm a hold
//	DELETE /v1/reservations/:id          vendor or employee: cancel/release
//	GET  /v1/my-reservations             vendor: own reservations
//	POST /v1/check-in                    employee: consume a QR token
//	GET  /v1/stalls/occupancy            employee: occupancy with vendors
//
// The rate limiter guards the hold endpoint only; reads and the rest of
// the booking flow are naturally bounded by the per-stall arbitration.
func Register(e *echo.Echo, v *handler.VendorHandler, emp *handler.EmployeeHandler, pub *handler.PublicHandler,
	identitySecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {

	e.GET("/healthz", handler.Health)
	e.GET("/v1/stalls", pub.Availability)

	auth := e.Group("/v1")
	auth.Use(middleware.Identity(identitySecret))

	vendor := auth.Group("", middleware.RequireRole(middleware.RoleVendor))
	vendor.POST("/stalls/:id/hold", v.HoldStall, middleware.RateLimit(rlCfg, rdb))
	vendor.POST("/reservations/:id/confirm", v.ConfirmReservation)
	vendor.GET("/my-reservations", v.ListReservations)

	employee := auth.Group("", middleware.RequireRole(middleware.RoleEmployee))
	employee.POST("/check-in", emp.CheckIn)
	employee.GET("/stalls/occupancy", emp.Occupancy)

	// cancellation is open to both the owning vendor and staff
	auth.DELETE("/reservations/:id", v.CancelReservation,
		middleware.RequireRole(middleware.RoleVendor, middleware.RoleEmployee))
}
