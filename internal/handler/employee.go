package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/queue"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
	"github.com/iliyamo/exhibition-stall-reservation/internal/token"
)

// EmployeeHandler serves the venue-side operations: consuming QR
// verification tokens and inspecting floor occupancy.
type EmployeeHandler struct {
	Ledger   *ledger.Ledger
	Registry *registry.Registry
}

// NewEmployeeHandler constructs an EmployeeHandler.  Dependencies must
// be non-nil.
func NewEmployeeHandler(l *ledger.Ledger, r *registry.Registry) *EmployeeHandler {
	if l == nil || r == nil {
		panic("nil dependency passed to NewEmployeeHandler")
	}
	return &EmployeeHandler{Ledger: l, Registry: r}
}

// CheckIn handles POST /v1/check-in.  The body carries the token
// scanned from a vendor's QR code.  The first presentation transitions
// the reservation to checked_in; any repeat yields 409 with an
// "already checked in" error and changes nothing.
func (h *EmployeeHandler) CheckIn(c echo.Context) error {
	if _, err := getActorID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil || body.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	res, err := h.Ledger.CheckIn(c.Request().Context(), body.Token)
	switch {
	case err == nil:
		ev := queue.ReservationCheckedInEvent{
			ReservationID: res.ID,
			StallID:       res.StallID,
			VendorID:      res.VendorID,
			CheckedInAt:   res.CheckedInAt.UTC().Format(time.RFC3339),
		}
		if stall, ok := h.Registry.Get(res.StallID); ok {
			ev.StallName = stall.Name
		}
		go func() { _ = queue.PublishCheckedIn(context.Background(), ev) }()
		return c.JSON(http.StatusOK, echo.Map{"reservation": res})
	case errors.Is(err, token.ErrInvalidToken):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid token"})
	case errors.Is(err, ledger.ErrAlreadyCheckedIn):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in"})
	case errors.Is(err, ledger.ErrNotConfirmed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation not confirmed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check in"})
	}
}

// Occupancy handles GET /v1/stalls/occupancy.  Unlike the public
// availability endpoint, this view includes who holds each occupied
// stall and the reservation's status, for staff walking the floor.
func (h *EmployeeHandler) Occupancy(c echo.Context) error {
	if _, err := getActorID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Ledger.Availability()})
}
