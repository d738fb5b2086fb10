package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/queue"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
)

// VendorHandler serves the vendor-facing booking flow: hold a stall,
// confirm the hold into a reservation, cancel, and list own
// reservations.
type VendorHandler struct {
	Ledger   *ledger.Ledger
	Registry *registry.Registry
}

// NewVendorHandler constructs a VendorHandler.  Dependencies must be
// non-nil.
func NewVendorHandler(l *ledger.Ledger, r *registry.Registry) *VendorHandler {
	if l == nil || r == nil {
		panic("nil dependency passed to NewVendorHandler")
	}
	return &VendorHandler{Ledger: l, Registry: r}
}

// HoldStall handles POST /v1/stalls/:id/hold.  The optional JSON body
// may carry a "notes" field.  On success it returns 201 Created with
// the new hold including its expiry timestamp.  A stall that already
// has an occupying reservation yields 409; an unknown stall 404.
func (h *VendorHandler) HoldStall(c echo.Context) error {
	vendorID, err := getActorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stallID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || stallID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid stall id"})
	}
	var body struct {
		Notes string `json:"notes"`
	}
	// body is optional; ignore bind errors for an empty payload
	_ = c.Bind(&body)

	res, err := h.Ledger.RequestHold(c.Request().Context(), stallID, vendorID, body.Notes)
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
	case errors.Is(err, ledger.ErrStallNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "stall not found"})
	case errors.Is(err, ledger.ErrStallUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "stall unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to hold stall"})
	}
}

// ConfirmReservation handles POST /v1/reservations/:id/confirm.  It
// finalises the caller's hold and returns the reservation carrying its
// verification token, which the client renders as a QR code.  An
// expired hold yields 410 Gone; the stall must be held again from
// scratch.
func (h *VendorHandler) ConfirmReservation(c echo.Context) error {
	vendorID, err := getActorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID := c.Param("id")
	if reservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	res, err := h.Ledger.Confirm(c.Request().Context(), reservationID, vendorID)
	switch {
	case err == nil:
		// confirmation event for the downstream email/QR pipeline;
		// failures are logged inside and never affect the booking
		ev := queue.ReservationConfirmedEvent{
			ReservationID: res.ID,
			StallID:       res.StallID,
			VendorID:      res.VendorID,
			ConfirmedAt:   res.ConfirmedAt.UTC().Format(time.RFC3339),
		}
		if stall, ok := h.Registry.Get(res.StallID); ok {
			ev.StallName = stall.Name
			ev.PriceCents = stall.PriceCents
		}
		go func() { _ = queue.PublishConfirmed(context.Background(), ev) }()
		return c.JSON(http.StatusOK, echo.Map{"reservation": res})
	case errors.Is(err, ledger.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, ledger.ErrNotOwner):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, ledger.ErrHoldExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	case errors.Is(err, ledger.ErrAlreadyTerminal):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already settled"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to confirm reservation"})
	}
}

// CancelReservation handles DELETE /v1/reservations/:id for both
// vendors and employees (force release).  The stall becomes available
// to other vendors immediately.
func (h *VendorHandler) CancelReservation(c echo.Context) error {
	actorID, err := getActorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	reservationID := c.Param("id")
	if reservationID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	_, err = h.Ledger.Cancel(c.Request().Context(), reservationID, actorID)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, ledger.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, ledger.ErrAlreadyTerminal):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already settled"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel reservation"})
	}
}

// ListReservations handles GET /v1/my-reservations.  It returns all of
// the caller's reservations, newest first, including terminal ones.
func (h *VendorHandler) ListReservations(c echo.Context) error {
	vendorID, err := getActorID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": h.Ledger.ReservationsFor(vendorID)})
}
