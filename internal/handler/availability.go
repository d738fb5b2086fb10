package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
)

// PublicHandler exposes the unauthenticated read side used by the
// floor-map UI.
type PublicHandler struct {
	Ledger *ledger.Ledger
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(l *ledger.Ledger) *PublicHandler {
	if l == nil {
		panic("nil ledger passed to NewPublicHandler")
	}
	return &PublicHandler{Ledger: l}
}

// publicStall is the sanitized availability entry returned to guests:
// static stall attributes plus a reserved flag, with the occupying
// vendor's identity withheld.
type publicStall struct {
	model.Stall
	Reserved bool `json:"is_reserved"`
}

// Availability handles GET /v1/stalls.  The response reflects a
// consistent committed snapshot: a stall never shows as free while an
// occupying reservation exists for it.
func (h *PublicHandler) Availability(c echo.Context) error {
	view := h.Ledger.Availability()
	items := make([]publicStall, 0, len(view))
	for _, entry := range view {
		items = append(items, publicStall{Stall: entry.Stall, Reserved: entry.Reserved})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
