// Package handler defines the HTTP handlers exposed by the reservation
// engine.  All handlers assume identity and role middleware have
// already run; they translate ledger results and sentinel errors into
// HTTP responses and perform no business logic of their own.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// getActorID extracts the authenticated actor's identity from the echo
// context, where the Identity middleware stored it.
func getActorID(c echo.Context) (string, error) {
	v, ok := c.Get("actor_id").(string)
	if !ok || v == "" {
		return "", errors.New("missing actor_id in context")
	}
	return v, nil
}
