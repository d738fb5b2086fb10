package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
	"github.com/iliyamo/exhibition-stall-reservation/internal/model"
	"github.com/iliyamo/exhibition-stall-reservation/internal/registry"
	"github.com/iliyamo/exhibition-stall-reservation/internal/token"
)

func testDeps(t *testing.T) (*ledger.Ledger, *registry.Registry) {
	t.Helper()
	reg, err := registry.New([]model.Stall{
		{ID: 1, Name: "A-1", Size: model.SizeSmall, PriceCents: 500000},
		{ID: 2, Name: "A-2", Size: model.SizeMedium, PriceCents: 900000},
	})
	require.NoError(t, err)
	issuer, err := token.NewIssuer("test-secret", nil)
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return ledger.New(reg, ledger.NewMemoryStore(), issuer, ledger.Config{Now: clock}), reg
}

// request builds an echo context for a handler test, mimicking what the
// Identity middleware would have stored for the given actor.
func request(e *echo.Echo, method, target, body, actorID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actorID != "" {
		c.Set("actor_id", actorID)
	}
	return c, rec
}

func decodeReservation(t *testing.T, rec *httptest.ResponseRecorder) model.Reservation {
	t.Helper()
	var body struct {
		Reservation model.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Reservation
}

func TestHoldStall(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	c, rec := request(e, http.MethodPost, "/v1/stalls/1/hold", `{"notes":"near entrance"}`, "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.HoldStall(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	res := decodeReservation(t, rec)
	assert.Equal(t, model.StatusHeld, res.Status)
	assert.Equal(t, uint64(1), res.StallID)
	assert.Equal(t, "near entrance", res.Notes)
	assert.False(t, res.HoldExpiresAt.IsZero())
}

func TestHoldStallConflict(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	c, rec := request(e, http.MethodPost, "/v1/stalls/1/hold", "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.HoldStall(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = request(e, http.MethodPost, "/v1/stalls/1/hold", "", "vendor-b")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.HoldStall(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHoldStallBadInput(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	// unknown stall
	c, rec := request(e, http.MethodPost, "/v1/stalls/99/hold", "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.HoldStall(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unparseable stall id
	c, rec = request(e, http.MethodPost, "/v1/stalls/abc/hold", "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.HoldStall(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no identity in context
	c, rec = request(e, http.MethodPost, "/v1/stalls/1/hold", "", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.HoldStall(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfirmReservation(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	held, err := led.RequestHold(context.Background(), 1, "vendor-a", "")
	require.NoError(t, err)

	c, rec := request(e, http.MethodPost, "/v1/reservations/"+held.ID+"/confirm", "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues(held.ID)
	require.NoError(t, h.ConfirmReservation(c))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decodeReservation(t, rec)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.NotEmpty(t, res.VerificationToken)
}

func TestConfirmReservationForbidden(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	held, err := led.RequestHold(context.Background(), 1, "vendor-a", "")
	require.NoError(t, err)

	c, rec := request(e, http.MethodPost, "/v1/reservations/"+held.ID+"/confirm", "", "vendor-b")
	c.SetParamNames("id")
	c.SetParamValues(held.ID)
	require.NoError(t, h.ConfirmReservation(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCancelReservation(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	held, err := led.RequestHold(context.Background(), 1, "vendor-a", "")
	require.NoError(t, err)

	c, rec := request(e, http.MethodDelete, "/v1/reservations/"+held.ID, "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues(held.ID)
	require.NoError(t, h.CancelReservation(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// already cancelled
	c, rec = request(e, http.MethodDelete, "/v1/reservations/"+held.ID, "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues(held.ID)
	require.NoError(t, h.CancelReservation(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// unknown id
	c, rec = request(e, http.MethodDelete, "/v1/reservations/nope", "", "vendor-a")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	require.NoError(t, h.CancelReservation(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReservations(t *testing.T) {
	led, reg := testDeps(t)
	h := NewVendorHandler(led, reg)
	e := echo.New()

	_, err := led.RequestHold(context.Background(), 1, "vendor-a", "")
	require.NoError(t, err)
	_, err = led.RequestHold(context.Background(), 2, "vendor-b", "")
	require.NoError(t, err)

	c, rec := request(e, http.MethodGet, "/v1/my-reservations", "", "vendor-a")
	require.NoError(t, h.ListReservations(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []model.Reservation `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "vendor-a", body.Items[0].VendorID)
}
