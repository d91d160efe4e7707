package checkout_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-warung/internal/checkout"
	"github.com/noah-isme/backend-warung/internal/payment"
)

func newTestHandler(t *testing.T) (*checkout.Handler, testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return &checkout.Handler{Svc: env.svc, Validate: validator.New()}, env
}

func TestQuoteEndpoint(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"lines":[{"itemId":"set-meal","quantity":1}]}`
	rec := httptest.NewRecorder()
	h.Quote(rec, httptest.NewRequest(http.MethodPost, "/cart/quote", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Subtotal json.Number `json:"subtotal"`
			Tax      json.Number `json:"tax"`
			Total    json.Number `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "10.00", resp.Data.Subtotal.String())
	require.Equal(t, "1.30", resp.Data.Tax.String())
	require.Equal(t, "11.30", resp.Data.Total.String())
}

func TestCheckoutEndpointValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	// No lines at all.
	rec := httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"customer":{"name":"Dina","phone":"555-0101"}}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing customer phone.
	rec = httptest.NewRecorder()
	body := `{"lines":[{"itemId":"set-meal","quantity":1}],"customer":{"name":"Dina"}}`
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed JSON.
	rec = httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{"lines":`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutEndpointFlow(t *testing.T) {
	h, env := newTestHandler(t)

	open := `{"lines":[{"itemId":"set-meal","quantity":1}],"customer":{"name":"Dina","phone":"555-0101"}}`
	rec := httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(open)))
	require.Equal(t, http.StatusOK, rec.Code)

	var opened struct {
		Data struct {
			PaymentIntent *payment.Intent `json:"paymentIntent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opened))
	require.NotNil(t, opened.Data.PaymentIntent)
	require.True(t, env.gateway.Settle(opened.Data.PaymentIntent.ID))

	confirm := `{"lines":[{"itemId":"set-meal","quantity":1}],"customer":{"name":"Dina","phone":"555-0101"},"paymentReference":"` + opened.Data.PaymentIntent.ID + `"}`
	rec = httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(confirm)))
	require.Equal(t, http.StatusCreated, rec.Code)

	// The duplicate confirmation replays with 200, not 201.
	rec = httptest.NewRecorder()
	h.Checkout(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(confirm)))
	require.Equal(t, http.StatusOK, rec.Code)
}
