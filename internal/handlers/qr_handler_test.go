package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/services"
)

func newQRTestRouter(t *testing.T) (*chi.Mux, sqlmock.Sqlmock, redismock.ClientMock) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client, redisMock := redismock.NewClientMock()
	cfg := &config.PlatformConfig{CheckoutQRTTL: 10 * time.Minute}

	handler := NewCheckoutQRHandler(services.NewCheckoutQRService(db, client, cfg))
	router := chi.NewRouter()
	router.Get("/bookings/{bookingId}/checkout-qr", handler.GetCheckoutQR)
	return router, dbMock, redisMock
}

func qrRequestAs(userID, bookingID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/bookings/"+bookingID+"/checkout-qr", nil)
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func TestCheckoutQRHandler_GetCheckoutQR(t *testing.T) {
	t.Run("serves the rendered image as png", func(t *testing.T) {
		router, dbMock, redisMock := newQRTestRouter(t)

		dbMock.ExpectQuery("SELECT customer_id, provider_id, status, checkout_ref, checkout_url").
			WithArgs("bk_1").
			WillReturnRows(sqlmock.NewRows([]string{"customer_id", "provider_id", "status", "checkout_ref", "checkout_url"}).
				AddRow("cust_1", "prov_1", "accepted", "cs_1", "https://checkout.test/cs_1"))
		redisMock.ExpectGet("checkoutqr:bk_1:cs_1").SetVal("png-bytes")

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, qrRequestAs("cust_1", "bk_1"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.Equal(t, "png-bytes", rec.Body.String())
	})

	t.Run("requires authentication", func(t *testing.T) {
		router, _, _ := newQRTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/bk_1/checkout-qr", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("conflict when no checkout session is open", func(t *testing.T) {
		router, dbMock, _ := newQRTestRouter(t)

		dbMock.ExpectQuery("SELECT customer_id, provider_id, status, checkout_ref, checkout_url").
			WithArgs("bk_2").
			WillReturnRows(sqlmock.NewRows([]string{"customer_id", "provider_id", "status", "checkout_ref", "checkout_url"}).
				AddRow("cust_1", "prov_1", "pending", nil, nil))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, qrRequestAs("cust_1", "bk_2"))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown booking is a 404", func(t *testing.T) {
		router, dbMock, _ := newQRTestRouter(t)

		dbMock.ExpectQuery("SELECT customer_id, provider_id, status, checkout_ref, checkout_url").
			WithArgs("bk_nope").
			WillReturnRows(sqlmock.NewRows([]string{"customer_id", "provider_id", "status", "checkout_ref", "checkout_url"}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, qrRequestAs("cust_1", "bk_nope"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stranger gets a 403", func(t *testing.T) {
		router, dbMock, _ := newQRTestRouter(t)

		dbMock.ExpectQuery("SELECT customer_id, provider_id, status, checkout_ref, checkout_url").
			WithArgs("bk_3").
			WillReturnRows(sqlmock.NewRows([]string{"customer_id", "provider_id", "status", "checkout_ref", "checkout_url"}).
				AddRow("cust_1", "prov_1", "accepted", "cs_3", "https://checkout.test/cs_3"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, qrRequestAs("intruder", "bk_3"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
