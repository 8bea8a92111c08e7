package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/localpros/backend/internal/models"
	"github.com/localpros/backend/internal/processor"
)

var bookingColumns = []string{
	"id", "customer_id", "provider_id", "service_name", "price_type",
	"base_price", "quoted_price", "currency", "status", "payment_ref",
	"checkout_ref", "scheduled_at", "dispute_reason", "created_at", "updated_at",
}

func bookingRow(id, status string, basePrice int64) *sqlmock.Rows {
	return sqlmock.NewRows(bookingColumns).
		AddRow(id, "cust_1", "prov_1", "Lawn mowing", "fixed", basePrice, nil, "NZD", status, nil, nil, nil, nil, time.Now(), time.Now())
}

func newBookingTestService(t *testing.T) (*BookingService, sqlmock.Sqlmock, *MockProcessor, *MockNotifier) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mockProcessor := &MockProcessor{}
	mockNotifier := &MockNotifier{}
	// Notifications run in goroutines after the response is written; the
	// tests only care that an unexpected call never panics the suite.
	mockNotifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	cfg := testPlatformConfig()
	service := NewBookingService(db, cfg, NewFeeCalculator(cfg), NewIdempotencyService(nil), mockProcessor, mockNotifier)
	return service, dbMock, mockProcessor, mockNotifier
}

func bookingRouter(service *BookingService) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/bookings", service.CreateBooking)
	r.Get("/bookings", service.ListBookings)
	r.Get("/bookings/{bookingId}", service.GetBooking)
	r.Post("/bookings/{bookingId}/accept", service.AcceptBooking)
	r.Post("/bookings/{bookingId}/decline", service.DeclineBooking)
	r.Post("/bookings/{bookingId}/cancel", service.CancelBooking)
	r.Post("/bookings/{bookingId}/quote", service.SetQuote)
	r.Post("/bookings/{bookingId}/reschedule", service.RescheduleBooking)
	r.Post("/bookings/{bookingId}/pay", service.PayBooking)
	r.Post("/bookings/{bookingId}/complete", service.CompleteBooking)
	r.Post("/bookings/{bookingId}/dispute", service.DisputeBooking)
	r.Post("/bookings/{bookingId}/resolve", service.ResolveDispute)
	return r
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), "userID", userID))
}

func TestBookingService_CreateBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("creates a pending booking", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT id FROM providers WHERE id = \\$1").
			WithArgs("prov_1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prov_1"))
		dbMock.ExpectExec("INSERT INTO bookings").
			WithArgs(sqlmock.AnyArg(), "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), "NZD", "pending", nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_new", "pending", 10000))

		body := []byte(`{"provider_id":"prov_1","service_name":"Lawn mowing","price_type":"fixed","base_price":10000,"currency":"NZD"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "pending", booking.Status)
		assert.Equal(t, "cust_1", booking.CustomerID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("replays an identical submission without re-executing", func(t *testing.T) {
		body := []byte(`{"provider_id":"prov_1","service_name":"Lawn mowing","price_type":"fixed","base_price":10000,"currency":"NZD"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		// No database expectations: the stored response is replayed.
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replay"))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown provider", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT id FROM providers WHERE id = \\$1").
			WithArgs("prov_missing").
			WillReturnError(sql.ErrNoRows)

		body := []byte(`{"provider_id":"prov_missing","service_name":"Lawn mowing","price_type":"fixed","base_price":10000,"currency":"NZD"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("fixed price below the chargeable minimum", func(t *testing.T) {
		dbMock.ExpectQuery("SELECT id FROM providers WHERE id = \\$1").
			WithArgs("prov_1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("prov_1"))

		body := []byte(`{"provider_id":"prov_1","service_name":"Tiny job","price_type":"fixed","base_price":50,"currency":"NZD"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid request body", func(t *testing.T) {
		req := asUser(httptest.NewRequest("POST", "/bookings", bytes.NewBuffer([]byte("invalid"))), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing user context", func(t *testing.T) {
		body := []byte(`{"provider_id":"prov_1","service_name":"Lawn mowing","price_type":"fixed","base_price":10000,"currency":"NZD"}`)
		req := httptest.NewRequest("POST", "/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestBookingService_AcceptBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("provider accepts a pending booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_1", "pending", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND status = \\$3").
			WithArgs("accepted", "bk_1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_1", "accepted", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_1/accept", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "accepted", booking.Status)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("customer cannot accept", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_2", "pending", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_2/accept", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("paid booking cannot be accepted", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_3", "paid", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_3/accept", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "paid")
		assert.Contains(t, w.Body.String(), "accepted")
	})

	t.Run("lost race reports a conflict", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_4", "pending", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs("accepted", "bk_4", "pending").
			WillReturnResult(sqlmock.NewResult(0, 0))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_4/accept", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnError(sql.ErrNoRows)

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_missing/accept", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("customer cancels a pending booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c1", "pending", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs("canceled_customer", "bk_c1", "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c1", "canceled_customer", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_c1/cancel", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "canceled_customer", booking.Status)
	})

	t.Run("provider cancels an accepted booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c2", "accepted", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs("canceled_provider", "bk_c2", "accepted").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c2", "canceled_provider", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_c2/cancel", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("provider cannot cancel before accepting", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c3", "pending", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_c3/cancel", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("paid booking cannot be canceled", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c4", "paid", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_c4/cancel", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_c5", "pending", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_c5/cancel", nil), "someone_else")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBookingService_SetQuote(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("provider quotes an open booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_q1", "cust_1", "prov_1", "Fence repair", "quote", int64(0), nil, "NZD", "pending", nil, nil, nil, nil, time.Now(), time.Now()))
		dbMock.ExpectExec("UPDATE bookings SET quoted_price = \\$1").
			WithArgs(int64(25000), "bk_q1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_q1", "cust_1", "prov_1", "Fence repair", "quote", int64(0), int64(25000), "NZD", "pending", nil, nil, nil, nil, time.Now(), time.Now()))

		body := []byte(`{"quoted_price":25000}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_q1/quote", bytes.NewBuffer(body)), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, int64(25000), *booking.QuotedPrice)
	})

	t.Run("price is locked once a payment attempt exists", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_q2", "accepted", 10000))
		dbMock.ExpectExec("UPDATE bookings SET quoted_price = \\$1").
			WithArgs(int64(30000), "bk_q2").
			WillReturnResult(sqlmock.NewResult(0, 0))

		body := []byte(`{"quoted_price":30000}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_q2/quote", bytes.NewBuffer(body)), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("quote below minimum rejected", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_q3", "pending", 10000))

		body := []byte(`{"quoted_price":50}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_q3/quote", bytes.NewBuffer(body)), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingService_PayBooking(t *testing.T) {
	t.Run("opens a checkout session for an accepted booking", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_p1", "accepted", 10000))
		mockProcessor.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p processor.CheckoutParams) bool {
			return p.Amount == 10500 && p.ServiceAmount == 10000 && p.BookingID == "bk_p1" && p.PaymentKind == "full"
		})).Return(&processor.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil)
		dbMock.ExpectExec("UPDATE bookings SET checkout_ref = \\$1, checkout_url = \\$2").
			WithArgs("cs_1", "https://checkout.test/cs_1", "bk_p1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_p1/pay", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var session models.PaymentSession
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, int64(10000), session.Amount)
		assert.Equal(t, int64(500), session.CustomerFee)
		assert.Equal(t, int64(10500), session.Total)
		assert.Equal(t, "cs_1", session.CheckoutRef)
		mockProcessor.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("quote booking without a quote is not payable", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_p2", "cust_1", "prov_1", "Fence repair", "quote", int64(0), nil, "NZD", "accepted", nil, nil, nil, nil, time.Now(), time.Now()))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_p2/pay", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockProcessor.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("pending booking is not payable", func(t *testing.T) {
		service, dbMock, _, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_p3", "pending", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_p3/pay", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("only the customer can pay", func(t *testing.T) {
		service, dbMock, _, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_p4", "accepted", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_p4/pay", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("processor failure maps to bad gateway", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_p5", "accepted", 10000))
		mockProcessor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(nil, assert.AnError)

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_p5/pay", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("repeated pay request replays the first session", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_p6", "accepted", 10000))
		mockProcessor.On("CreateCheckoutSession", mock.Anything, mock.Anything).
			Return(&processor.CheckoutSession{ID: "cs_once", URL: "https://checkout.test/cs_once"}, nil).Once()
		dbMock.ExpectExec("UPDATE bookings SET checkout_ref = \\$1, checkout_url = \\$2").
			WithArgs("cs_once", "https://checkout.test/cs_once", "bk_p6").
			WillReturnResult(sqlmock.NewResult(0, 1))

		first := httptest.NewRecorder()
		router.ServeHTTP(first, asUser(httptest.NewRequest("POST", "/bookings/bk_p6/pay", nil), "cust_1"))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		router.ServeHTTP(second, asUser(httptest.NewRequest("POST", "/bookings/bk_p6/pay", nil), "cust_1"))

		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
		assert.Equal(t, first.Body.String(), second.Body.String())
		mockProcessor.AssertNumberOfCalls(t, "CreateCheckoutSession", 1)
	})
}

func TestBookingService_CompleteBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("provider completes a paid booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_d1", "paid", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs("completed", "bk_d1", "paid").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_d1", "completed", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_d1/complete", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unpaid booking cannot be completed", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_d2", "accepted", 10000))

		req := asUser(httptest.NewRequest("POST", "/bookings/bk_d2/complete", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBookingService_DisputeBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("customer disputes a paid booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_x1", "paid", 10000))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1, dispute_reason = \\$2").
			WithArgs("disputed", "No-show on the day", "bk_x1", "paid").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_x1", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "disputed", "pi_1", nil, nil, "No-show on the day", time.Now(), time.Now()))

		body := []byte(`{"reason":"No-show on the day"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_x1/dispute", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "disputed", booking.Status)
	})

	t.Run("pending booking cannot be disputed", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_x2", "pending", 10000))

		body := []byte(`{"reason":"changed my mind"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_x2/dispute", bytes.NewBuffer(body)), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBookingService_ResolveDispute(t *testing.T) {
	t.Run("refund outcome issues a processor refund", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_r1", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "disputed", "pi_1", nil, nil, "No-show", time.Now(), time.Now()))
		// Full refund covers the service amount plus the customer fee.
		mockProcessor.On("CreateRefund", mock.Anything, "pi_1", int64(10500)).
			Return(&processor.Refund{ID: "re_1", PaymentRef: "pi_1", Amount: 10500, Status: "pending"}, nil)
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_r1", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "disputed", "pi_1", nil, nil, "No-show", time.Now(), time.Now()))

		body := []byte(`{"outcome":"refunded"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_r1/resolve", bytes.NewBuffer(body)), "admin_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockProcessor.AssertExpectations(t)
		// The booking stays disputed until the refund webhook lands.
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "disputed", booking.Status)
	})

	t.Run("refund above the refundable balance is rejected", func(t *testing.T) {
		service, dbMock, mockProcessor, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_r2", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "disputed", "pi_2", nil, nil, "No-show", time.Now(), time.Now()))

		body := []byte(`{"outcome":"refunded","refund_amount":10501}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_r2/resolve", bytes.NewBuffer(body)), "admin_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockProcessor.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid outcome restores the booking directly", func(t *testing.T) {
		service, dbMock, _, _ := newBookingTestService(t)
		router := bookingRouter(service)

		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_r3", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "disputed", "pi_3", nil, nil, "No-show", time.Now(), time.Now()))
		dbMock.ExpectExec("UPDATE bookings SET status = \\$1").
			WithArgs("paid", "bk_r3", "disputed").
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(sqlmock.NewRows(bookingColumns).
				AddRow("bk_r3", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "paid", "pi_3", nil, nil, "No-show", time.Now(), time.Now()))

		body := []byte(`{"outcome":"paid"}`)
		req := asUser(httptest.NewRequest("POST", "/bookings/bk_r3/resolve", bytes.NewBuffer(body)), "admin_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var booking models.Booking
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
		assert.Equal(t, "paid", booking.Status)
	})
}

func TestBookingService_GetBooking(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("party can read the booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_g1", "pending", 10000))

		req := asUser(httptest.NewRequest("GET", "/bookings/bk_g1", nil), "prov_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("stranger cannot read the booking", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE id = \\$1").
			WillReturnRows(bookingRow("bk_g2", "pending", 10000))

		req := asUser(httptest.NewRequest("GET", "/bookings/bk_g2", nil), "someone_else")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestBookingService_ListBookings(t *testing.T) {
	service, dbMock, _, _ := newBookingTestService(t)
	router := bookingRouter(service)

	t.Run("lists bookings for either side", func(t *testing.T) {
		rows := sqlmock.NewRows(bookingColumns).
			AddRow("bk_l1", "cust_1", "prov_1", "Lawn mowing", "fixed", int64(10000), nil, "NZD", "pending", nil, nil, nil, nil, time.Now(), time.Now()).
			AddRow("bk_l2", "cust_1", "prov_2", "Gutter clean", "fixed", int64(8000), nil, "NZD", "completed", nil, nil, nil, nil, time.Now(), time.Now())
		dbMock.ExpectQuery("FROM bookings WHERE \\(customer_id = \\$1 OR provider_id = \\$1\\)").
			WithArgs("cust_1").
			WillReturnRows(rows)

		req := asUser(httptest.NewRequest("GET", "/bookings", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(2), response["count"])
	})

	t.Run("status filter narrows the query", func(t *testing.T) {
		dbMock.ExpectQuery("FROM bookings WHERE \\(customer_id = \\$1 OR provider_id = \\$1\\) AND status = \\$2").
			WithArgs("cust_1", "completed").
			WillReturnRows(sqlmock.NewRows(bookingColumns))

		req := asUser(httptest.NewRequest("GET", "/bookings?status=completed", nil), "cust_1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(0), response["count"])
	})
}
