package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/models"
	"github.com/localpros/backend/internal/notify"
	"github.com/localpros/backend/internal/processor"
)

// BookingService owns the booking lifecycle. Every mutation runs the same
// pipeline: idempotency wrap, transition guard, conditional status write,
// best-effort notification, fresh projection back to the caller. There are no
// in-process locks; concurrent writers are serialized by the conditional
// updates alone.
type BookingService struct {
	db        *sql.DB
	cfg       *config.PlatformConfig
	fees      *FeeCalculator
	idem      *IdempotencyService
	processor processor.Client
	notifier  notify.Notifier
	validator *ValidationHelper
}

func NewBookingService(db *sql.DB, cfg *config.PlatformConfig, fees *FeeCalculator, idem *IdempotencyService, pc processor.Client, notifier notify.Notifier) *BookingService {
	return &BookingService{
		db:        db,
		cfg:       cfg,
		fees:      fees,
		idem:      idem,
		processor: pc,
		notifier:  notifier,
		validator: NewValidationHelper(),
	}
}

func actorFrom(r *http.Request) (string, bool) {
	actorID, ok := r.Context().Value("userID").(string)
	return actorID, ok && actorID != ""
}

// writeServiceError maps the typed failures of the booking and earnings paths
// onto HTTP statuses. Anything unrecognized is a 500 with the detail logged,
// never leaked.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsInvalidTransition(err):
		SendErrorResponse(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, models.ErrAwaitingQuote):
		SendErrorResponse(w, "Provider has not quoted this job yet", http.StatusConflict, nil)
	case errors.Is(err, models.ErrAmountBelowMinimum):
		SendErrorResponse(w, "Amount is below the chargeable minimum", http.StatusBadRequest, nil)
	case errors.Is(err, models.ErrAmountExceedsRefundable):
		SendErrorResponse(w, "Amount exceeds the refundable balance", http.StatusBadRequest, nil)
	case errors.Is(err, models.ErrDuplicateSubmission):
		w.Header().Set("Retry-After", "1")
		SendErrorResponse(w, "Request already in flight, retry shortly", http.StatusConflict, nil)
	case errors.Is(err, models.ErrBookingNotFound):
		SendErrorResponse(w, "Booking not found", http.StatusNotFound, nil)
	case errors.Is(err, models.ErrProviderNotFound):
		SendErrorResponse(w, "Provider not found", http.StatusNotFound, nil)
	case errors.Is(err, models.ErrNotBookingParty):
		SendErrorResponse(w, "You are not a party to this booking", http.StatusForbidden, nil)
	case errors.Is(err, models.ErrPriceLocked):
		SendErrorResponse(w, "Price can no longer be changed on this booking", http.StatusConflict, nil)
	case errors.Is(err, models.ErrBookingClosed):
		SendErrorResponse(w, "Booking is no longer open to changes", http.StatusConflict, nil)
	case errors.Is(err, models.ErrConcurrentUpdate):
		SendErrorResponse(w, "Booking changed while processing, retry the request", http.StatusConflict, nil)
	case errors.Is(err, models.ErrNoActiveCheckout):
		SendErrorResponse(w, "Booking has no active checkout session", http.StatusConflict, nil)
	case errors.Is(err, models.ErrKYCRequired):
		SendErrorResponse(w, "Identity verification is required first", http.StatusForbidden, nil)
	case errors.Is(err, models.ErrUpstreamPayment):
		SendErrorResponse(w, "Payment processor is unavailable, try again later", http.StatusBadGateway, nil)
	default:
		log.Printf("[BOOKING] Unhandled error: %v", err)
		SendErrorResponse(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

func (bs *BookingService) respondMutation(w http.ResponseWriter, body []byte, replayed bool, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if replayed {
		w.Header().Set("Idempotent-Replay", "true")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// CreateBooking opens a pending booking against a provider
// @Summary Create a booking
// @Description Open a new pending booking for a provider's service
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body models.CreateBookingRequest true "Booking intent"
// @Success 200 {object} models.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /bookings [post]
func (bs *BookingService) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	var req models.CreateBookingRequest
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := bs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// No booking id exists yet, so the payload hash is the dedup key.
	key := IdempotencyKeyFromPayload("booking.create", actorID, payload)
	body, replayed, err := bs.idem.Do(r.Context(), key, bs.cfg.IdempotencyTTLDefault, func() ([]byte, error) {
		return bs.createBooking(r.Context(), actorID, req)
	})
	bs.respondMutation(w, body, replayed, err)
}

func (bs *BookingService) createBooking(ctx context.Context, actorID string, req models.CreateBookingRequest) ([]byte, error) {
	var providerID string
	err := bs.db.QueryRowContext(ctx, `SELECT id FROM providers WHERE id = $1`, req.ProviderID).Scan(&providerID)
	if err == sql.ErrNoRows {
		return nil, models.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.PriceType == models.PriceTypeFixed && req.BasePrice < bs.cfg.MinChargeAmount {
		return nil, models.ErrAmountBelowMinimum
	}

	bookingID := uuid.New().String()
	_, err = bs.db.ExecContext(ctx, `
		INSERT INTO bookings (id, customer_id, provider_id, service_name, price_type, base_price, currency, status, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())`,
		bookingID, actorID, req.ProviderID, req.ServiceName, req.PriceType, req.BasePrice, req.Currency, models.BookingStatusPending, req.ScheduledAt)
	if err != nil {
		return nil, err
	}

	log.Printf("[BOOKING] Created booking %s for provider %s (%s)", bookingID, req.ProviderID, req.ServiceName)
	go bs.sendNotification(req.ProviderID, notify.KindBookingCreated, bookingID, "New booking request: "+req.ServiceName)

	return bs.bookingProjection(ctx, bookingID)
}

// GetBooking returns one booking visible to the actor
// @Summary Get a booking
// @Description Fetch a single booking the actor is a party to
// @Tags bookings
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} ErrorResponse
// @Router /bookings/{bookingId} [get]
func (bs *BookingService) GetBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	booking, err := bs.fetchBooking(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if booking.CustomerID != actorID && booking.ProviderID != actorID {
		writeServiceError(w, models.ErrNotBookingParty)
		return
	}

	RespondJSON(w, http.StatusOK, booking)
}

// ListBookings returns the actor's bookings, newest first
// @Summary List bookings
// @Description List bookings where the actor is the customer or the provider
// @Tags bookings
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{bookings=[]models.Booking,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /bookings [get]
func (bs *BookingService) ListBookings(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit, offset := pageParams(r, 20, 100)

	query := `
		SELECT id, customer_id, provider_id, service_name, price_type, base_price, quoted_price, currency, status, payment_ref, checkout_ref, scheduled_at, dispute_reason, created_at, updated_at
		FROM bookings
		WHERE (customer_id = $1 OR provider_id = $1)`
	args := []any{actorID}

	if status := r.URL.Query().Get("status"); status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit) + ` OFFSET ` + strconv.Itoa(offset)

	rows, err := bs.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		log.Printf("[BOOKING] List query failed for actor %s: %v", actorID, err)
		SendErrorResponse(w, "Failed to fetch bookings", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var b models.Booking
		if err := scanBooking(rows, &b); err != nil {
			log.Printf("[BOOKING] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch bookings", http.StatusInternalServerError, nil)
			return
		}
		bookings = append(bookings, b)
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// AcceptBooking moves a pending booking to accepted
// @Summary Accept a booking
// @Description Provider accepts a pending booking
// @Tags bookings
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/accept [post]
func (bs *BookingService) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	bs.runTransition(w, r, "booking.accept", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.ProviderID != actorID {
			return nil, models.ErrNotBookingParty
		}
		if err := bs.applyStatus(ctx, booking, models.BookingStatusAccepted); err != nil {
			return nil, err
		}

		go bs.sendNotification(booking.CustomerID, notify.KindBookingAccepted, booking.ID, "Your booking for "+booking.ServiceName+" was accepted")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// DeclineBooking declines a pending or accepted booking
// @Summary Decline a booking
// @Description Provider declines a booking before payment
// @Tags bookings
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/decline [post]
func (bs *BookingService) DeclineBooking(w http.ResponseWriter, r *http.Request) {
	bs.runTransition(w, r, "booking.decline", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.ProviderID != actorID {
			return nil, models.ErrNotBookingParty
		}
		if err := bs.applyStatus(ctx, booking, models.BookingStatusDeclined); err != nil {
			return nil, err
		}

		go bs.sendNotification(booking.CustomerID, notify.KindBookingDeclined, booking.ID, "Your booking for "+booking.ServiceName+" was declined")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// CancelBooking cancels a booking on behalf of either party
// @Summary Cancel a booking
// @Description Customer may cancel while pending or accepted, provider while accepted. Paid bookings go through the dispute path.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param cancellation body models.CancelRequest false "Optional reason"
// @Success 200 {object} models.Booking
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/cancel [post]
func (bs *BookingService) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req models.CancelRequest
	if r.ContentLength > 0 && !DecodeJSONBody(w, r, &req) {
		return
	}

	bs.runTransition(w, r, "booking.cancel", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		var target, counterparty string
		switch actorID {
		case booking.CustomerID:
			target = models.BookingStatusCanceledCustomer
			counterparty = booking.ProviderID
		case booking.ProviderID:
			target = models.BookingStatusCanceledProvider
			counterparty = booking.CustomerID
		default:
			return nil, models.ErrNotBookingParty
		}

		if err := bs.applyStatus(ctx, booking, target); err != nil {
			return nil, err
		}
		if req.Reason != "" {
			log.Printf("[BOOKING] Booking %s canceled by %s: %s", bookingID, actorID, req.Reason)
		}

		go bs.sendNotification(counterparty, notify.KindBookingCanceled, booking.ID, "Booking for "+booking.ServiceName+" was canceled")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// SetQuote records the provider's quoted price
// @Summary Quote a booking
// @Description Provider sets the quoted price for a quote-priced booking. Rejected once a payment attempt exists.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param quote body models.QuoteRequest true "Quoted price in cents"
// @Success 200 {object} models.Booking
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/quote [post]
func (bs *BookingService) SetQuote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := bs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	bs.runTransition(w, r, "booking.quote", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.ProviderID != actorID {
			return nil, models.ErrNotBookingParty
		}
		if req.QuotedPrice < bs.cfg.MinChargeAmount {
			return nil, models.ErrAmountBelowMinimum
		}

		// The price freezes the moment a payment attempt exists; the write
		// carries that condition so a racing checkout cannot slip through.
		res, err := bs.db.ExecContext(ctx, `
			UPDATE bookings SET quoted_price = $1, updated_at = NOW()
			WHERE id = $2 AND status IN ('pending', 'accepted') AND payment_ref IS NULL AND checkout_ref IS NULL`,
			req.QuotedPrice, bookingID)
		if err != nil {
			return nil, err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, models.ErrPriceLocked
		}

		go bs.sendNotification(booking.CustomerID, notify.KindQuoteSet, booking.ID, "Your booking for "+booking.ServiceName+" has been quoted")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// RescheduleBooking moves the scheduled time
// @Summary Reschedule a booking
// @Description Either party moves the scheduled time while the booking is still open
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param reschedule body models.RescheduleRequest true "New scheduled time"
// @Success 200 {object} models.Booking
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/reschedule [post]
func (bs *BookingService) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	var req models.RescheduleRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := bs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	bs.runTransition(w, r, "booking.reschedule", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		var counterparty string
		switch actorID {
		case booking.CustomerID:
			counterparty = booking.ProviderID
		case booking.ProviderID:
			counterparty = booking.CustomerID
		default:
			return nil, models.ErrNotBookingParty
		}

		res, err := bs.db.ExecContext(ctx, `
			UPDATE bookings SET scheduled_at = $1, updated_at = NOW()
			WHERE id = $2 AND status IN ('pending', 'accepted')`,
			req.ScheduledAt, bookingID)
		if err != nil {
			return nil, err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, models.ErrBookingClosed
		}

		go bs.sendNotification(counterparty, notify.KindBookingRescheduled, booking.ID, "Booking for "+booking.ServiceName+" was rescheduled")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// PayBooking opens a checkout session for an accepted booking
// @Summary Request payment
// @Description Create a processor checkout session for an accepted booking. The booking flips to paid when the processor confirms.
// @Tags bookings
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} models.PaymentSession
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /bookings/{bookingId}/pay [post]
func (bs *BookingService) PayBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	bookingID := chi.URLParam(r, "bookingId")

	key := IdempotencyKey("booking.pay", actorID, bookingID)
	body, replayed, err := bs.idem.Do(r.Context(), key, bs.cfg.IdempotencyTTLPayment, func() ([]byte, error) {
		return bs.payBooking(r.Context(), actorID, bookingID)
	})
	bs.respondMutation(w, body, replayed, err)
}

func (bs *BookingService) payBooking(ctx context.Context, actorID, bookingID string) ([]byte, error) {
	booking, err := bs.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != actorID {
		return nil, models.ErrNotBookingParty
	}

	// Paying is only legal from accepted; the guard names both states when not.
	if err := AssertTransition(booking.Status, models.BookingStatusPaid); err != nil {
		return nil, err
	}
	if booking.PriceType == models.PriceTypeQuote && booking.QuotedPrice == nil {
		return nil, models.ErrAwaitingQuote
	}

	amount := booking.PayableAmount()
	if amount < bs.cfg.MinChargeAmount {
		return nil, models.ErrAmountBelowMinimum
	}
	customerFee := bs.fees.CustomerFee(amount)
	total := amount + customerFee

	session, err := bs.processor.CreateCheckoutSession(ctx, processor.CheckoutParams{
		Amount:        total,
		Currency:      booking.Currency,
		BookingID:     booking.ID,
		ServiceAmount: amount,
		PaymentKind:   "full",
	})
	if err != nil {
		log.Printf("[PAYMENT] Checkout session for booking %s failed: %v", bookingID, err)
		return nil, models.ErrUpstreamPayment
	}

	// Attach the attempt only while still accepted; a concurrent transition
	// invalidates the session rather than the other way round.
	res, err := bs.db.ExecContext(ctx, `
		UPDATE bookings SET checkout_ref = $1, checkout_url = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'accepted'`,
		session.ID, session.URL, bookingID)
	if err != nil {
		return nil, err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, models.ErrConcurrentUpdate
	}

	log.Printf("[PAYMENT] Checkout session %s opened for booking %s (total %d %s)", session.ID, bookingID, total, booking.Currency)

	return json.Marshal(models.PaymentSession{
		BookingID:   booking.ID,
		CheckoutRef: session.ID,
		CheckoutURL: session.URL,
		Amount:      amount,
		CustomerFee: customerFee,
		Total:       total,
		Currency:    booking.Currency,
	})
}

// CompleteBooking marks a paid booking as completed
// @Summary Complete a booking
// @Description Provider marks the paid job as done, making it review-eligible
// @Tags bookings
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/complete [post]
func (bs *BookingService) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	bs.runTransition(w, r, "booking.complete", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.ProviderID != actorID {
			return nil, models.ErrNotBookingParty
		}
		if err := bs.applyStatus(ctx, booking, models.BookingStatusCompleted); err != nil {
			return nil, err
		}

		go bs.sendNotification(booking.CustomerID, notify.KindBookingCompleted, booking.ID, booking.ServiceName+" was marked as completed")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// DisputeBooking opens a dispute on a paid or completed booking
// @Summary Dispute a booking
// @Description Customer disputes a paid booking instead of canceling it, since money has already moved
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param dispute body models.DisputeRequest true "Dispute reason"
// @Success 200 {object} models.Booking
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/dispute [post]
func (bs *BookingService) DisputeBooking(w http.ResponseWriter, r *http.Request) {
	var req models.DisputeRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := bs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	bs.runTransition(w, r, "booking.dispute", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		booking, err := bs.fetchBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.CustomerID != actorID {
			return nil, models.ErrNotBookingParty
		}
		if err := AssertTransition(booking.Status, models.BookingStatusDisputed); err != nil {
			return nil, err
		}

		res, err := bs.db.ExecContext(ctx, `
			UPDATE bookings SET status = $1, dispute_reason = $2, updated_at = NOW()
			WHERE id = $3 AND status = $4`,
			models.BookingStatusDisputed, req.Reason, bookingID, booking.Status)
		if err != nil {
			return nil, err
		}
		if rows, _ := res.RowsAffected(); rows == 0 {
			return nil, models.ErrConcurrentUpdate
		}

		go bs.sendNotification(booking.ProviderID, notify.KindBookingDisputed, booking.ID, "Booking for "+booking.ServiceName+" is disputed")
		return bs.bookingProjection(ctx, bookingID)
	})
}

// ResolveDispute closes a dispute in favor of one party
// @Summary Resolve a dispute
// @Description Resolve a disputed booking. A refunded outcome issues a processor refund and the booking flips when the refund webhook lands; a paid outcome restores the booking directly.
// @Tags admin
// @Accept json
// @Produce json
// @Param bookingId path string true "Booking ID"
// @Param resolution body models.ResolveDisputeRequest true "Resolution outcome"
// @Success 200 {object} models.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{bookingId}/resolve [post]
func (bs *BookingService) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveDisputeRequest
	if !DecodeJSONBody(w, r, &req) {
		return
	}
	if err := bs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	bs.runTransition(w, r, "booking.resolve", func(ctx context.Context, actorID, bookingID string) ([]byte, error) {
		return bs.resolveDispute(ctx, bookingID, req)
	})
}

func (bs *BookingService) resolveDispute(ctx context.Context, bookingID string, req models.ResolveDisputeRequest) ([]byte, error) {
	booking, err := bs.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if req.Outcome == "paid" {
		if err := bs.applyStatus(ctx, booking, models.BookingStatusPaid); err != nil {
			return nil, err
		}
		go bs.sendNotification(booking.CustomerID, notify.KindBookingPaid, booking.ID, "Dispute on "+booking.ServiceName+" was resolved in the provider's favor")
		go bs.sendNotification(booking.ProviderID, notify.KindBookingPaid, booking.ID, "Dispute on "+booking.ServiceName+" was resolved in your favor")
		return bs.bookingProjection(ctx, bookingID)
	}

	// Refund outcome: the money moves first, the status follows the
	// refund_issued webhook. Resolving twice is caught by the guard.
	if err := AssertTransition(booking.Status, models.BookingStatusRefunded); err != nil {
		return nil, err
	}
	if booking.PaymentRef == nil {
		log.Printf("[BOOKING] Disputed booking %s has no payment reference", bookingID)
		return nil, models.ErrUpstreamPayment
	}

	amount := booking.PayableAmount()
	refundable := amount + bs.fees.CustomerFee(amount)
	refundAmount := req.RefundAmount
	if refundAmount == 0 {
		refundAmount = refundable
	}
	if refundAmount > refundable {
		return nil, models.ErrAmountExceedsRefundable
	}

	refund, err := bs.processor.CreateRefund(ctx, *booking.PaymentRef, refundAmount)
	if err != nil {
		log.Printf("[BOOKING] Refund for booking %s failed: %v", bookingID, err)
		return nil, models.ErrUpstreamPayment
	}
	log.Printf("[BOOKING] Refund %s issued for booking %s (%d)", refund.ID, bookingID, refundAmount)

	return bs.bookingProjection(ctx, bookingID)
}

// runTransition wires the shared mutation pipeline: actor resolution, the
// idempotency ledger, then the operation itself.
func (bs *BookingService) runTransition(w http.ResponseWriter, r *http.Request, operation string, op func(ctx context.Context, actorID, bookingID string) ([]byte, error)) {
	actorID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	bookingID := chi.URLParam(r, "bookingId")

	key := IdempotencyKey(operation, actorID, bookingID)
	body, replayed, err := bs.idem.Do(r.Context(), key, bs.cfg.IdempotencyTTLDefault, func() ([]byte, error) {
		return op(r.Context(), actorID, bookingID)
	})
	bs.respondMutation(w, body, replayed, err)
}

// applyStatus runs the transition guard and the conditional write for a plain
// status change. Zero rows affected means another writer got there first.
func (bs *BookingService) applyStatus(ctx context.Context, booking *models.Booking, target string) error {
	if err := AssertTransition(booking.Status, target); err != nil {
		return err
	}

	res, err := bs.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		target, booking.ID, booking.Status)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrConcurrentUpdate
	}

	log.Printf("[BOOKING] Booking %s: %s -> %s", booking.ID, booking.Status, target)
	return nil
}

func (bs *BookingService) fetchBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	row := bs.db.QueryRowContext(ctx, `
		SELECT id, customer_id, provider_id, service_name, price_type, base_price, quoted_price, currency, status, payment_ref, checkout_ref, scheduled_at, dispute_reason, created_at, updated_at
		FROM bookings WHERE id = $1`, bookingID)

	var b models.Booking
	if err := scanBooking(row, &b); err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (bs *BookingService) bookingProjection(ctx context.Context, bookingID string) ([]byte, error) {
	booking, err := bs.fetchBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(booking)
}

// sendNotification is fire-and-forget; delivery failures are logged and never
// affect the transition that triggered them.
func (bs *BookingService) sendNotification(recipientID, kind, bookingID, message string) {
	err := bs.notifier.Notify(context.Background(), notify.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		BookingID:   bookingID,
		Message:     message,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("[NOTIFY] Failed to notify %s about %s on booking %s: %v", recipientID, kind, bookingID, err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner, b *models.Booking) error {
	return row.Scan(
		&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceName, &b.PriceType,
		&b.BasePrice, &b.QuotedPrice, &b.Currency, &b.Status, &b.PaymentRef,
		&b.CheckoutRef, &b.ScheduledAt, &b.DisputeReason, &b.CreatedAt, &b.UpdatedAt,
	)
}

func pageParams(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
