package services

import (
	"context"
	"database/sql"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lib/pq"

	"github.com/localpros/backend/internal/audit"
	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/models"
	"github.com/localpros/backend/internal/notify"
	"github.com/localpros/backend/internal/processor"
)

// WebhookService reconciles processor callbacks into booking state and the
// earnings ledger. Every handler arm tolerates duplicates and reordering: the
// writes are all conditional, so a replayed or out-of-order event lands as a
// logged no-op instead of a double entry.
type WebhookService struct {
	db        *sql.DB
	cfg       *config.PlatformConfig
	fees      *FeeCalculator
	processor processor.Client
	notifier  notify.Notifier
	audit     *audit.AuditLogger
}

func NewWebhookService(db *sql.DB, cfg *config.PlatformConfig, fees *FeeCalculator, pc processor.Client, notifier notify.Notifier) *WebhookService {
	return &WebhookService{
		db:        db,
		cfg:       cfg,
		fees:      fees,
		processor: pc,
		notifier:  notifier,
		audit:     audit.NewAuditLogger(),
	}
}

// HandleProcessorEvent receives signed processor callbacks
// @Summary Processor webhook
// @Description Receive signed payment processor callbacks for payment, refund and settlement reconciliation
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Processor-Signature header string true "Hex HMAC-SHA256 of the raw body"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /webhooks/processor [post]
func (ws *WebhookService) HandleProcessorEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	// Signature before anything else; an unsigned body never touches state.
	signature := r.Header.Get(processor.SignatureHeader)
	if err := processor.VerifySignature(payload, signature, ws.cfg.WebhookSecret); err != nil {
		log.Printf("[SECURITY] Rejected webhook from %s: %v", r.RemoteAddr, err)
		SendErrorResponse(w, "Invalid signature", http.StatusUnauthorized, nil)
		return
	}

	event, err := processor.ParseEvent(payload)
	if err != nil {
		SendErrorResponse(w, "Malformed event", http.StatusBadRequest, nil)
		return
	}

	// Once the event is authentic and well-formed the processor gets its ACK;
	// reconciliation failures are logged and left to the auditor, a retry of
	// the same event would hit the same condition.
	if err := ws.ApplyEvent(r.Context(), event); err != nil {
		log.Printf("[WEBHOOK] Event %s (%s) failed to apply: %v", event.ID, event.Kind, err)
	}

	RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// ApplyEvent dispatches one verified event to its reconciliation arm.
func (ws *WebhookService) ApplyEvent(ctx context.Context, event *processor.Event) error {
	switch event.Kind {
	case processor.EventCheckoutCompleted, processor.EventPaymentSucceeded:
		if event.Data.Metadata["payment_kind"] == "remainder" {
			return ws.applyRemainder(ctx, event)
		}
		return ws.applyPaymentSucceeded(ctx, event)
	case processor.EventPaymentFailed, processor.EventAsyncPaymentFailed:
		log.Printf("[WEBHOOK] Payment failed for checkout %s (event %s); booking left as-is", event.Data.CheckoutRef, event.ID)
		return nil
	case processor.EventRefundIssued:
		return ws.applyRefundIssued(ctx, event)
	default:
		log.Printf("[WEBHOOK] Ignoring unknown event kind %q (event %s)", event.Kind, event.ID)
		return nil
	}
}

func (ws *WebhookService) applyPaymentSucceeded(ctx context.Context, event *processor.Event) error {
	bookingID, err := ws.resolveBookingID(ctx, event)
	if err != nil || bookingID == "" {
		return err
	}

	var customerID, providerID, serviceName string
	var basePrice int64
	var quotedPrice *int64
	err = ws.db.QueryRowContext(ctx, `
		SELECT customer_id, provider_id, service_name, base_price, quoted_price
		FROM bookings WHERE id = $1`, bookingID).
		Scan(&customerID, &providerID, &serviceName, &basePrice, &quotedPrice)
	if err == sql.ErrNoRows {
		log.Printf("[WEBHOOK] Payment event %s references unknown booking %s", event.ID, bookingID)
		return nil
	}
	if err != nil {
		return err
	}

	res, err := ws.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, payment_ref = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.BookingStatusPaid, event.Data.PaymentRef, bookingID, models.BookingStatusAccepted)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Duplicate delivery or an event racing a state change. The ledger
		// row, if any, was written by whichever delivery won.
		log.Printf("[WEBHOOK] Booking %s was not awaiting payment; event %s treated as replay", bookingID, event.ID)
		return nil
	}
	log.Printf("[WEBHOOK] Booking %s marked paid (payment %s)", bookingID, event.Data.PaymentRef)

	gross := metadataAmount(event, "service_amount")
	if gross == 0 {
		gross = basePrice
		if quotedPrice != nil {
			gross = *quotedPrice
		}
	}

	if err := ws.insertEarning(ctx, bookingID, providerID, gross, event.Data.SettlementRef); err != nil {
		return err
	}

	go ws.sendNotification(customerID, notify.KindBookingPaid, bookingID, "Payment received for "+serviceName)
	go ws.sendNotification(providerID, notify.KindBookingPaid, bookingID, serviceName+" has been paid for")
	return nil
}

// insertEarning writes the one ledger row a paid booking gets. Commission and
// GST inputs are captured on the row itself so the auditor recomputes against
// what was true at write time, not whatever the provider's profile says later.
func (ws *WebhookService) insertEarning(ctx context.Context, bookingID, providerID string, gross int64, settlementRef string) error {
	var tier string
	var taxRegistered bool
	err := ws.db.QueryRowContext(ctx, `SELECT tier, tax_registered FROM providers WHERE id = $1`, providerID).
		Scan(&tier, &taxRegistered)
	if err == sql.ErrNoRows {
		// Provider mirror is missing the row; price at the starter rate and
		// let the auditor surface the gap.
		log.Printf("[WEBHOOK] Provider %s not found while writing earnings for booking %s", providerID, bookingID)
		tier = models.TierStarter
		taxRegistered = false
	} else if err != nil {
		return err
	}

	tierBps := ws.cfg.TierBps(tier)
	platformFee := ws.fees.PlatformFee(gross, tierBps)
	taxAmount := ws.fees.Tax(gross, taxRegistered, ws.cfg.TaxBps)
	netAmount, err := ws.fees.Net(gross, platformFee)
	if err != nil {
		// Recorded as computed; the auditor reports the negative net.
		log.Printf("[WEBHOOK] Booking %s: %v", bookingID, err)
	}

	res, err := ws.db.ExecContext(ctx, `
		INSERT INTO earnings (booking_id, provider_id, gross_amount, platform_fee, tax_amount, net_amount, tier_bps, tax_bps, tax_registered, settlement_status, settlement_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (booking_id) DO NOTHING`,
		bookingID, providerID, gross, platformFee, taxAmount, netAmount,
		tierBps, ws.cfg.TaxBps, taxRegistered, models.SettlementAwaitingPayout,
		sql.NullString{String: settlementRef, Valid: settlementRef != ""})
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Printf("[WEBHOOK] Earnings row for booking %s already exists", bookingID)
		return nil
	}

	log.Printf("[PAYMENT] Earnings recorded for booking %s: gross=%d fee=%d tax=%d net=%d",
		bookingID, gross, platformFee, taxAmount, netAmount)
	return nil
}

// applyRemainder folds the second installment of a deposit/remainder scheme
// into the existing ledger row. The whole adjustment is one conditional write
// keyed on remainder_ref still being empty, so a duplicate event cannot double
// the gross.
func (ws *WebhookService) applyRemainder(ctx context.Context, event *processor.Event) error {
	bookingID, err := ws.resolveBookingID(ctx, event)
	if err != nil || bookingID == "" {
		return err
	}

	var gross, platformFee int64
	var tierBps, taxBps int64
	var taxRegistered bool
	var remainderRef *string
	err = ws.db.QueryRowContext(ctx, `
		SELECT gross_amount, platform_fee, tier_bps, tax_bps, tax_registered, remainder_ref
		FROM earnings WHERE booking_id = $1`, bookingID).
		Scan(&gross, &platformFee, &tierBps, &taxBps, &taxRegistered, &remainderRef)
	if err == sql.ErrNoRows {
		log.Printf("[WEBHOOK] Remainder event %s arrived before a deposit ledger row for booking %s", event.ID, bookingID)
		return nil
	}
	if err != nil {
		return err
	}
	if remainderRef != nil {
		log.Printf("[WEBHOOK] Remainder for booking %s already applied; event %s treated as replay", bookingID, event.ID)
		return nil
	}

	remainderGross := metadataAmount(event, "service_amount")
	if remainderGross == 0 {
		remainderGross = event.Data.Amount
	}

	totalGross := gross + remainderGross
	totalFee := platformFee + ws.fees.RemainderPlatformFee(ws.fees.PlatformFee(totalGross, tierBps), platformFee)
	totalTax := ws.fees.Tax(totalGross, taxRegistered, taxBps)
	totalNet, err := ws.fees.Net(totalGross, totalFee)
	if err != nil {
		log.Printf("[WEBHOOK] Booking %s: %v", bookingID, err)
	}

	res, err := ws.db.ExecContext(ctx, `
		UPDATE earnings SET gross_amount = $1, platform_fee = $2, tax_amount = $3, net_amount = $4, remainder_ref = $5, updated_at = NOW()
		WHERE booking_id = $6 AND remainder_ref IS NULL`,
		totalGross, totalFee, totalTax, totalNet, event.Data.PaymentRef, bookingID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Printf("[WEBHOOK] Remainder for booking %s lost a write race; event %s treated as replay", bookingID, event.ID)
		return nil
	}

	log.Printf("[PAYMENT] Remainder applied to booking %s: gross=%d fee=%d tax=%d net=%d",
		bookingID, totalGross, totalFee, totalTax, totalNet)
	return nil
}

func (ws *WebhookService) applyRefundIssued(ctx context.Context, event *processor.Event) error {
	bookingID := event.BookingID()
	var customerID, serviceName string
	var err error

	if bookingID != "" {
		err = ws.db.QueryRowContext(ctx, `SELECT customer_id, service_name FROM bookings WHERE id = $1`, bookingID).
			Scan(&customerID, &serviceName)
	} else {
		// Refund events often carry only the payment reference.
		err = ws.db.QueryRowContext(ctx, `SELECT id, customer_id, service_name FROM bookings WHERE payment_ref = $1`, event.Data.PaymentRef).
			Scan(&bookingID, &customerID, &serviceName)
	}
	if err == sql.ErrNoRows {
		log.Printf("[WEBHOOK] Refund event %s does not match any booking (payment %s)", event.ID, event.Data.PaymentRef)
		return nil
	}
	if err != nil {
		return err
	}

	res, err := ws.db.ExecContext(ctx, `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('paid', 'completed', 'disputed')`,
		models.BookingStatusRefunded, bookingID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		log.Printf("[WEBHOOK] Booking %s was not refundable; event %s treated as replay", bookingID, event.ID)
	} else {
		log.Printf("[WEBHOOK] Booking %s marked refunded (event %s)", bookingID, event.ID)
	}

	// Record the clawback once; net_amount keeps the original arithmetic and
	// projections subtract refunded_amount.
	res, err = ws.db.ExecContext(ctx, `
		UPDATE earnings SET refunded_amount = $1, updated_at = NOW()
		WHERE booking_id = $2 AND refunded_amount = 0`,
		event.Data.Amount, bookingID)
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Printf("[PAYMENT] Refund of %d recorded against earnings for booking %s", event.Data.Amount, bookingID)
		ws.audit.LogRefund(bookingID, event.Data.PaymentRef, event.Data.Amount)
		go ws.sendNotification(customerID, notify.KindBookingRefunded, bookingID, "Your payment for "+serviceName+" was refunded")
	}
	return nil
}

// resolveBookingID prefers the checkout metadata and falls back to the
// checkout reference. An unresolvable event is logged and dropped.
func (ws *WebhookService) resolveBookingID(ctx context.Context, event *processor.Event) (string, error) {
	if id := event.BookingID(); id != "" {
		return id, nil
	}
	if event.Data.CheckoutRef == "" {
		log.Printf("[WEBHOOK] Event %s carries no booking reference", event.ID)
		return "", nil
	}

	var bookingID string
	err := ws.db.QueryRowContext(ctx, `SELECT id FROM bookings WHERE checkout_ref = $1`, event.Data.CheckoutRef).Scan(&bookingID)
	if err == sql.ErrNoRows {
		log.Printf("[WEBHOOK] Event %s references unknown checkout %s", event.ID, event.Data.CheckoutRef)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return bookingID, nil
}

// SyncPayouts pulls the processor's recent payout list, mirrors the batches
// and links settled earnings rows to the batch that paid them out. Returns the
// number of payouts seen and the number of earnings rows newly linked.
func (ws *WebhookService) SyncPayouts(ctx context.Context) (int, int, error) {
	since := time.Now().Add(-ws.cfg.PayoutSyncLookback)
	payouts, err := ws.processor.ListPayouts(ctx, since)
	if err != nil {
		return 0, 0, err
	}

	linked := 0
	for _, payout := range payouts {
		var providerID string
		err := ws.db.QueryRowContext(ctx, `SELECT id FROM providers WHERE payout_account_ref = $1`, payout.AccountRef).Scan(&providerID)
		if err == sql.ErrNoRows {
			log.Printf("[PAYOUT] Payout %s has no matching provider (account %s)", payout.ID, payout.AccountRef)
			continue
		}
		if err != nil {
			return len(payouts), linked, err
		}

		var arrival sql.NullTime
		if payout.ArrivalDate > 0 {
			arrival = sql.NullTime{Time: time.Unix(payout.ArrivalDate, 0).UTC(), Valid: true}
		}
		_, err = ws.db.ExecContext(ctx, `
			INSERT INTO payout_batches (id, provider_id, amount, status, arrival_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, arrival_date = EXCLUDED.arrival_date, updated_at = NOW()`,
			payout.ID, providerID, payout.Amount, payout.Status, arrival)
		if err != nil {
			return len(payouts), linked, err
		}

		if payout.Status != models.PayoutStatusPaid {
			continue
		}

		settlementRefs, err := ws.processor.ListPayoutTransactions(ctx, payout.ID)
		if err != nil {
			log.Printf("[PAYOUT] Failed to list transactions for payout %s: %v", payout.ID, err)
			continue
		}
		if len(settlementRefs) == 0 {
			continue
		}

		res, err := ws.db.ExecContext(ctx, `
			UPDATE earnings SET settlement_status = $1, payout_batch_id = $2, paid_at = NOW(), updated_at = NOW()
			WHERE settlement_ref = ANY($3) AND settlement_status = $4`,
			models.SettlementPaidOut, payout.ID, pq.Array(settlementRefs), models.SettlementAwaitingPayout)
		if err != nil {
			return len(payouts), linked, err
		}
		if rows, _ := res.RowsAffected(); rows > 0 {
			linked += int(rows)
			log.Printf("[PAYOUT] Linked %d earnings rows to payout %s", rows, payout.ID)
		}
	}

	return len(payouts), linked, nil
}

// SyncPayoutsHandler triggers a payout sync on demand
// @Summary Sync payout batches
// @Description Pull the processor's payout list and link settled earnings rows
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 502 {object} ErrorResponse
// @Router /admin/payouts/sync [post]
func (ws *WebhookService) SyncPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	synced, linked, err := ws.SyncPayouts(r.Context())
	if err != nil {
		log.Printf("[PAYOUT] Sync failed: %v", err)
		writeServiceError(w, models.ErrUpstreamPayment)
		return
	}

	RespondJSON(w, http.StatusOK, map[string]int{
		"payouts_synced":  synced,
		"earnings_linked": linked,
	})
}

// RunPayoutSyncLoop drives SyncPayouts on the configured interval until the
// context is canceled. main runs it as a background goroutine.
func (ws *WebhookService) RunPayoutSyncLoop(ctx context.Context) {
	ticker := time.NewTicker(ws.cfg.PayoutSyncInterval)
	defer ticker.Stop()

	log.Printf("[PAYOUT] Sync loop started (every %s)", ws.cfg.PayoutSyncInterval)
	for {
		select {
		case <-ctx.Done():
			log.Println("[PAYOUT] Sync loop stopped")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			if _, _, err := ws.SyncPayouts(runCtx); err != nil {
				log.Printf("[PAYOUT] Scheduled sync failed: %v", err)
			}
			cancel()
		}
	}
}

func (ws *WebhookService) sendNotification(recipientID, kind, bookingID, message string) {
	err := ws.notifier.Notify(context.Background(), notify.Notification{
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

func metadataAmount(event *processor.Event, key string) int64 {
	raw, ok := event.Data.Metadata[key]
	if !ok {
		return 0
	}
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}
