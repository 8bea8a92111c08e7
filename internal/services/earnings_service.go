package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/localpros/backend/internal/audit"
	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/models"
	"github.com/localpros/backend/internal/notify"
	"github.com/localpros/backend/internal/processor"
)

// EarningsService serves provider-facing projections over the earnings ledger
// and initiates payouts. It never creates ledger rows; reconciliation (the
// webhook service) is the only writer of those.
type EarningsService struct {
	db        *sql.DB
	cfg       *config.PlatformConfig
	idem      *IdempotencyService
	processor processor.Client
	notifier  notify.Notifier
	audit     *audit.AuditLogger
}

func NewEarningsService(db *sql.DB, cfg *config.PlatformConfig, idem *IdempotencyService, pc processor.Client, notifier notify.Notifier) *EarningsService {
	return &EarningsService{
		db:        db,
		cfg:       cfg,
		idem:      idem,
		processor: pc,
		notifier:  notifier,
		audit:     audit.NewAuditLogger(),
	}
}

// GetSummary returns the provider's aggregate earnings position
// @Summary Earnings summary
// @Description Lifetime totals, a 30-day window, pending versus paid-out net and the next expected payout
// @Tags earnings
// @Produce json
// @Success 200 {object} models.EarningsSummary
// @Failure 500 {object} ErrorResponse
// @Router /earnings/summary [get]
func (es *EarningsService) GetSummary(w http.ResponseWriter, r *http.Request) {
	providerID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	summary := models.EarningsSummary{ProviderID: providerID}
	err := es.db.QueryRowContext(r.Context(), `
		SELECT
			COALESCE(SUM(gross_amount), 0),
			COALESCE(SUM(platform_fee), 0),
			COALESCE(SUM(tax_amount), 0),
			COALESCE(SUM(net_amount), 0),
			COALESCE(SUM(CASE WHEN created_at >= NOW() - INTERVAL '30 days' THEN net_amount - refunded_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_status = 'awaiting_payout' THEN net_amount - refunded_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN settlement_status = 'paid_out' THEN net_amount ELSE 0 END), 0)
		FROM earnings WHERE provider_id = $1`, providerID).
		Scan(&summary.LifetimeGross, &summary.LifetimeFees, &summary.LifetimeTax, &summary.LifetimeNet,
			&summary.Last30DaysNet, &summary.PendingNet, &summary.PaidOutNet)
	if err != nil {
		log.Printf("[EARNINGS] Summary query failed for provider %s: %v", providerID, err)
		SendErrorResponse(w, "Failed to fetch earnings summary", http.StatusInternalServerError, nil)
		return
	}

	// Earliest batch still on its way to the bank, if any.
	var arrival sql.NullTime
	var amount int64
	err = es.db.QueryRowContext(r.Context(), `
		SELECT amount, arrival_date FROM payout_batches
		WHERE provider_id = $1 AND status IN ('pending', 'in_transit')
		ORDER BY arrival_date ASC NULLS LAST LIMIT 1`, providerID).
		Scan(&amount, &arrival)
	if err != nil && err != sql.ErrNoRows {
		log.Printf("[EARNINGS] Next payout query failed for provider %s: %v", providerID, err)
		SendErrorResponse(w, "Failed to fetch earnings summary", http.StatusInternalServerError, nil)
		return
	}
	if err == nil {
		summary.NextPayoutAmount = amount
		if arrival.Valid {
			summary.NextPayoutAt = &arrival.Time
		}
	}

	RespondJSON(w, http.StatusOK, summary)
}

// ListEarnings returns the provider's ledger rows, newest first
// @Summary List earnings
// @Description Paginated earnings ledger rows for the authenticated provider
// @Tags earnings
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{earnings=[]models.Earning,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /earnings [get]
func (es *EarningsService) ListEarnings(w http.ResponseWriter, r *http.Request) {
	providerID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit, offset := pageParams(r, 20, 100)
	rows, err := es.db.QueryContext(r.Context(), `
		SELECT id, booking_id, provider_id, gross_amount, platform_fee, tax_amount, net_amount, tier_bps, tax_bps, tax_registered, settlement_status, settlement_ref, payout_batch_id, refunded_amount, remainder_ref, paid_at, created_at, updated_at
		FROM earnings WHERE provider_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		log.Printf("[EARNINGS] List query failed for provider %s: %v", providerID, err)
		SendErrorResponse(w, "Failed to fetch earnings", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	earnings := []models.Earning{}
	for rows.Next() {
		var e models.Earning
		err := rows.Scan(&e.ID, &e.BookingID, &e.ProviderID, &e.GrossAmount, &e.PlatformFee,
			&e.TaxAmount, &e.NetAmount, &e.TierBps, &e.TaxBps, &e.TaxRegistered,
			&e.SettlementStatus, &e.SettlementRef, &e.PayoutBatchID, &e.RefundedAmount,
			&e.RemainderRef, &e.PaidAt, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			log.Printf("[EARNINGS] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch earnings", http.StatusInternalServerError, nil)
			return
		}
		earnings = append(earnings, e)
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"earnings": earnings,
		"count":    len(earnings),
	})
}

// RequestPayout asks the processor to transfer the pending balance
// @Summary Request a payout
// @Description Transfer the provider's accumulated pending net. Requires completed identity verification.
// @Tags earnings
// @Produce json
// @Success 200 {object} models.PayoutRequestResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /earnings/payout-request [post]
func (es *EarningsService) RequestPayout(w http.ResponseWriter, r *http.Request) {
	providerID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	key := IdempotencyKey("earnings.payout", providerID, providerID)
	body, replayed, err := es.idem.Do(r.Context(), key, es.cfg.IdempotencyTTLPayment, func() ([]byte, error) {
		return es.requestPayout(r.Context(), providerID)
	})
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

func (es *EarningsService) requestPayout(ctx context.Context, providerID string) ([]byte, error) {
	var kycVerified bool
	var accountRef string
	err := es.db.QueryRowContext(ctx, `SELECT kyc_verified, payout_account_ref FROM providers WHERE id = $1`, providerID).
		Scan(&kycVerified, &accountRef)
	if err == sql.ErrNoRows {
		return nil, models.ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}

	// Earnings keep accruing for unverified providers; the gate sits here,
	// at the moment money would leave the platform.
	if !kycVerified || accountRef == "" {
		return nil, models.ErrKYCRequired
	}

	var available int64
	err = es.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(net_amount - refunded_amount), 0)
		FROM earnings WHERE provider_id = $1 AND settlement_status = $2`,
		providerID, models.SettlementAwaitingPayout).
		Scan(&available)
	if err != nil {
		return nil, err
	}
	if available < es.cfg.MinChargeAmount {
		return nil, models.ErrAmountBelowMinimum
	}

	payout, err := es.processor.CreatePayout(ctx, accountRef, available, es.cfg.Currency)
	if err != nil {
		log.Printf("[PAYOUT] Payout request for provider %s failed: %v", providerID, err)
		return nil, models.ErrUpstreamPayment
	}

	var arrival *time.Time
	var arrivalArg sql.NullTime
	if payout.ArrivalDate > 0 {
		at := time.Unix(payout.ArrivalDate, 0).UTC()
		arrival = &at
		arrivalArg = sql.NullTime{Time: at, Valid: true}
	}
	_, err = es.db.ExecContext(ctx, `
		INSERT INTO payout_batches (id, provider_id, amount, status, arrival_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING`,
		payout.ID, providerID, payout.Amount, payout.Status, arrivalArg)
	if err != nil {
		return nil, err
	}

	log.Printf("[PAYOUT] Payout %s requested for provider %s (%d %s)", payout.ID, providerID, payout.Amount, es.cfg.Currency)
	es.audit.LogPayout(payout.ID, providerID, payout.Amount, payout.Status)
	go es.sendNotification(providerID, notify.KindPayoutRequested, "", "Your payout is on its way")

	return json.Marshal(models.PayoutRequestResponse{
		PayoutID:    payout.ID,
		Amount:      payout.Amount,
		Status:      payout.Status,
		ArrivalDate: arrival,
	})
}

// ListPayouts returns the provider's payout batches, newest first
// @Summary List payouts
// @Description Paginated payout batches mirrored from the processor
// @Tags earnings
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} object{payouts=[]models.PayoutBatch,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /payouts [get]
func (es *EarningsService) ListPayouts(w http.ResponseWriter, r *http.Request) {
	providerID, ok := actorFrom(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit, offset := pageParams(r, 20, 100)
	rows, err := es.db.QueryContext(r.Context(), `
		SELECT id, provider_id, amount, status, arrival_date, created_at, updated_at
		FROM payout_batches WHERE provider_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		log.Printf("[PAYOUT] List query failed for provider %s: %v", providerID, err)
		SendErrorResponse(w, "Failed to fetch payouts", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	payouts := []models.PayoutBatch{}
	for rows.Next() {
		var p models.PayoutBatch
		err := rows.Scan(&p.ID, &p.ProviderID, &p.Amount, &p.Status, &p.ArrivalDate, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			log.Printf("[PAYOUT] Scan failed: %v", err)
			SendErrorResponse(w, "Failed to fetch payouts", http.StatusInternalServerError, nil)
			return
		}
		payouts = append(payouts, p)
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"payouts": payouts,
		"count":   len(payouts),
	})
}

func (es *EarningsService) sendNotification(recipientID, kind, bookingID, message string) {
	err := es.notifier.Notify(context.Background(), notify.Notification{
		RecipientID: recipientID,
		Kind:        kind,
		BookingID:   bookingID,
		Message:     message,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Printf("[NOTIFY] Failed to notify %s about %s: %v", recipientID, kind, err)
	}
}
