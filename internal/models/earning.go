package models

import (
	"time"
)

// Settlement statuses for an earnings row
const (
	SettlementAwaitingPayout = "awaiting_payout"
	SettlementPaidOut        = "paid_out"
)

// Payout batch statuses mirrored from the payment processor
const (
	PayoutStatusPending   = "pending"
	PayoutStatusInTransit = "in_transit"
	PayoutStatusPaid      = "paid"
	PayoutStatusFailed    = "failed"
	PayoutStatusCanceled  = "canceled"
)

// Earning represents the financial settlement record tied 1:1 to a paid booking.
// TierBps, TaxBps and TaxRegistered capture the provider's commission and GST
// position at the moment the row was written, so later profile or rate changes
// do not alter historical rows.
type Earning struct {
	ID               int64      `json:"id" db:"id"`
	BookingID        string     `json:"booking_id" db:"booking_id"`
	ProviderID       string     `json:"provider_id" db:"provider_id"`
	GrossAmount      int64      `json:"gross_amount" db:"gross_amount"` // in cents
	PlatformFee      int64      `json:"platform_fee" db:"platform_fee"`
	TaxAmount        int64      `json:"tax_amount" db:"tax_amount"`
	NetAmount        int64      `json:"net_amount" db:"net_amount"`
	TierBps          int64      `json:"tier_bps" db:"tier_bps"`
	TaxBps           int64      `json:"tax_bps" db:"tax_bps"`
	TaxRegistered    bool       `json:"tax_registered" db:"tax_registered"`
	SettlementStatus string     `json:"settlement_status" db:"settlement_status"`
	SettlementRef    *string    `json:"settlement_ref,omitempty" db:"settlement_ref"`
	PayoutBatchID    *string    `json:"payout_batch_id,omitempty" db:"payout_batch_id"`
	RefundedAmount   int64      `json:"refunded_amount" db:"refunded_amount"`
	RemainderRef     *string    `json:"remainder_ref,omitempty" db:"remainder_ref"`
	PaidAt           *time.Time `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// PayoutBatch represents an external transfer of accumulated net earnings,
// mirrored from the processor's payout list
type PayoutBatch struct {
	ID          string     `json:"id" db:"id"` // processor payout id
	ProviderID  string     `json:"provider_id" db:"provider_id"`
	Amount      int64      `json:"amount" db:"amount"` // in cents
	Status      string     `json:"status" db:"status"`
	ArrivalDate *time.Time `json:"arrival_date,omitempty" db:"arrival_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// EarningsSummary represents the aggregate earnings projection for a provider
type EarningsSummary struct {
	ProviderID       string     `json:"provider_id"`
	LifetimeGross    int64      `json:"lifetime_gross"`
	LifetimeFees     int64      `json:"lifetime_fees"`
	LifetimeTax      int64      `json:"lifetime_tax"`
	LifetimeNet      int64      `json:"lifetime_net"`
	Last30DaysNet    int64      `json:"last_30_days_net"`
	PendingNet       int64      `json:"pending_net"`
	PaidOutNet       int64      `json:"paid_out_net"`
	NextPayoutAt     *time.Time `json:"next_payout_at,omitempty"`
	NextPayoutAmount int64      `json:"next_payout_amount"`
}

// PayoutRequestResponse represents the acknowledgment of a provider payout request
type PayoutRequestResponse struct {
	PayoutID    string     `json:"payout_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	ArrivalDate *time.Time `json:"arrival_date,omitempty"`
}
