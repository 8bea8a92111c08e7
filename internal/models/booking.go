package models

import (
	"time"
)

// Booking statuses
const (
	BookingStatusPending          = "pending"
	BookingStatusAccepted         = "accepted"
	BookingStatusPaid             = "paid"
	BookingStatusCompleted        = "completed"
	BookingStatusDeclined         = "declined"
	BookingStatusCanceledCustomer = "canceled_customer"
	BookingStatusCanceledProvider = "canceled_provider"
	BookingStatusDisputed         = "disputed"
	BookingStatusRefunded         = "refunded"
)

// Price types
const (
	PriceTypeFixed = "fixed"
	PriceTypeQuote = "quote"
)

// Booking represents one purchase relationship between a customer and a provider
type Booking struct {
	ID            string     `json:"id" db:"id"`
	CustomerID    string     `json:"customer_id" db:"customer_id"`
	ProviderID    string     `json:"provider_id" db:"provider_id"`
	ServiceName   string     `json:"service_name" db:"service_name"`
	PriceType     string     `json:"price_type" db:"price_type"` // "fixed" or "quote"
	BasePrice     int64      `json:"base_price" db:"base_price"` // in cents
	QuotedPrice   *int64     `json:"quoted_price,omitempty" db:"quoted_price"`
	Currency      string     `json:"currency" db:"currency"`
	Status        string     `json:"status" db:"status"`
	PaymentRef    *string    `json:"payment_ref,omitempty" db:"payment_ref"`
	CheckoutRef   *string    `json:"checkout_ref,omitempty" db:"checkout_ref"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty" db:"scheduled_at"`
	DisputeReason *string    `json:"dispute_reason,omitempty" db:"dispute_reason"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// PayableAmount returns the amount the customer is charged for the service,
// preferring the provider's quote over the base price recorded at booking time.
func (b *Booking) PayableAmount() int64 {
	if b.QuotedPrice != nil {
		return *b.QuotedPrice
	}
	return b.BasePrice
}

// CreateBookingRequest represents a new booking intent from a customer
type CreateBookingRequest struct {
	ProviderID  string     `json:"provider_id" validate:"required,max=64"`
	ServiceName string     `json:"service_name" validate:"required,max=120"`
	PriceType   string     `json:"price_type" validate:"required,oneof=fixed quote"`
	BasePrice   int64      `json:"base_price" validate:"gte=0"`
	Currency    string     `json:"currency" validate:"required,len=3"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// QuoteRequest represents a provider-supplied price quote
type QuoteRequest struct {
	QuotedPrice int64 `json:"quoted_price" validate:"required,gt=0"`
}

// CancelRequest represents a cancellation with an optional reason
type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// RescheduleRequest represents a scheduled-time change
type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

// DisputeRequest represents a customer opening a dispute on a paid booking
type DisputeRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ResolveDisputeRequest represents an administrative dispute resolution
type ResolveDisputeRequest struct {
	Outcome      string `json:"outcome" validate:"required,oneof=refunded paid"`
	RefundAmount int64  `json:"refund_amount" validate:"gte=0"` // 0 means full refund
}

// PaymentSession represents the checkout hand-off returned by requestPayment
type PaymentSession struct {
	BookingID   string `json:"booking_id"`
	CheckoutRef string `json:"checkout_ref"`
	CheckoutURL string `json:"checkout_url"`
	Amount      int64  `json:"amount"`       // in cents, service amount
	CustomerFee int64  `json:"customer_fee"` // in cents
	Total       int64  `json:"total"`        // in cents, amount charged
	Currency    string `json:"currency"`
}
