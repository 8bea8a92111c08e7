package models

import (
	"errors"
	"fmt"
)

// Typed failures surfaced by the booking and payment paths. Handlers map these
// to HTTP statuses; anything not listed here propagates as a generic 500.
var (
	ErrAwaitingQuote           = errors.New("booking is quote-priced and no quote has been set")
	ErrAmountBelowMinimum      = errors.New("amount is below the minimum chargeable amount")
	ErrAmountExceedsRefundable = errors.New("amount exceeds the refundable balance")
	ErrDuplicateSubmission     = errors.New("duplicate submission, original request still in flight")
	ErrUpstreamPayment         = errors.New("payment processor request failed")
	ErrSignatureInvalid        = errors.New("webhook signature verification failed")
	ErrKYCRequired             = errors.New("identity verification required before payout")
	ErrBookingNotFound         = errors.New("booking not found")
	ErrProviderNotFound        = errors.New("provider not found")
	ErrNotBookingParty         = errors.New("actor is not a party to this booking")
	ErrPriceLocked             = errors.New("price is locked once a payment reference is attached")
	ErrBookingClosed           = errors.New("booking is no longer open to changes")
	ErrConcurrentUpdate        = errors.New("booking was modified concurrently, retry the request")
	ErrNoActiveCheckout        = errors.New("booking has no active checkout session")
)

// InvalidTransitionError names both states of a rejected status change
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid booking transition from %q to %q", e.From, e.To)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
