package processor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Processor-Signature"

// EventKind tags a processor webhook event. Reconciliation switches over
// every kind explicitly; adding a kind here without a handler arm trips the
// unknown-event log, never a silent drop.
type EventKind string

const (
	EventCheckoutCompleted  EventKind = "checkout_completed"
	EventPaymentSucceeded   EventKind = "payment_succeeded"
	EventPaymentFailed      EventKind = "payment_failed"
	EventAsyncPaymentFailed EventKind = "async_payment_failed"
	EventRefundIssued       EventKind = "refund_issued"
)

// Event is one decoded processor callback
type Event struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"type"`
	CreatedAt int64     `json:"created_at"` // unix seconds
	Data      EventData `json:"data"`
}

// EventData carries the payment object fields reconciliation needs. Which
// fields are populated depends on the event kind; Metadata is the checkout
// metadata echoed back by the processor.
type EventData struct {
	CheckoutRef   string            `json:"checkout_ref,omitempty"`
	PaymentRef    string            `json:"payment_ref,omitempty"`
	SettlementRef string            `json:"settlement_ref,omitempty"`
	Amount        int64             `json:"amount,omitempty"`
	Currency      string            `json:"currency,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// BookingID returns the booking reference embedded in the checkout metadata,
// empty when the event does not carry one (refunds frequently do not).
func (e *Event) BookingID() string {
	return e.Data.Metadata["booking_id"]
}

var errSignatureMismatch = errors.New("signature mismatch")

// VerifySignature checks the raw webhook body against the shared secret.
// It must pass before the body is parsed or any state is touched.
func VerifySignature(payload []byte, signatureHex, secret string) error {
	if secret == "" {
		return errors.New("webhook secret is not configured")
	}
	provided, err := hex.DecodeString(signatureHex)
	if err != nil || len(provided) == 0 {
		return errSignatureMismatch
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	if !hmac.Equal(h.Sum(nil), provided) {
		return errSignatureMismatch
	}
	return nil
}

// Sign computes the hex signature for a payload. The HTTP tests and local
// tooling use it to produce valid callbacks.
func Sign(payload []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// ParseEvent decodes a verified webhook body. Unknown kinds parse fine and
// are left to the handler's default arm so operators see them in the logs.
func ParseEvent(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed event payload: %w", err)
	}
	if event.ID == "" || event.Kind == "" {
		return nil, errors.New("event is missing id or type")
	}
	return &event, nil
}
