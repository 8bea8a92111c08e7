package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_1","type":"payment_succeeded"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		assert.NoError(t, VerifySignature(payload, Sign(payload, secret), secret))
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		assert.Error(t, VerifySignature(payload, Sign(payload, "whsec_other"), secret))
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		sig := Sign(payload, secret)
		assert.Error(t, VerifySignature([]byte(`{"id":"evt_2"}`), sig, secret))
	})

	t.Run("non-hex header fails", func(t *testing.T) {
		assert.Error(t, VerifySignature(payload, "not-a-signature", secret))
	})

	t.Run("missing secret fails closed", func(t *testing.T) {
		assert.Error(t, VerifySignature(payload, Sign(payload, ""), ""))
	})
}

func TestParseEvent(t *testing.T) {
	t.Run("full payment event", func(t *testing.T) {
		body := []byte(`{
			"id": "evt_10",
			"type": "payment_succeeded",
			"created_at": 1756000000,
			"data": {
				"checkout_ref": "cs_1",
				"payment_ref": "pay_1",
				"settlement_ref": "txn_1",
				"amount": 10500,
				"currency": "NZD",
				"metadata": {"booking_id": "bk-1", "service_amount": "10000"}
			}
		}`)

		event, err := ParseEvent(body)
		require.NoError(t, err)
		assert.Equal(t, EventPaymentSucceeded, event.Kind)
		assert.Equal(t, "evt_10", event.ID)
		assert.Equal(t, "pay_1", event.Data.PaymentRef)
		assert.Equal(t, "txn_1", event.Data.SettlementRef)
		assert.Equal(t, "bk-1", event.BookingID())
	})

	t.Run("unknown kind still parses", func(t *testing.T) {
		event, err := ParseEvent([]byte(`{"id":"evt_11","type":"account_updated"}`))
		require.NoError(t, err)
		assert.Equal(t, EventKind("account_updated"), event.Kind)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{not json`))
		assert.Error(t, err)
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"type":"payment_succeeded"}`))
		assert.Error(t, err)
	})

	t.Run("missing booking id yields empty string", func(t *testing.T) {
		event, err := ParseEvent([]byte(`{"id":"evt_12","type":"refund_issued","data":{"payment_ref":"pay_9"}}`))
		require.NoError(t, err)
		assert.Equal(t, "", event.BookingID())
	})
}
