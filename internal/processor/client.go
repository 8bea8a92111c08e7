package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the payment processor surface this core depends on. Checkout,
// refunds and payouts all run through the processor's REST API; everything
// asynchronous comes back through the signed webhook (events.go).
type Client interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	CreateRefund(ctx context.Context, paymentRef string, amount int64) (*Refund, error)
	CreatePayout(ctx context.Context, accountRef string, amount int64, currency string) (*Payout, error)
	ListPayouts(ctx context.Context, since time.Time) ([]Payout, error)
	ListPayoutTransactions(ctx context.Context, payoutID string) ([]string, error)
}

// CheckoutParams describes one hosted-checkout session. Metadata is echoed
// back on webhook events, which is how reconciliation finds the booking.
type CheckoutParams struct {
	Amount        int64  // total charged to the customer, in cents
	Currency      string
	BookingID     string
	ServiceAmount int64  // booking price excluding the customer fee
	PaymentKind   string // "full", "deposit" or "remainder"
	TotalAmount   int64  // full booking total for installment schemes
}

// CheckoutSession is the processor's hosted payment page hand-off
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Refund mirrors the processor's refund object
type Refund struct {
	ID         string `json:"id"`
	PaymentRef string `json:"payment_ref"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// Payout mirrors one entry of the processor's payout list
type Payout struct {
	ID          string `json:"id"`
	AccountRef  string `json:"account_ref"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	ArrivalDate int64  `json:"arrival_date"` // unix seconds
}

// HTTPClient talks to the processor's REST API with secret-key basic auth
type HTTPClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewHTTPClient(baseURL, secretKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(params.Amount, 10))
	form.Set("currency", params.Currency)
	form.Set("metadata[booking_id]", params.BookingID)
	form.Set("metadata[service_amount]", strconv.FormatInt(params.ServiceAmount, 10))
	if params.PaymentKind != "" {
		form.Set("metadata[payment_kind]", params.PaymentKind)
	}
	if params.TotalAmount > 0 {
		form.Set("metadata[total_amount]", strconv.FormatInt(params.TotalAmount, 10))
	}

	var session CheckoutSession
	if err := c.postForm(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) CreateRefund(ctx context.Context, paymentRef string, amount int64) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_ref", paymentRef)
	form.Set("amount", strconv.FormatInt(amount, 10))

	var refund Refund
	if err := c.postForm(ctx, "/v1/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *HTTPClient) CreatePayout(ctx context.Context, accountRef string, amount int64, currency string) (*Payout, error) {
	form := url.Values{}
	form.Set("account_ref", accountRef)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)

	var payout Payout
	if err := c.postForm(ctx, "/v1/payouts", form, &payout); err != nil {
		return nil, err
	}
	return &payout, nil
}

func (c *HTTPClient) ListPayouts(ctx context.Context, since time.Time) ([]Payout, error) {
	path := fmt.Sprintf("/v1/payouts?created_after=%d", since.Unix())

	var list struct {
		Data []Payout `json:"data"`
	}
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *HTTPClient) ListPayoutTransactions(ctx context.Context, payoutID string) ([]string, error) {
	path := fmt.Sprintf("/v1/payouts/%s/transactions", url.PathEscape(payoutID))

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list.Data))
	for _, txn := range list.Data {
		ids = append(ids, txn.ID)
	}
	return ids, nil
}

func (c *HTTPClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.secretKey, "")

	return c.do(req, path, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.secretKey, "")

	return c.do(req, path, out)
}

func (c *HTTPClient) do(req *http.Request, path string, out any) error {
	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("processor request %s failed: %w", path, err)
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("processor request %s returned %d: %s", path, res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("processor response for %s is not valid JSON: %w", path, err)
	}
	return nil
}
