package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"image/png"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"

	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/models"
)

// CheckoutQRService renders a booking's active checkout URL as a PNG QR code
// so a provider can hand the payment page to a customer in person. Rendered
// images are cached in Redis keyed by the checkout session, so a replaced
// session never serves a stale code.
type CheckoutQRService struct {
	db    *sql.DB
	redis *redis.Client
	cfg   *config.PlatformConfig
}

func NewCheckoutQRService(db *sql.DB, redisClient *redis.Client, cfg *config.PlatformConfig) *CheckoutQRService {
	return &CheckoutQRService{
		db:    db,
		redis: redisClient,
		cfg:   cfg,
	}
}

// RenderCheckoutQR returns PNG bytes encoding the booking's checkout URL.
// Only the two booking parties may fetch it, and only while the booking is
// accepted with a checkout session attached.
func (s *CheckoutQRService) RenderCheckoutQR(ctx context.Context, actorID, bookingID string) ([]byte, error) {
	var customerID, providerID, status string
	var checkoutRef, checkoutURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT customer_id, provider_id, status, checkout_ref, checkout_url
		FROM bookings WHERE id = $1`, bookingID).
		Scan(&customerID, &providerID, &status, &checkoutRef, &checkoutURL)
	if err == sql.ErrNoRows {
		return nil, models.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	if actorID != customerID && actorID != providerID {
		return nil, models.ErrNotBookingParty
	}
	if status != models.BookingStatusAccepted || !checkoutURL.Valid || checkoutURL.String == "" {
		return nil, models.ErrNoActiveCheckout
	}

	key := fmt.Sprintf("checkoutqr:%s:%s", bookingID, checkoutRef.String)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			log.Printf("[QR] Cache read for booking %s failed: %v", bookingID, err)
		}
	}

	qr, err := qrcode.New(checkoutURL.String, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return nil, err
	}

	// The cache is a convenience; a failed write just means the next request
	// renders again.
	if s.redis != nil {
		if err := s.redis.Set(ctx, key, buf.Bytes(), s.cfg.CheckoutQRTTL).Err(); err != nil {
			log.Printf("[QR] Cache write for booking %s failed: %v", bookingID, err)
		}
	}

	return buf.Bytes(), nil
}
