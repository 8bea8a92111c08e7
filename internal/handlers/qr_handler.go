package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/localpros/backend/internal/models"
	"github.com/localpros/backend/internal/services"
)

// CheckoutQRHandler serves a booking's checkout session as a scannable image
// for in-person payment hand-off.
type CheckoutQRHandler struct {
	service *services.CheckoutQRService
}

func NewCheckoutQRHandler(service *services.CheckoutQRService) *CheckoutQRHandler {
	return &CheckoutQRHandler{service: service}
}

// GetCheckoutQR renders the booking's active checkout URL as a QR code
// @Summary Checkout QR code
// @Description Render the booking's active checkout URL as a PNG QR code
// @Tags bookings
// @Produce png
// @Security BearerAuth
// @Param bookingId path string true "Booking ID"
// @Success 200 {file} binary
// @Failure 401 {object} services.ErrorResponse
// @Failure 403 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /bookings/{bookingId}/checkout-qr [get]
func (h *CheckoutQRHandler) GetCheckoutQR(w http.ResponseWriter, r *http.Request) {
	actorID, ok := r.Context().Value("userID").(string)
	if !ok || actorID == "" {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	image, err := h.service.RenderCheckoutQR(r.Context(), actorID, chi.URLParam(r, "bookingId"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBookingNotFound):
			services.SendErrorResponse(w, "Booking not found", http.StatusNotFound, nil)
		case errors.Is(err, models.ErrNotBookingParty):
			services.SendErrorResponse(w, "You are not a party to this booking", http.StatusForbidden, nil)
		case errors.Is(err, models.ErrNoActiveCheckout):
			services.SendErrorResponse(w, "Booking has no active checkout session", http.StatusConflict, nil)
		default:
			log.Printf("[QR] Failed to render checkout QR: %v", err)
			services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		}
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.WriteHeader(http.StatusOK)
	w.Write(image)
}
