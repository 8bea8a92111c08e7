package services

import (
	"github.com/localpros/backend/internal/models"
)

// allowedTransitions is the authoritative edge table for booking statuses.
// declined, canceled_customer, canceled_provider and refunded have no outgoing
// edges; completed only re-opens through the dispute branch.
var allowedTransitions = map[string][]string{
	models.BookingStatusPending: {
		models.BookingStatusAccepted,
		models.BookingStatusDeclined,
		models.BookingStatusCanceledCustomer,
	},
	models.BookingStatusAccepted: {
		models.BookingStatusPaid,
		models.BookingStatusDeclined,
		models.BookingStatusCanceledCustomer,
		models.BookingStatusCanceledProvider,
	},
	models.BookingStatusPaid: {
		models.BookingStatusCompleted,
		models.BookingStatusDisputed,
		models.BookingStatusRefunded,
	},
	models.BookingStatusCompleted: {
		models.BookingStatusDisputed,
		models.BookingStatusRefunded,
	},
	models.BookingStatusDisputed: {
		models.BookingStatusPaid,
		models.BookingStatusRefunded,
	},
}

// AssertTransition is the single gate every booking mutation passes through.
// It rejects any status change whose edge is not in the allowed table, naming
// both states so the caller can surface a precise failure.
func AssertTransition(current, requested string) error {
	for _, next := range allowedTransitions[current] {
		if next == requested {
			return nil
		}
	}
	return &models.InvalidTransitionError{From: current, To: requested}
}
