package payment

import (
	"context"

	"hems/internal/domain/booking"
	"hems/internal/domain/shared/money"
)

// Reconciler derives the settled payment total for a booking. It proposes
// the payment status; committing the transition stays with the booking
// aggregate (Booking.ReconcilePayments).
type Reconciler struct {
	Payments Repository
}

// SettledTotal sums the non-voided payments of a booking in the given
// currency. Payments in a different currency abort the reconciliation.
func (r Reconciler) SettledTotal(ctx context.Context, id booking.BookingID, zero money.Money) (money.Money, error) {
	items, err := r.Payments.ListByBooking(ctx, id)
	if err != nil {
		return money.Money{}, err
	}
	total := zero.Zero()
	for _, p := range items {
		if p.Voided() {
			continue
		}
		total, err = total.Add(p.Amount)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
