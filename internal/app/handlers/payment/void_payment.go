package payment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	"hems/internal/domain/shared/events"
	"hems/internal/domain/shared/money"
)

const voidPaymentKey = "payment.void"

type VoidPaymentCommand struct {
	PaymentID string
}

func (c VoidPaymentCommand) Key() string { return voidPaymentKey }

type VoidPaymentResult struct {
	PaymentID     string `json:"payment_id"`
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
	Settled       int64  `json:"settled"`
	Currency      string `json:"currency"`
}

// VoidPaymentHandler reverses a settled payment. The booking's payment
// status is re-derived from what remains, so a booking can drop back
// from paid to partial or unpaid.
type VoidPaymentHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *VoidPaymentHandler) Handle(ctx context.Context, cmd VoidPaymentCommand) (*VoidPaymentResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.PaymentID) == "" {
		return nil, domainpayment.ErrNotFound
	}

	pm, err := unit.Payments().ByID(ctx, domainpayment.PaymentID(cmd.PaymentID))
	if err != nil {
		return nil, err
	}
	bk, err := unit.Bookings().ByID(ctx, pm.BookingID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := pm.Void(now); err != nil {
		return nil, err
	}
	if err := unit.Payments().Save(ctx, pm); err != nil {
		return nil, err
	}

	settled, bk, err := reconcileBooking(ctx, unit, bk, now)
	if err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, pm.PendingEvents(), bk.PendingEvents()); err != nil {
		return nil, err
	}
	pm.ClearEvents()
	bk.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("payment voided",
			"payment_id", pm.ID, "booking_id", bk.ID, "payment_status", bk.PaymentStatus)
	}
	return &VoidPaymentResult{
		PaymentID:     string(pm.ID),
		BookingID:     string(bk.ID),
		PaymentStatus: string(bk.PaymentStatus),
		Settled:       settled.Amount,
		Currency:      settled.Currency,
	}, nil
}

// reconcileBooking recomputes the settled total inside the current unit
// and persists the booking if its payment status moved.
func reconcileBooking(ctx context.Context, unit uow.UnitOfWork, bk *domainbooking.Booking, now time.Time) (money.Money, *domainbooking.Booking, error) {
	reconciler := domainpayment.Reconciler{Payments: unit.Payments()}
	settled, err := reconciler.SettledTotal(ctx, bk.ID, bk.Rate)
	if err != nil {
		return money.Money{}, nil, err
	}
	bk.ReconcilePayments(settled, now)
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return money.Money{}, nil, err
	}
	return settled, bk, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, batches ...[]events.DomainEvent) error {
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	for _, pending := range batches {
		if err := outbox.RecordDomainEvents(ctx, box, encoder, pending); err != nil {
			return err
		}
	}
	return nil
}

var _ commands.Handler[VoidPaymentCommand, *VoidPaymentResult] = (*VoidPaymentHandler)(nil)
