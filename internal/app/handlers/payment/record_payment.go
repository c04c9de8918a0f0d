package payment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/middleware"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	"hems/internal/domain/shared/money"
)

const recordPaymentKey = "payment.record"

type RecordPaymentCommand struct {
	CommandID       string
	BookingID       string
	Amount          int64
	Currency        string
	IdempotencyKeyV string
}

func (c RecordPaymentCommand) Key() string { return recordPaymentKey }

func (c RecordPaymentCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c RecordPaymentCommand) ResultPrototype() any { return &RecordPaymentResult{} }

type RecordPaymentResult struct {
	PaymentID     string `json:"payment_id"`
	BookingID     string `json:"booking_id"`
	PaymentStatus string `json:"payment_status"`
	Settled       int64  `json:"settled"`
	TotalDue      int64  `json:"total_due"`
	Currency      string `json:"currency"`
}

// RecordPaymentHandler appends a settled payment to a booking and folds
// the new total back into the booking's payment status in the same
// transaction.
type RecordPaymentHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*RecordPaymentResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.BookingID) == "" {
		return nil, domainbooking.ErrNotFound
	}

	bk, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	// Payments only attach to active bookings.
	if bk.Status != domainbooking.StatusActive {
		return nil, domainbooking.ErrInvalidTransition
	}

	amount, err := money.New(cmd.Amount, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if !amount.SameCurrency(bk.Rate) {
		return nil, money.ErrCurrencyMismatch
	}

	now := time.Now().UTC()
	pm, err := domainpayment.NewPayment(domainpayment.CreateParams{
		ID:         domainpayment.PaymentID(cmd.CommandID),
		BookingID:  bk.ID,
		Amount:     amount,
		RecordedAt: now,
	})
	if err != nil {
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
		h.Logger.Info("payment recorded",
			"payment_id", pm.ID, "booking_id", bk.ID,
			"amount", amount.Amount, "payment_status", bk.PaymentStatus)
	}
	return &RecordPaymentResult{
		PaymentID:     string(pm.ID),
		BookingID:     string(bk.ID),
		PaymentStatus: string(bk.PaymentStatus),
		Settled:       settled.Amount,
		TotalDue:      bk.TotalDue().Amount,
		Currency:      settled.Currency,
	}, nil
}

var _ commands.Handler[RecordPaymentCommand, *RecordPaymentResult] = (*RecordPaymentHandler)(nil)
var _ middleware.IdempotentCommand = (*RecordPaymentCommand)(nil)
