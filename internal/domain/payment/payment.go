package payment

import (
	"context"
	"errors"
	"time"

	"hems/internal/domain/booking"
	"hems/internal/domain/shared/events"
	"hems/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("payment: not found")
	ErrInvalidAmount = errors.New("payment: amount must be positive")
	ErrAlreadyVoided = errors.New("payment: already voided")
)

type PaymentID string

type Status string

const (
	StatusSettled Status = "settled"
	StatusVoided  Status = "voided"
)

// Payment records money received against a booking. The amount is
// immutable once created; the only transition is settled -> voided.
// RecordedAt is a server-side insertion timestamp.
type Payment struct {
	ID         PaymentID
	BookingID  booking.BookingID
	Amount     money.Money
	Status     Status
	RecordedAt time.Time
	VoidedAt   time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PaymentID) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
	ListByBooking(ctx context.Context, id booking.BookingID) ([]*Payment, error)
}

type CreateParams struct {
	ID         PaymentID
	BookingID  booking.BookingID
	Amount     money.Money
	RecordedAt time.Time
}

func NewPayment(params CreateParams) (*Payment, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	now := params.RecordedAt.UTC()
	p := &Payment{
		ID:         params.ID,
		BookingID:  params.BookingID,
		Amount:     params.Amount,
		Status:     StatusSettled,
		RecordedAt: now,
	}
	p.Record(PaymentRecorded{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount, At: now})
	return p, nil
}

func (p *Payment) Voided() bool {
	return p.Status == StatusVoided
}

// Void reverses the payment. The amount stays on record; only the status
// flips, taking the payment out of the settled total.
func (p *Payment) Void(now time.Time) error {
	if p.Voided() {
		return ErrAlreadyVoided
	}
	p.Status = StatusVoided
	p.VoidedAt = now.UTC()
	p.Record(PaymentVoided{PaymentID: p.ID, BookingID: p.BookingID, Amount: p.Amount, At: p.VoidedAt})
	return nil
}
