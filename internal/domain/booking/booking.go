package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"hems/internal/domain/room"
	"hems/internal/domain/shared/events"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

var (
	ErrNotFound          = errors.New("booking: not found")
	ErrUserRequired      = errors.New("booking: user id required")
	ErrStartInPast       = errors.New("booking: start date is in the past")
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	ErrBalanceDue        = errors.New("booking: cannot complete while balance is due")
)

type BookingID string

type Status string

const (
	StatusActive    Status = "active"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Booking is the ledger's aggregate. It is the sole writer of Status and
// PaymentStatus; both only ever change through the methods below. Rate is
// the nightly rate snapshotted at creation, so a later room rate change
// does not alter what an existing booking owes.
type Booking struct {
	ID            BookingID
	UserID        string
	RoomID        room.RoomID
	Stay          stay.Stay
	Rate          money.Money
	Status        Status
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

// Filter narrows ListBookings results; zero values match everything.
type Filter struct {
	UserID string
	RoomID room.RoomID
	Status Status
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	List(ctx context.Context, filter Filter) ([]*Booking, error)
	// ActiveStays satisfies room.StaySource: the stays of this room's
	// bookings still in the active state, read inside the current
	// transaction.
	ActiveStays(ctx context.Context, roomID room.RoomID) ([]stay.Stay, error)
}

type CreateParams struct {
	ID        BookingID
	UserID    string
	RoomID    room.RoomID
	Stay      stay.Stay
	Rate      money.Money
	CreatedAt time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	if params.Stay.StartsBefore(now) {
		return nil, ErrStartInPast
	}
	b := &Booking{
		ID:            params.ID,
		UserID:        params.UserID,
		RoomID:        params.RoomID,
		Stay:          params.Stay,
		Rate:          params.Rate,
		Status:        StatusActive,
		PaymentStatus: PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	b.Record(BookingCreated{BookingID: b.ID, RoomID: b.RoomID, UserID: b.UserID, Stay: b.Stay, TotalDue: b.TotalDue(), At: now})
	return b, nil
}

// TotalDue is the nightly rate times the number of booked days.
func (b *Booking) TotalDue() money.Money {
	return b.Rate.MultiplyDays(b.Stay.Days)
}

func (b *Booking) Cancel(now time.Time) error {
	if b.Status != StatusActive {
		return ErrInvalidTransition
	}
	b.Status = StatusCanceled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCanceled{BookingID: b.ID, RoomID: b.RoomID, At: b.UpdatedAt})
	return nil
}

// Complete closes out a fully paid stay. A booking cannot complete while
// money is owed.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusActive {
		return ErrInvalidTransition
	}
	if b.PaymentStatus != PaymentPaid {
		return ErrBalanceDue
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, RoomID: b.RoomID, At: b.UpdatedAt})
	return nil
}

// ReconcilePayments commits the payment status implied by the settled
// (non-voided) payment total against the total due: paid at or above the
// total, partial for anything in between, unpaid at zero. Overpayment
// still reads as paid.
func (b *Booking) ReconcilePayments(settled money.Money, now time.Time) {
	due := b.TotalDue()
	status := PaymentUnpaid
	switch {
	case due.IsPositive() && settled.GreaterOrEqual(due):
		status = PaymentPaid
	case !due.IsPositive() && !settled.IsZero():
		status = PaymentPaid
	case settled.IsPositive():
		status = PaymentPartial
	}
	if status == b.PaymentStatus {
		return
	}
	b.PaymentStatus = status
	b.UpdatedAt = now.UTC()
	b.Record(PaymentStatusChanged{BookingID: b.ID, PaymentStatus: status, Settled: settled, TotalDue: due, At: b.UpdatedAt})
}
