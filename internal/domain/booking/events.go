package booking

import (
	"time"

	"hems/internal/domain/room"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

type BookingCreated struct {
	BookingID BookingID
	RoomID    room.RoomID
	UserID    string
	Stay      stay.Stay
	TotalDue  money.Money
	At        time.Time
}

func (e BookingCreated) EventName() string     { return "booking.created" }
func (e BookingCreated) AggregateID() string   { return string(e.BookingID) }
func (e BookingCreated) OccurredAt() time.Time { return e.At }

type BookingCanceled struct {
	BookingID BookingID
	RoomID    room.RoomID
	At        time.Time
}

func (e BookingCanceled) EventName() string     { return "booking.canceled" }
func (e BookingCanceled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCanceled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID BookingID
	RoomID    room.RoomID
	At        time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }

type PaymentStatusChanged struct {
	BookingID     BookingID
	PaymentStatus PaymentStatus
	Settled       money.Money
	TotalDue      money.Money
	At            time.Time
}

func (e PaymentStatusChanged) EventName() string     { return "booking.payment_status_changed" }
func (e PaymentStatusChanged) AggregateID() string   { return string(e.BookingID) }
func (e PaymentStatusChanged) OccurredAt() time.Time { return e.At }
