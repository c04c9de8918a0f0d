package payment

import (
	"time"

	"hems/internal/domain/booking"
	"hems/internal/domain/shared/money"
)

type PaymentRecorded struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Amount    money.Money
	At        time.Time
}

func (e PaymentRecorded) EventName() string     { return "payment.recorded" }
func (e PaymentRecorded) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentRecorded) OccurredAt() time.Time { return e.At }

type PaymentVoided struct {
	PaymentID PaymentID
	BookingID booking.BookingID
	Amount    money.Money
	At        time.Time
}

func (e PaymentVoided) EventName() string     { return "payment.voided" }
func (e PaymentVoided) AggregateID() string   { return string(e.PaymentID) }
func (e PaymentVoided) OccurredAt() time.Time { return e.At }
