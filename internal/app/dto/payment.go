package dto

import (
	"time"

	domainpayment "hems/internal/domain/payment"
)

type PaymentSummary struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"booking_id"`
	Amount     MoneyDTO  `json:"amount"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
	VoidedAt   time.Time `json:"voided_at,omitzero"`
}

type PaymentCollection struct {
	Items []PaymentSummary `json:"items"`
}

func MapPaymentSummary(p *domainpayment.Payment) PaymentSummary {
	return PaymentSummary{
		ID:         string(p.ID),
		BookingID:  string(p.BookingID),
		Amount:     MapMoney(p.Amount),
		Status:     string(p.Status),
		RecordedAt: p.RecordedAt,
		VoidedAt:   p.VoidedAt,
	}
}
