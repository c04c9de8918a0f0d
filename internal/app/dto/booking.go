package dto

import (
	"time"

	domainbooking "hems/internal/domain/booking"
	"hems/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

type BookingSummary struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	RoomID        string    `json:"room_id"`
	Start         time.Time `json:"start"`
	Days          int       `json:"days"`
	End           time.Time `json:"end"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Rate          MoneyDTO  `json:"rate"`
	TotalDue      MoneyDTO  `json:"total_due"`
	CreatedAt     time.Time `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

func MapBookingSummary(b *domainbooking.Booking) BookingSummary {
	return BookingSummary{
		ID:            string(b.ID),
		UserID:        b.UserID,
		RoomID:        string(b.RoomID),
		Start:         b.Stay.Start,
		Days:          b.Stay.Days,
		End:           b.Stay.End(),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		Rate:          MapMoney(b.Rate),
		TotalDue:      MapMoney(b.TotalDue()),
		CreatedAt:     b.CreatedAt,
	}
}
