package dto

import (
	"time"

	domainroom "hems/internal/domain/room"
)

type RoomSummary struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Rate      MoneyDTO  `json:"rate"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RoomCollection struct {
	Items []RoomSummary `json:"items"`
}

func MapRoomSummary(r *domainroom.Room, status domainroom.Status) RoomSummary {
	return RoomSummary{
		ID:        string(r.ID),
		Number:    r.Number,
		Type:      r.Type,
		Rate:      MapMoney(r.Rate),
		Status:    string(status),
		CreatedAt: r.CreatedAt,
	}
}

type RoomAvailability struct {
	RoomID    string    `json:"room_id"`
	Start     time.Time `json:"start"`
	Days      int       `json:"days"`
	Available bool      `json:"available"`
}
