package room

import (
	"time"

	"hems/internal/domain/shared/money"
)

type RoomRegistered struct {
	RoomID RoomID
	Number string
	Type   string
	Rate   money.Money
	At     time.Time
}

func (e RoomRegistered) EventName() string     { return "room.registered" }
func (e RoomRegistered) AggregateID() string   { return string(e.RoomID) }
func (e RoomRegistered) OccurredAt() time.Time { return e.At }

type RoomRateChanged struct {
	RoomID RoomID
	Rate   money.Money
	At     time.Time
}

func (e RoomRateChanged) EventName() string     { return "room.rate_changed" }
func (e RoomRateChanged) AggregateID() string   { return string(e.RoomID) }
func (e RoomRateChanged) OccurredAt() time.Time { return e.At }

type MaintenanceStarted struct {
	RoomID RoomID
	At     time.Time
}

func (e MaintenanceStarted) EventName() string     { return "room.maintenance_started" }
func (e MaintenanceStarted) AggregateID() string   { return string(e.RoomID) }
func (e MaintenanceStarted) OccurredAt() time.Time { return e.At }

type MaintenanceEnded struct {
	RoomID RoomID
	At     time.Time
}

func (e MaintenanceEnded) EventName() string     { return "room.maintenance_ended" }
func (e MaintenanceEnded) AggregateID() string   { return string(e.RoomID) }
func (e MaintenanceEnded) OccurredAt() time.Time { return e.At }
