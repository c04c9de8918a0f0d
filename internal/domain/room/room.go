package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"hems/internal/domain/shared/events"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

var (
	ErrNotFound       = errors.New("room: not found")
	ErrNumberRequired = errors.New("room: room number is required")
	ErrTypeRequired   = errors.New("room: room type is required")
	ErrNegativeRate   = errors.New("room: nightly rate must be non-negative")
	ErrNumberTaken    = errors.New("room: room number already registered")
	ErrRoomBusy       = errors.New("room: active bookings prevent maintenance")
	ErrNotInService   = errors.New("room: not under maintenance")
)

type RoomID string

type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

// Room is the registry's unit of inventory. Status is never stored: it is
// derived from the maintenance flag and the set of active bookings.
type Room struct {
	ID          RoomID
	Number      string
	Type        string
	Rate        money.Money
	Maintenance bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	ByNumber(ctx context.Context, number string) (*Room, error)
	Save(ctx context.Context, room *Room) error
	List(ctx context.Context) ([]*Room, error)
}

type CreateParams struct {
	ID        RoomID
	Number    string
	Type      string
	Rate      money.Money
	CreatedAt time.Time
}

func NewRoom(params CreateParams) (*Room, error) {
	number := strings.TrimSpace(params.Number)
	if number == "" {
		return nil, ErrNumberRequired
	}
	roomType := strings.TrimSpace(params.Type)
	if roomType == "" {
		return nil, ErrTypeRequired
	}
	if params.Rate.Amount < 0 {
		return nil, ErrNegativeRate
	}
	now := params.CreatedAt.UTC()
	r := &Room{
		ID:        params.ID,
		Number:    number,
		Type:      roomType,
		Rate:      params.Rate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(RoomRegistered{RoomID: r.ID, Number: r.Number, Type: r.Type, Rate: r.Rate, At: now})
	return r, nil
}

// StatusOn derives the room status for the given moment from the active
// booking stays on the room. Occupied wins over maintenance, although the
// two cannot coexist because maintenance is rejected while bookings exist.
func (r *Room) StatusOn(now time.Time, active []stay.Stay) Status {
	for _, s := range active {
		if s.Covers(now) {
			return StatusOccupied
		}
	}
	if r.Maintenance {
		return StatusMaintenance
	}
	return StatusAvailable
}

// ChangeRate replaces the nightly rate. Existing bookings keep the rate
// snapshotted at creation time.
func (r *Room) ChangeRate(rate money.Money, now time.Time) error {
	if rate.Amount < 0 {
		return ErrNegativeRate
	}
	r.Rate = rate
	r.UpdatedAt = now.UTC()
	r.Record(RoomRateChanged{RoomID: r.ID, Rate: rate, At: r.UpdatedAt})
	return nil
}

// EnterMaintenance flags the room out of service. The caller must have
// verified there is no active booking on the room.
func (r *Room) EnterMaintenance(now time.Time) {
	if r.Maintenance {
		return
	}
	r.Maintenance = true
	r.UpdatedAt = now.UTC()
	r.Record(MaintenanceStarted{RoomID: r.ID, At: r.UpdatedAt})
}

func (r *Room) ExitMaintenance(now time.Time) error {
	if !r.Maintenance {
		return ErrNotInService
	}
	r.Maintenance = false
	r.UpdatedAt = now.UTC()
	r.Record(MaintenanceEnded{RoomID: r.ID, At: r.UpdatedAt})
	return nil
}
