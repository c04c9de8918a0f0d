package room

import (
	"context"
	"errors"

	"hems/internal/domain/shared/stay"
)

// ErrRoomUnavailable signals an overlap with an existing active booking.
// It is retryable by the caller with a different range, never internally.
var ErrRoomUnavailable = errors.New("room: requested range overlaps an active booking")

// StaySource exposes the stays of bookings currently in the active state.
// The booking repository bound to the ambient transaction implements it,
// so a Reserve check and the subsequent booking insert commit atomically.
type StaySource interface {
	ActiveStays(ctx context.Context, roomID RoomID) ([]stay.Stay, error)
}

// Registry answers availability questions for rooms. Release needs no
// explicit bookkeeping: a booking leaving the active state drops out of
// the StaySource, which makes repeated releases naturally idempotent.
type Registry struct {
	Stays StaySource
}

// IsAvailable is true iff no active booking on the room overlaps the stay.
func (g Registry) IsAvailable(ctx context.Context, id RoomID, s stay.Stay) (bool, error) {
	active, err := g.Stays.ActiveStays(ctx, id)
	if err != nil {
		return false, err
	}
	for _, existing := range active {
		if existing.Overlaps(s) {
			return false, nil
		}
	}
	return true, nil
}

// Reserve re-checks availability inside the current transaction and fails
// with ErrRoomUnavailable when an overlapping active booking exists.
func (g Registry) Reserve(ctx context.Context, id RoomID, s stay.Stay) error {
	ok, err := g.IsAvailable(ctx, id, s)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomUnavailable
	}
	return nil
}

// HasActiveBookings reports whether any booking on the room is still active.
func (g Registry) HasActiveBookings(ctx context.Context, id RoomID) (bool, error) {
	active, err := g.Stays.ActiveStays(ctx, id)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}
