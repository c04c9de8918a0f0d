package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

type staticStays []stay.Stay

func (s staticStays) ActiveStays(ctx context.Context, id RoomID) ([]stay.Stay, error) {
	return s, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRegistryReserve(t *testing.T) {
	existing := stay.Stay{Start: day(2026, 9, 10), Days: 3} // [10, 13)
	registry := Registry{Stays: staticStays{existing}}
	ctx := context.Background()

	if err := registry.Reserve(ctx, "room-1", stay.Stay{Start: day(2026, 9, 11), Days: 1}); !errors.Is(err, ErrRoomUnavailable) {
		t.Fatalf("overlap: got %v, want ErrRoomUnavailable", err)
	}
	if err := registry.Reserve(ctx, "room-1", stay.Stay{Start: day(2026, 9, 13), Days: 2}); err != nil {
		t.Fatalf("back to back stay must succeed: %v", err)
	}
	if err := registry.Reserve(ctx, "room-1", stay.Stay{Start: day(2026, 9, 7), Days: 3}); err != nil {
		t.Fatalf("stay ending at existing checkin must succeed: %v", err)
	}
}

func TestRegistryHasActiveBookings(t *testing.T) {
	ctx := context.Background()
	busy, err := Registry{Stays: staticStays{{Start: day(2026, 9, 10), Days: 1}}}.HasActiveBookings(ctx, "room-1")
	if err != nil || !busy {
		t.Fatalf("busy = %v, err = %v; want true", busy, err)
	}
	busy, err = Registry{Stays: staticStays{}}.HasActiveBookings(ctx, "room-1")
	if err != nil || busy {
		t.Fatalf("busy = %v, err = %v; want false", busy, err)
	}
}

func TestNewRoomValidation(t *testing.T) {
	base := CreateParams{ID: "r", Number: "101", Type: "single", Rate: money.Must(9000, "USD"), CreatedAt: day(2026, 9, 1)}

	if _, err := NewRoom(base); err != nil {
		t.Fatalf("valid room: %v", err)
	}
	missingNumber := base
	missingNumber.Number = "  "
	if _, err := NewRoom(missingNumber); !errors.Is(err, ErrNumberRequired) {
		t.Fatalf("got %v, want ErrNumberRequired", err)
	}
	missingType := base
	missingType.Type = ""
	if _, err := NewRoom(missingType); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("got %v, want ErrTypeRequired", err)
	}
	negative := base
	negative.Rate = money.Money{Amount: -1, Currency: "USD"}
	if _, err := NewRoom(negative); !errors.Is(err, ErrNegativeRate) {
		t.Fatalf("got %v, want ErrNegativeRate", err)
	}
}

func TestStatusOn(t *testing.T) {
	rm, err := NewRoom(CreateParams{ID: "r", Number: "101", Type: "single", Rate: money.Must(9000, "USD"), CreatedAt: day(2026, 9, 1)})
	if err != nil {
		t.Fatalf("NewRoom: %v", err)
	}
	today := day(2026, 9, 11)

	if got := rm.StatusOn(today, nil); got != StatusAvailable {
		t.Fatalf("empty room: %q, want available", got)
	}
	covering := []stay.Stay{{Start: day(2026, 9, 10), Days: 3}}
	if got := rm.StatusOn(today, covering); got != StatusOccupied {
		t.Fatalf("covered day: %q, want occupied", got)
	}
	future := []stay.Stay{{Start: day(2026, 9, 20), Days: 2}}
	if got := rm.StatusOn(today, future); got != StatusAvailable {
		t.Fatalf("future booking only: %q, want available", got)
	}

	rm.EnterMaintenance(today)
	if got := rm.StatusOn(today, nil); got != StatusMaintenance {
		t.Fatalf("maintenance: %q", got)
	}
	if err := rm.ExitMaintenance(today); err != nil {
		t.Fatalf("exit maintenance: %v", err)
	}
	if err := rm.ExitMaintenance(today); !errors.Is(err, ErrNotInService) {
		t.Fatalf("double exit: got %v, want ErrNotInService", err)
	}
}
