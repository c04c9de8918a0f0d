package room

import (
	"context"
	"errors"
	"testing"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/dto"
	bookingapp "hems/internal/app/handlers/booking"
	"hems/internal/app/queries"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/stay"
)

func TestRoomAvailabilityQuery(t *testing.T) {
	bus, factory := newRoomFixture(t)
	registerRoom(t, bus, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, RoomAvailabilityQuery{}.Key(), &RoomAvailabilityHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, GetRoomQuery{}.Key(), &GetRoomHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, ListRoomsQuery{}.Key(), &ListRoomsHandler{UoWFactory: factory})

	free, err := queries.Ask[RoomAvailabilityQuery, dto.RoomAvailability](ctx, queryBus, RoomAvailabilityQuery{
		RoomID: "room-1", Start: start, Days: 2,
	})
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !free.Available {
		t.Fatal("empty room must be available")
	}

	_, err = commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](ctx, bus, bookingapp.CreateBookingCommand{
		CommandID: "bk-1", UserID: "guest-1", RoomID: "room-1", Start: start, Days: 2,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	taken, err := queries.Ask[RoomAvailabilityQuery, dto.RoomAvailability](ctx, queryBus, RoomAvailabilityQuery{
		RoomID: "room-1", Start: start.AddDate(0, 0, 1), Days: 1,
	})
	if err != nil {
		t.Fatalf("availability after booking: %v", err)
	}
	if taken.Available {
		t.Fatal("overlapping range must not be available")
	}

	// Checkout day can be someone else's checkin day.
	after, err := queries.Ask[RoomAvailabilityQuery, dto.RoomAvailability](ctx, queryBus, RoomAvailabilityQuery{
		RoomID: "room-1", Start: start.AddDate(0, 0, 2), Days: 1,
	})
	if err != nil {
		t.Fatalf("availability after checkout: %v", err)
	}
	if !after.Available {
		t.Fatal("range starting on checkout day must be available")
	}

	if _, err := queries.Ask[RoomAvailabilityQuery, dto.RoomAvailability](ctx, queryBus, RoomAvailabilityQuery{
		RoomID: "room-1", Start: start, Days: 0,
	}); !errors.Is(err, stay.ErrInvalidDays) {
		t.Fatalf("zero days: got %v, want ErrInvalidDays", err)
	}
	if _, err := queries.Ask[RoomAvailabilityQuery, dto.RoomAvailability](ctx, queryBus, RoomAvailabilityQuery{
		RoomID: "missing", Start: start, Days: 1,
	}); !errors.Is(err, domainroom.ErrNotFound) {
		t.Fatalf("unknown room: got %v, want ErrNotFound", err)
	}

	summary, err := queries.Ask[GetRoomQuery, dto.RoomSummary](ctx, queryBus, GetRoomQuery{RoomID: "room-1"})
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if summary.Number != "101" || summary.Rate.Amount != 10000 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	list, err := queries.Ask[ListRoomsQuery, dto.RoomCollection](ctx, queryBus, ListRoomsQuery{})
	if err != nil {
		t.Fatalf("list rooms: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("rooms = %d, want 1", len(list.Items))
	}
}
