package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/middleware"
	appoutbox "hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
	"hems/internal/infra/storage/memory"
)

type pipelineFixture struct {
	bus     commands.Bus
	factory memory.Factory
	outbox  *memory.Outbox
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	factory := memory.Factory{Store: memory.NewStore()}
	box := memory.NewOutbox()
	encoder := appoutbox.JSONEventEncoder{}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, CreateBookingCommand{}.Key(), &CreateBookingHandler{
		UoWFactory: factory, Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(base, CancelBookingCommand{}.Key(), &CancelBookingHandler{
		Outbox: box, Encoder: encoder,
	})
	commands.RegisterHandler(base, CompleteBookingCommand{}.Key(), &CompleteBookingHandler{
		Outbox: box, Encoder: encoder,
	})

	bus := middleware.ChainCommands(
		base,
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
		middleware.Transaction(factory, nil, []time.Duration{time.Millisecond}),
		middleware.OutboxFlush(box),
	)
	return &pipelineFixture{bus: bus, factory: factory, outbox: box}
}

func (f *pipelineFixture) seedRoom(t *testing.T, id, number string) {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	rm, err := domainroom.NewRoom(domainroom.CreateParams{
		ID:        domainroom.RoomID(id),
		Number:    number,
		Type:      "double",
		Rate:      money.Must(10000, "USD"),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	rm.ClearEvents()
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		t.Fatalf("save room: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func (f *pipelineFixture) bookings(t *testing.T) []*domainbooking.Booking {
	t.Helper()
	ctx := context.Background()
	unit, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		t.Fatalf("begin read: %v", err)
	}
	defer unit.Rollback(ctx)
	items, err := unit.Bookings().List(ctx, domainbooking.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return items
}

func createCmd(id string, start time.Time, days int) CreateBookingCommand {
	return CreateBookingCommand{
		CommandID: id,
		UserID:    "guest-1",
		RoomID:    "room-1",
		Start:     start,
		Days:      days,
	}
}

func TestCreateBookingLifecycle(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	result, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-1", start, 3))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Status != string(domainbooking.StatusActive) || result.PaymentStatus != string(domainbooking.PaymentUnpaid) {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TotalDue != 30000 {
		t.Fatalf("total due = %d, want 30000", result.TotalDue)
	}

	// Overlapping range on the same room must be rejected.
	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-2", start.AddDate(0, 0, 1), 1))
	if !errors.Is(err, domainroom.ErrRoomUnavailable) {
		t.Fatalf("overlap: got %v, want ErrRoomUnavailable", err)
	}

	// Canceling releases the range for a fresh booking.
	if _, err := commands.Dispatch[CancelBookingCommand, *BookingTransitionResult](ctx, f.bus, CancelBookingCommand{BookingID: "bk-1"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-3", start, 3)); err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestCreateBookingValidationPersistsNothing(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	_, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-1", start, 0))
	if !errors.Is(err, stay.ErrInvalidDays) {
		t.Fatalf("got %v, want ErrInvalidDays", err)
	}
	if got := f.bookings(t); len(got) != 0 {
		t.Fatalf("booking persisted on validation failure: %d", len(got))
	}
}

func TestCreateBookingRejections(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	_, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, CreateBookingCommand{
		CommandID: "bk-1", UserID: "guest-1", RoomID: "missing", Start: start, Days: 1,
	})
	if !errors.Is(err, domainroom.ErrNotFound) {
		t.Fatalf("unknown room: got %v, want ErrNotFound", err)
	}

	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, CreateBookingCommand{
		CommandID: "bk-2", RoomID: "room-1", Start: start, Days: 1,
	})
	if !errors.Is(err, domainbooking.ErrUserRequired) {
		t.Fatalf("missing user: got %v, want ErrUserRequired", err)
	}

	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-3", time.Now().UTC().AddDate(0, 0, -2), 1))
	if !errors.Is(err, domainbooking.ErrStartInPast) {
		t.Fatalf("past start: got %v, want ErrStartInPast", err)
	}
}

func TestCreateBookingMaintenanceRoom(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	rm, err := domainroom.NewRoom(domainroom.CreateParams{
		ID: "room-1", Number: "101", Type: "double",
		Rate: money.Must(10000, "USD"), CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	rm.EnterMaintenance(time.Now().UTC())
	rm.ClearEvents()
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-1", time.Now().UTC().AddDate(0, 0, 7), 1))
	if !errors.Is(err, domainroom.ErrRoomUnavailable) {
		t.Fatalf("got %v, want ErrRoomUnavailable", err)
	}
}

func TestConcurrentCreateExactlyOneWins(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	start := time.Now().UTC().AddDate(0, 0, 7)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](context.Background(), f.bus, createCmd(fmt.Sprintf("bk-%d", i), start, 2))
			results[i] = err
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domainroom.ErrRoomUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != attempts-1 {
		t.Fatalf("won = %d, lost = %d; want exactly one winner", won, lost)
	}
	if got := f.bookings(t); len(got) != 1 {
		t.Fatalf("persisted bookings = %d, want 1", len(got))
	}
}

func TestCreateBookingWritesRoomRow(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	roomVersion := func() int64 {
		unit, err := f.factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			t.Fatalf("begin read: %v", err)
		}
		defer unit.Rollback(ctx)
		rm, err := unit.Rooms().ByID(ctx, "room-1")
		if err != nil {
			t.Fatalf("room: %v", err)
		}
		return rm.Version
	}

	before := roomVersion()
	if _, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-1", start, 2)); err != nil {
		t.Fatalf("create: %v", err)
	}
	// The create must bump the room version: the booking insert alone shares
	// no document with a concurrent create, so the room write is what makes
	// two overlapping transactions collide instead of both committing.
	if after := roomVersion(); after != before+1 {
		t.Fatalf("room version = %d, want %d", after, before+1)
	}
}

func TestFailedCommandNotCachedByKey(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()

	bad := createCmd("bk-1", time.Now().UTC().AddDate(0, 0, -2), 1)
	bad.IdempotencyKeyV = "key-1"
	_, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, bad)
	if !errors.Is(err, domainbooking.ErrStartInPast) {
		t.Fatalf("first dispatch: got %v, want ErrStartInPast", err)
	}

	// Repeating the failed command must surface the same sentinel, not a
	// flattened copy of its message.
	_, err = commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, bad)
	if !errors.Is(err, domainbooking.ErrStartInPast) {
		t.Fatalf("repeat dispatch: got %v, want ErrStartInPast", err)
	}

	// A corrected command under the same key goes through.
	good := createCmd("bk-2", time.Now().UTC().AddDate(0, 0, 7), 1)
	good.IdempotencyKeyV = "key-1"
	if _, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, good); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if got := f.bookings(t); len(got) != 1 {
		t.Fatalf("persisted bookings = %d, want 1", len(got))
	}
}

func TestCreateBookingIdempotencyReplay(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	cmd := createCmd("bk-1", start, 2)
	cmd.IdempotencyKeyV = "key-1"
	first, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, cmd)
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}

	// Same key with a fresh command id: the stored result replays and the
	// second booking is never created.
	cmd.CommandID = "bk-2"
	second, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, cmd)
	if err != nil {
		t.Fatalf("replay dispatch: %v", err)
	}
	if second.BookingID != first.BookingID {
		t.Fatalf("replay returned %q, want %q", second.BookingID, first.BookingID)
	}
	if got := f.bookings(t); len(got) != 1 {
		t.Fatalf("persisted bookings = %d, want 1", len(got))
	}
}

func TestCompleteBookingEndToEnd(t *testing.T) {
	f := newPipelineFixture(t)
	f.seedRoom(t, "room-1", "101")
	ctx := context.Background()
	start := time.Now().UTC().AddDate(0, 0, 7)

	if _, err := commands.Dispatch[CreateBookingCommand, *CreateBookingResult](ctx, f.bus, createCmd("bk-1", start, 2)); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := commands.Dispatch[CompleteBookingCommand, *BookingTransitionResult](ctx, f.bus, CompleteBookingCommand{BookingID: "bk-1"})
	if !errors.Is(err, domainbooking.ErrBalanceDue) {
		t.Fatalf("unpaid complete: got %v, want ErrBalanceDue", err)
	}

	// Settle the balance behind the ledger's back, then reconcile the way
	// the payment pipeline does.
	unit, err := f.factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	bk, err := unit.Bookings().ByID(ctx, "bk-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bk.ReconcilePayments(money.Must(20000, "USD"), time.Now().UTC())
	bk.ClearEvents()
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := unit.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	result, err := commands.Dispatch[CompleteBookingCommand, *BookingTransitionResult](ctx, f.bus, CompleteBookingCommand{BookingID: "bk-1"})
	if err != nil {
		t.Fatalf("paid complete: %v", err)
	}
	if result.Status != string(domainbooking.StatusCompleted) {
		t.Fatalf("status = %q, want completed", result.Status)
	}

	_, err = commands.Dispatch[CancelBookingCommand, *BookingTransitionResult](ctx, f.bus, CancelBookingCommand{BookingID: "bk-1"})
	if !errors.Is(err, domainbooking.ErrInvalidTransition) {
		t.Fatalf("cancel completed: got %v, want ErrInvalidTransition", err)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newPipelineFixture(t)
	_, err := commands.Dispatch[CancelBookingCommand, *BookingTransitionResult](context.Background(), f.bus, CancelBookingCommand{BookingID: "missing"})
	if !errors.Is(err, domainbooking.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
