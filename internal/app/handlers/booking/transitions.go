package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
)

const (
	cancelBookingKey   = "booking.cancel"
	completeBookingKey = "booking.complete"
)

type CancelBookingCommand struct {
	BookingID string
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

type BookingTransitionResult struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type CancelBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle cancels an active booking. Cancellation releases the room's date
// range (the booking drops out of the active set) but does not refund
// payments; voiding is a separate explicit operation.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*BookingTransitionResult, error) {
	bk, err := loadBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	unit, _ := uow.FromContext(ctx)

	if err := bk.Cancel(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking canceled", "booking_id", bk.ID, "room_id", bk.RoomID)
	}
	return &BookingTransitionResult{BookingID: string(bk.ID), Status: string(bk.Status), PaymentStatus: string(bk.PaymentStatus)}, nil
}

type CompleteBookingHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*BookingTransitionResult, error) {
	bk, err := loadBooking(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	unit, _ := uow.FromContext(ctx)

	if err := bk.Complete(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, bk); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking completed", "booking_id", bk.ID, "room_id", bk.RoomID)
	}
	return &BookingTransitionResult{BookingID: string(bk.ID), Status: string(bk.Status), PaymentStatus: string(bk.PaymentStatus)}, nil
}

func loadBooking(ctx context.Context, id string) (*domainbooking.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainbooking.ErrNotFound
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit.Bookings().ByID(ctx, domainbooking.BookingID(id))
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, bk *domainbooking.Booking) error {
	pending := bk.PendingEvents()
	bk.ClearEvents()
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[CancelBookingCommand, *BookingTransitionResult] = (*CancelBookingHandler)(nil)
var _ commands.Handler[CompleteBookingCommand, *BookingTransitionResult] = (*CompleteBookingHandler)(nil)
