package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/middleware"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/stay"
)

const createBookingKey = "booking.create"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type CreateBookingCommand struct {
	CommandID       string
	UserID          string
	RoomID          string
	Start           time.Time
	Days            int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	TotalDue      int64  `json:"total_due"`
	Currency      string `json:"currency"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	requested, err := stay.New(cmd.Start, cmd.Days)
	if err != nil {
		return nil, err
	}

	rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	if rm.Maintenance {
		return nil, domainroom.ErrRoomUnavailable
	}

	// The registry reads active stays through the booking repository bound
	// to this unit, so the overlap check and the insert below commit
	// atomically.
	registry := domainroom.Registry{Stays: unit.Bookings()}
	if err := registry.Reserve(ctx, rm.ID, requested); err != nil {
		return nil, err
	}

	// Write the room row too. The booking insert alone touches no shared
	// document, so two overlapping creates would otherwise commit disjoint
	// inserts under snapshot isolation; colliding on the room version turns
	// the loser into a conflict abort that re-runs against committed state
	// and then sees the winner's booking.
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bk, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		UserID:    cmd.UserID,
		RoomID:    rm.ID,
		Stay:      requested,
		Rate:      rm.Rate,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Save(ctx, bk); err != nil {
		return nil, err
	}

	pending := bk.PendingEvents()
	bk.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("booking created", "booking_id", bk.ID, "room_id", bk.RoomID, "user_id", bk.UserID, "days", bk.Stay.Days)
	}

	total := bk.TotalDue()
	return &CreateBookingResult{
		BookingID:     string(bk.ID),
		Status:        string(bk.Status),
		PaymentStatus: string(bk.PaymentStatus),
		TotalDue:      total.Amount,
		Currency:      total.Currency,
	}, nil
}

func (h *CreateBookingHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
