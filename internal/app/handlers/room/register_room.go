package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/events"
	"hems/internal/domain/shared/money"
)

const registerRoomKey = "room.register"

type RegisterRoomCommand struct {
	CommandID string
	Number    string
	Type      string
	Rate      int64
	Currency  string
}

func (c RegisterRoomCommand) Key() string { return registerRoomKey }

type RegisterRoomResult struct {
	RoomID string `json:"room_id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

type RegisterRoomHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RegisterRoomHandler) Handle(ctx context.Context, cmd RegisterRoomCommand) (*RegisterRoomResult, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	number := strings.TrimSpace(cmd.Number)
	if number == "" {
		return nil, domainroom.ErrNumberRequired
	}
	if _, err := unit.Rooms().ByNumber(ctx, number); err == nil {
		return nil, domainroom.ErrNumberTaken
	} else if !errors.Is(err, domainroom.ErrNotFound) {
		return nil, err
	}

	rate, err := money.New(cmd.Rate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	rm, err := domainroom.NewRoom(domainroom.CreateParams{
		ID:        domainroom.RoomID(cmd.CommandID),
		Number:    number,
		Type:      cmd.Type,
		Rate:      rate,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, rm.PendingEvents()); err != nil {
		return nil, err
	}
	rm.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("room registered", "room_id", rm.ID, "number", rm.Number, "type", rm.Type)
	}
	return &RegisterRoomResult{RoomID: string(rm.ID), Number: rm.Number, Status: string(domainroom.StatusAvailable)}, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, pending []events.DomainEvent) error {
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[RegisterRoomCommand, *RegisterRoomResult] = (*RegisterRoomHandler)(nil)
