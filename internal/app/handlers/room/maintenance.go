package room

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/outbox"
	"hems/internal/app/uow"
	domainroom "hems/internal/domain/room"
)

const (
	startMaintenanceKey = "room.maintenance.start"
	endMaintenanceKey   = "room.maintenance.end"
)

type StartMaintenanceCommand struct {
	RoomID string
}

func (c StartMaintenanceCommand) Key() string { return startMaintenanceKey }

type EndMaintenanceCommand struct {
	RoomID string
}

func (c EndMaintenanceCommand) Key() string { return endMaintenanceKey }

type MaintenanceResult struct {
	RoomID      string `json:"room_id"`
	Maintenance bool   `json:"maintenance"`
}

// StartMaintenanceHandler takes a room out of service. Rooms with active
// bookings cannot enter maintenance; the bookings must be canceled or
// completed first.
type StartMaintenanceHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *StartMaintenanceHandler) Handle(ctx context.Context, cmd StartMaintenanceCommand) (*MaintenanceResult, error) {
	rm, unit, err := loadRoom(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}

	registry := domainroom.Registry{Stays: unit.Bookings()}
	busy, err := registry.HasActiveBookings(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, domainroom.ErrRoomBusy
	}

	rm.EnterMaintenance(time.Now().UTC())
	if err := unit.Rooms().Save(ctx, rm); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, rm.PendingEvents()); err != nil {
		return nil, err
	}
	rm.ClearEvents()

	if h.Logger != nil {
		h.Logger.Info("room maintenance started", "room_id", rm.ID, "number", rm.Number)
	}
	return &MaintenanceResult{RoomID: string(rm.ID), Maintenance: rm.Maintenance}, nil
}

type EndMaintenanceHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *EndMaintenanceHandler) Handle(ctx context.Context, cmd EndMaintenanceCommand) (*MaintenanceResult, error) {
	rm, unit, err := loadRoom(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}

	if err := rm.ExitMaintenance(time.Now().UTC()); err != nil {
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
		h.Logger.Info("room maintenance ended", "room_id", rm.ID, "number", rm.Number)
	}
	return &MaintenanceResult{RoomID: string(rm.ID), Maintenance: rm.Maintenance}, nil
}

func loadRoom(ctx context.Context, id string) (*domainroom.Room, uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(id) == "" {
		return nil, nil, domainroom.ErrNotFound
	}
	rm, err := unit.Rooms().ByID(ctx, domainroom.RoomID(id))
	if err != nil {
		return nil, nil, err
	}
	return rm, unit, nil
}

var _ commands.Handler[StartMaintenanceCommand, *MaintenanceResult] = (*StartMaintenanceHandler)(nil)
var _ commands.Handler[EndMaintenanceCommand, *MaintenanceResult] = (*EndMaintenanceHandler)(nil)
