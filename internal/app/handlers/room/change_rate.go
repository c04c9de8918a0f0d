package room

import (
	"context"
	"log/slog"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/outbox"
	"hems/internal/domain/shared/money"
)

const changeRateKey = "room.rate.change"

type ChangeRateCommand struct {
	RoomID   string
	Rate     int64
	Currency string
}

func (c ChangeRateCommand) Key() string { return changeRateKey }

type ChangeRateResult struct {
	RoomID   string `json:"room_id"`
	Rate     int64  `json:"rate"`
	Currency string `json:"currency"`
}

type ChangeRateHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *ChangeRateHandler) Handle(ctx context.Context, cmd ChangeRateCommand) (*ChangeRateResult, error) {
	rm, unit, err := loadRoom(ctx, cmd.RoomID)
	if err != nil {
		return nil, err
	}

	rate, err := money.New(cmd.Rate, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if err := rm.ChangeRate(rate, time.Now().UTC()); err != nil {
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
		h.Logger.Info("room rate changed", "room_id", rm.ID, "rate", rate.Amount, "currency", rate.Currency)
	}
	return &ChangeRateResult{RoomID: string(rm.ID), Rate: rate.Amount, Currency: rate.Currency}, nil
}

var _ commands.Handler[ChangeRateCommand, *ChangeRateResult] = (*ChangeRateHandler)(nil)
