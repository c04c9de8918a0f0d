package room

import (
	"context"
	"sort"
	"strings"
	"time"

	"hems/internal/app/dto"
	handlersupport "hems/internal/app/handlers/support"
	"hems/internal/app/queries"
	"hems/internal/app/uow"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/stay"
)

const (
	getRoomKey          = "room.get"
	listRoomsKey        = "room.list"
	roomAvailabilityKey = "room.availability"
)

type GetRoomQuery struct {
	RoomID string
}

func (q GetRoomQuery) Key() string { return getRoomKey }

type GetRoomHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (dto.RoomSummary, error) {
	id := strings.TrimSpace(q.RoomID)
	if id == "" {
		return dto.RoomSummary{}, domainroom.ErrNotFound
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomSummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rm, err := unit.Rooms().ByID(execCtx, domainroom.RoomID(id))
	if err != nil {
		return dto.RoomSummary{}, err
	}
	active, err := unit.Bookings().ActiveStays(execCtx, rm.ID)
	if err != nil {
		return dto.RoomSummary{}, err
	}
	return dto.MapRoomSummary(rm, rm.StatusOn(time.Now().UTC(), active)), nil
}

type ListRoomsQuery struct{}

func (q ListRoomsQuery) Key() string { return listRoomsKey }

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (dto.RoomCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rooms, err := unit.Rooms().List(execCtx)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	now := time.Now().UTC()
	summaries := make([]dto.RoomSummary, 0, len(rooms))
	for _, rm := range rooms {
		active, err := unit.Bookings().ActiveStays(execCtx, rm.ID)
		if err != nil {
			return dto.RoomCollection{}, err
		}
		summaries = append(summaries, dto.MapRoomSummary(rm, rm.StatusOn(now, active)))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Number < summaries[j].Number
	})
	return dto.RoomCollection{Items: summaries}, nil
}

type RoomAvailabilityQuery struct {
	RoomID string
	Start  time.Time
	Days   int
}

func (q RoomAvailabilityQuery) Key() string { return roomAvailabilityKey }

// RoomAvailabilityHandler answers a read-only availability probe. The
// answer is advisory: only the booking transaction re-checks and holds it.
type RoomAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *RoomAvailabilityHandler) Handle(ctx context.Context, q RoomAvailabilityQuery) (dto.RoomAvailability, error) {
	requested, err := stay.New(q.Start, q.Days)
	if err != nil {
		return dto.RoomAvailability{}, err
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomAvailability{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	rm, err := unit.Rooms().ByID(execCtx, domainroom.RoomID(strings.TrimSpace(q.RoomID)))
	if err != nil {
		return dto.RoomAvailability{}, err
	}

	available := false
	if !rm.Maintenance {
		registry := domainroom.Registry{Stays: unit.Bookings()}
		available, err = registry.IsAvailable(execCtx, rm.ID, requested)
		if err != nil {
			return dto.RoomAvailability{}, err
		}
	}
	return dto.RoomAvailability{
		RoomID:    string(rm.ID),
		Start:     requested.Start,
		Days:      requested.Days,
		Available: available,
	}, nil
}

var _ queries.Handler[GetRoomQuery, dto.RoomSummary] = (*GetRoomHandler)(nil)
var _ queries.Handler[ListRoomsQuery, dto.RoomCollection] = (*ListRoomsHandler)(nil)
var _ queries.Handler[RoomAvailabilityQuery, dto.RoomAvailability] = (*RoomAvailabilityHandler)(nil)
