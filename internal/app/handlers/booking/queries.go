package booking

import (
	"context"
	"sort"
	"strings"

	"hems/internal/app/dto"
	handlersupport "hems/internal/app/handlers/support"
	"hems/internal/app/queries"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainroom "hems/internal/domain/room"
)

const (
	getBookingKey   = "booking.get"
	listBookingsKey = "booking.list"
)

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.BookingSummary, error) {
	id := strings.TrimSpace(q.BookingID)
	if id == "" {
		return dto.BookingSummary{}, domainbooking.ErrNotFound
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingSummary{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bk, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(id))
	if err != nil {
		return dto.BookingSummary{}, err
	}
	return dto.MapBookingSummary(bk), nil
}

type ListBookingsQuery struct {
	UserID string
	RoomID string
	Status string
}

func (q ListBookingsQuery) Key() string { return listBookingsKey }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	filter := domainbooking.Filter{
		UserID: strings.TrimSpace(q.UserID),
		RoomID: domainroom.RoomID(strings.TrimSpace(q.RoomID)),
		Status: domainbooking.Status(strings.ToLower(strings.TrimSpace(q.Status))),
	}
	items, err := unit.Bookings().List(execCtx, filter)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	summaries := make([]dto.BookingSummary, 0, len(items))
	for _, bk := range items {
		summaries = append(summaries, dto.MapBookingSummary(bk))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return dto.BookingCollection{Items: summaries}, nil
}

var _ queries.Handler[GetBookingQuery, dto.BookingSummary] = (*GetBookingHandler)(nil)
var _ queries.Handler[ListBookingsQuery, dto.BookingCollection] = (*ListBookingsHandler)(nil)
