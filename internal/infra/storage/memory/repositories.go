package memory

import (
	"context"
	"sort"
	"strings"

	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/stay"
)

type roomRepository struct {
	unit *Unit
}

func (r *roomRepository) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	rm, ok := r.unit.data.rooms[id]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	return cloneRoom(rm), nil
}

func (r *roomRepository) ByNumber(ctx context.Context, number string) (*domainroom.Room, error) {
	id, ok := r.unit.data.roomNumbers[strings.TrimSpace(number)]
	if !ok {
		return nil, domainroom.ErrNotFound
	}
	return r.ByID(ctx, id)
}

func (r *roomRepository) Save(ctx context.Context, rm *domainroom.Room) error {
	data := r.unit.data
	if existing, ok := data.roomNumbers[rm.Number]; ok && existing != rm.ID {
		return domainroom.ErrNumberTaken
	}
	stored := cloneRoom(rm)
	stored.Version++
	data.rooms[rm.ID] = stored
	data.roomNumbers[rm.Number] = rm.ID
	rm.Version = stored.Version
	return nil
}

func (r *roomRepository) List(ctx context.Context) ([]*domainroom.Room, error) {
	out := make([]*domainroom.Room, 0, len(r.unit.data.rooms))
	for _, rm := range r.unit.data.rooms {
		out = append(out, cloneRoom(rm))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

type bookingRepository struct {
	unit *Unit
}

func (r *bookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	bk, ok := r.unit.data.bookings[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return cloneBooking(bk), nil
}

func (r *bookingRepository) Save(ctx context.Context, bk *domainbooking.Booking) error {
	stored := cloneBooking(bk)
	stored.Version++
	r.unit.data.bookings[bk.ID] = stored
	bk.Version = stored.Version
	return nil
}

func (r *bookingRepository) List(ctx context.Context, filter domainbooking.Filter) ([]*domainbooking.Booking, error) {
	out := make([]*domainbooking.Booking, 0)
	for _, bk := range r.unit.data.bookings {
		if filter.UserID != "" && bk.UserID != filter.UserID {
			continue
		}
		if filter.RoomID != "" && bk.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && bk.Status != filter.Status {
			continue
		}
		out = append(out, cloneBooking(bk))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *bookingRepository) ActiveStays(ctx context.Context, roomID domainroom.RoomID) ([]stay.Stay, error) {
	var out []stay.Stay
	for _, bk := range r.unit.data.bookings {
		if bk.RoomID != roomID || bk.Status != domainbooking.StatusActive {
			continue
		}
		out = append(out, bk.Stay)
	}
	return out, nil
}

type paymentRepository struct {
	unit *Unit
}

func (r *paymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	pm, ok := r.unit.data.payments[id]
	if !ok {
		return nil, domainpayment.ErrNotFound
	}
	return clonePayment(pm), nil
}

func (r *paymentRepository) Save(ctx context.Context, pm *domainpayment.Payment) error {
	stored := clonePayment(pm)
	stored.Version++
	r.unit.data.payments[pm.ID] = stored
	pm.Version = stored.Version
	return nil
}

func (r *paymentRepository) ListByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainpayment.Payment, error) {
	out := make([]*domainpayment.Payment, 0)
	for _, pm := range r.unit.data.payments {
		if pm.BookingID != id {
			continue
		}
		out = append(out, clonePayment(pm))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

var _ domainroom.Repository = (*roomRepository)(nil)
var _ domainbooking.Repository = (*bookingRepository)(nil)
var _ domainpayment.Repository = (*paymentRepository)(nil)
