package memory

import (
	"sync"

	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
	"hems/internal/domain/shared/events"
)

// Store holds all hotel state behind a single lock. Write units take the
// writer lock for their whole lifetime, which serializes transactions and
// makes the availability check plus booking insert atomic.
type Store struct {
	mu   sync.RWMutex
	data dataset
}

type dataset struct {
	rooms       map[domainroom.RoomID]*domainroom.Room
	roomNumbers map[string]domainroom.RoomID
	bookings    map[domainbooking.BookingID]*domainbooking.Booking
	payments    map[domainpayment.PaymentID]*domainpayment.Payment
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func newDataset() dataset {
	return dataset{
		rooms:       make(map[domainroom.RoomID]*domainroom.Room),
		roomNumbers: make(map[string]domainroom.RoomID),
		bookings:    make(map[domainbooking.BookingID]*domainbooking.Booking),
		payments:    make(map[domainpayment.PaymentID]*domainpayment.Payment),
	}
}

func (d dataset) snapshot() dataset {
	out := dataset{
		rooms:       make(map[domainroom.RoomID]*domainroom.Room, len(d.rooms)),
		roomNumbers: make(map[string]domainroom.RoomID, len(d.roomNumbers)),
		bookings:    make(map[domainbooking.BookingID]*domainbooking.Booking, len(d.bookings)),
		payments:    make(map[domainpayment.PaymentID]*domainpayment.Payment, len(d.payments)),
	}
	for id, rm := range d.rooms {
		out.rooms[id] = cloneRoom(rm)
	}
	for number, id := range d.roomNumbers {
		out.roomNumbers[number] = id
	}
	for id, bk := range d.bookings {
		out.bookings[id] = cloneBooking(bk)
	}
	for id, pm := range d.payments {
		out.payments[id] = clonePayment(pm)
	}
	return out
}

func cloneRoom(r *domainroom.Room) *domainroom.Room {
	if r == nil {
		return nil
	}
	out := *r
	out.EventRecorder = events.EventRecorder{}
	return &out
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	if b == nil {
		return nil
	}
	out := *b
	out.EventRecorder = events.EventRecorder{}
	return &out
}

func clonePayment(p *domainpayment.Payment) *domainpayment.Payment {
	if p == nil {
		return nil
	}
	out := *p
	out.EventRecorder = events.EventRecorder{}
	return &out
}
