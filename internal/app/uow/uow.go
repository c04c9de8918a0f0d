package uow

import (
	"context"

	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
)

// UnitOfWork coordinates repositories inside a transaction boundary. Every
// externally visible operation runs against exactly one unit, so a failure
// partway (reservation passes but the booking insert fails) leaves no
// partial state behind.
type UnitOfWork interface {
	Rooms() domainroom.Repository
	Bookings() domainbooking.Repository
	Payments() domainpayment.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
