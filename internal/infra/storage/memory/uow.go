package memory

import (
	"context"
	"errors"

	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
)

// ErrFactoryMisconfigured indicates a missing backing store.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory starts units of work over a shared in-memory store.
type Factory struct {
	Store *Store
}

// Begin takes the store lock and stages a snapshot for write units. The
// lock is held until Commit or Rollback, so concurrent write units run
// one after another and each sees fully committed state.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	if opts.ReadOnly {
		f.Store.mu.RLock()
		return &Unit{store: f.Store, data: &f.Store.data, readOnly: true}, nil
	}
	f.Store.mu.Lock()
	stage := f.Store.data.snapshot()
	return &Unit{store: f.Store, data: &stage}, nil
}

// Unit stages changes against a snapshot; Commit swaps the snapshot in.
// Read-only units read the live dataset under the reader lock.
type Unit struct {
	store    *Store
	data     *dataset
	readOnly bool
	done     bool
}

func (u *Unit) Rooms() domainroom.Repository {
	return &roomRepository{unit: u}
}

func (u *Unit) Bookings() domainbooking.Repository {
	return &bookingRepository{unit: u}
}

func (u *Unit) Payments() domainpayment.Repository {
	return &paymentRepository{unit: u}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if u.readOnly {
		u.store.mu.RUnlock()
		return nil
	}
	u.store.data = *u.data
	u.store.mu.Unlock()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	if u.readOnly {
		u.store.mu.RUnlock()
		return nil
	}
	u.store.mu.Unlock()
	return nil
}
