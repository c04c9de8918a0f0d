package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hems/internal/app/middleware"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	domainroom "hems/internal/domain/room"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// ErrConcurrentUpdate reports a lost version race on save. It carries the
// pipeline's conflict sentinel so the command is retried once.
var ErrConcurrentUpdate = fmt.Errorf("mongo: concurrent update detected: %w", middleware.ErrTxConflict)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RoomRepo    domainroom.Repository
	BookingRepo domainbooking.Repository
	PaymentRepo domainpayment.Repository
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:       f.DB,
		session:  session,
		rooms:    f.RoomRepo,
		bookings: f.BookingRepo,
		payments: f.PaymentRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	rooms    domainroom.Repository
	bookings domainbooking.Repository
	payments domainpayment.Repository
}

func (u *Unit) Rooms() domainroom.Repository {
	return u.rooms
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Payments() domainpayment.Repository {
	return u.payments
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		return translateTxError(err)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

// translateTxError maps transient transaction failures onto the pipeline's
// conflict sentinel. Insert-only transactions never collide, so every
// handler that guards a per-room or per-booking invariant also updates the
// owning document; the loser of such a race aborts with a labeled write
// conflict either at the update or on commit.
func translateTxError(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.HasErrorLabel("UnknownTransactionCommitResult") {
			return fmt.Errorf("mongo: transaction conflict: %w", middleware.ErrTxConflict)
		}
	}
	return err
}
