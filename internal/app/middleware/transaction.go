package middleware

import (
	"context"
	"errors"
	"time"

	"hems/internal/app/commands"
	"hems/internal/app/uow"
)

var ErrUnitOfWorkMissing = errors.New("middleware: unit of work not found")

// ErrTxConflict is returned by storage layers when a transaction aborts on
// a concurrent write. The transaction middleware retries such aborts once;
// domain-level conflicts (room unavailable) are never auto-retried.
var ErrTxConflict = errors.New("middleware: transaction conflict")

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

const defaultConflictBackoff = 50 * time.Millisecond

// Transaction wraps every command in a unit of work. A storage conflict
// abort is retried exactly once after a backoff before surfacing to the
// caller.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider, backoff []time.Duration) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			res, err := runInUnit(ctx, factory, opts, nextFn, cmd)
			if !errors.Is(err, ErrTxConflict) {
				return res, err
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(conflictBackoff(backoff)):
			}
			return runInUnit(ctx, factory, opts, nextFn, cmd)
		})
	}
}

func runInUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions, next commandFunc, cmd commands.Command) (any, error) {
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()

	res, err := next(execCtx, cmd)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(execCtx); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

func conflictBackoff(backoff []time.Duration) time.Duration {
	if len(backoff) > 0 && backoff[0] > 0 {
		return backoff[0]
	}
	return defaultConflictBackoff
}
