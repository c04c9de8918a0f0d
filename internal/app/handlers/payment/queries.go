package payment

import (
	"context"
	"strings"

	"hems/internal/app/dto"
	handlersupport "hems/internal/app/handlers/support"
	"hems/internal/app/queries"
	"hems/internal/app/uow"
	domainbooking "hems/internal/domain/booking"
)

const listPaymentsKey = "payment.list"

type ListPaymentsQuery struct {
	BookingID string
}

func (q ListPaymentsQuery) Key() string { return listPaymentsKey }

type ListPaymentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPaymentsHandler) Handle(ctx context.Context, q ListPaymentsQuery) (dto.PaymentCollection, error) {
	id := strings.TrimSpace(q.BookingID)
	if id == "" {
		return dto.PaymentCollection{}, domainbooking.ErrNotFound
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bk, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(id))
	if err != nil {
		return dto.PaymentCollection{}, err
	}
	items, err := unit.Payments().ListByBooking(execCtx, bk.ID)
	if err != nil {
		return dto.PaymentCollection{}, err
	}

	summaries := make([]dto.PaymentSummary, 0, len(items))
	for _, p := range items {
		summaries = append(summaries, dto.MapPaymentSummary(p))
	}
	return dto.PaymentCollection{Items: summaries}, nil
}

var _ queries.Handler[ListPaymentsQuery, dto.PaymentCollection] = (*ListPaymentsHandler)(nil)
