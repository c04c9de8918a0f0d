package booking

import (
	"errors"
	"testing"
	"time"

	"hems/internal/domain/room"
	"hems/internal/domain/shared/money"
	"hems/internal/domain/shared/stay"
)

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newTestBooking(t *testing.T, days int) *Booking {
	t.Helper()
	s, err := stay.New(testNow.AddDate(0, 0, 1), days)
	if err != nil {
		t.Fatalf("stay: %v", err)
	}
	b, err := NewBooking(CreateParams{
		ID:        "bk-1",
		UserID:    "guest-1",
		RoomID:    room.RoomID("room-1"),
		Stay:      s,
		Rate:      money.Must(10000, "USD"),
		CreatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("NewBooking: %v", err)
	}
	return b
}

func TestNewBookingDefaults(t *testing.T) {
	b := newTestBooking(t, 3)
	if b.Status != StatusActive {
		t.Fatalf("status = %q, want active", b.Status)
	}
	if b.PaymentStatus != PaymentUnpaid {
		t.Fatalf("payment status = %q, want unpaid", b.PaymentStatus)
	}
	if got := b.TotalDue(); got.Amount != 30000 {
		t.Fatalf("total due = %d, want 30000", got.Amount)
	}
	events := b.PendingEvents()
	if len(events) != 1 || events[0].EventName() != "booking.created" {
		t.Fatalf("unexpected events: %v", events)
	}
}

func TestNewBookingValidation(t *testing.T) {
	future, _ := stay.New(testNow.AddDate(0, 0, 2), 2)
	past, _ := stay.New(testNow.AddDate(0, 0, -1), 2)

	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing user", CreateParams{ID: "b", Stay: future, CreatedAt: testNow}, ErrUserRequired},
		{"zero days", CreateParams{ID: "b", UserID: "u", Stay: stay.Stay{Start: future.Start}, CreatedAt: testNow}, stay.ErrInvalidDays},
		{"start in past", CreateParams{ID: "b", UserID: "u", Stay: past, CreatedAt: testNow}, ErrStartInPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewBooking(tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCancelTransitions(t *testing.T) {
	b := newTestBooking(t, 2)
	if err := b.Cancel(testNow); err != nil {
		t.Fatalf("cancel active: %v", err)
	}
	if b.Status != StatusCanceled {
		t.Fatalf("status = %q, want canceled", b.Status)
	}
	if err := b.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second cancel: got %v, want ErrInvalidTransition", err)
	}
}

func TestCompleteRequiresFullPayment(t *testing.T) {
	b := newTestBooking(t, 3) // owes 30000

	if err := b.Complete(testNow); !errors.Is(err, ErrBalanceDue) {
		t.Fatalf("unpaid complete: got %v, want ErrBalanceDue", err)
	}

	b.ReconcilePayments(money.Must(15000, "USD"), testNow)
	if err := b.Complete(testNow); !errors.Is(err, ErrBalanceDue) {
		t.Fatalf("partial complete: got %v, want ErrBalanceDue", err)
	}

	b.ReconcilePayments(money.Must(30000, "USD"), testNow)
	if err := b.Complete(testNow); err != nil {
		t.Fatalf("paid complete: %v", err)
	}
	if b.Status != StatusCompleted {
		t.Fatalf("status = %q, want completed", b.Status)
	}

	if err := b.Cancel(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel after complete: got %v, want ErrInvalidTransition", err)
	}
}

func TestReconcilePayments(t *testing.T) {
	cases := []struct {
		name    string
		settled int64
		want    PaymentStatus
	}{
		{"nothing settled", 0, PaymentUnpaid},
		{"below total", 29999, PaymentPartial},
		{"exactly total", 30000, PaymentPaid},
		{"over total", 31000, PaymentPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newTestBooking(t, 3)
			b.ClearEvents()
			b.ReconcilePayments(money.Must(tc.settled, "USD"), testNow)
			if b.PaymentStatus != tc.want {
				t.Fatalf("payment status = %q, want %q", b.PaymentStatus, tc.want)
			}
		})
	}
}

func TestReconcilePaymentsRecordsChangeOnce(t *testing.T) {
	b := newTestBooking(t, 3)
	b.ClearEvents()

	b.ReconcilePayments(money.Must(30000, "USD"), testNow)
	if len(b.PendingEvents()) != 1 {
		t.Fatalf("expected one status change event, got %d", len(b.PendingEvents()))
	}

	// Same settled total again: status unchanged, no new event.
	b.ReconcilePayments(money.Must(30000, "USD"), testNow)
	if len(b.PendingEvents()) != 1 {
		t.Fatalf("no-op reconcile recorded an event")
	}

	// Voiding everything drops the booking back to unpaid.
	b.ReconcilePayments(money.Must(0, "USD"), testNow)
	if b.PaymentStatus != PaymentUnpaid {
		t.Fatalf("payment status = %q, want unpaid", b.PaymentStatus)
	}
}
