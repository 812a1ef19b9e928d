package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	"guardpost/pkg/logger"
)

type recordingDispatcher struct {
	sent []Notification
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notification) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

func newTestHandler() (*Handler, *recordingDispatcher) {
	dispatcher := &recordingDispatcher{}
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	return NewHandler(dispatcher, log), dispatcher
}

func eventMessage(eventType, bookingID string, payload any) pkgkafka.Message {
	msg := pkgkafka.NewMessage().
		WithKey(bookingID).
		WithValue(payload).
		WithEventType(eventType).
		WithBookingID(bookingID).
		WithSource("test").
		Build()
	return msg
}

func TestHandleOffered(t *testing.T) {
	h, dispatcher := newTestHandler()

	msg := eventMessage(events.EventTypeBookingOffered, "booking-1", events.BookingOffered{
		BookingID:   "booking-1",
		GuardID:     "guard-7",
		AcceptToken: "sealed",
		ExpiresAt:   time.Now().Add(15 * time.Minute),
		OfferedAt:   time.Now(),
	})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(dispatcher.sent))
	}

	got := dispatcher.sent[0]
	if got.Recipient != "guard-7" {
		t.Errorf("Recipient = %q, want guard-7", got.Recipient)
	}
	if got.Kind != "offer" {
		t.Errorf("Kind = %q, want offer", got.Kind)
	}
	if got.BookingID != "booking-1" {
		t.Errorf("BookingID = %q, want booking-1", got.BookingID)
	}
}

func TestHandleAssigned(t *testing.T) {
	h, dispatcher := newTestHandler()

	msg := eventMessage(events.EventTypeBookingAssigned, "booking-2", events.BookingAssigned{
		BookingID:  "booking-2",
		GuardID:    "guard-3",
		AssignedAt: time.Now(),
	})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(dispatcher.sent))
	}
	if dispatcher.sent[0].Kind != "assignment" {
		t.Errorf("Kind = %q, want assignment", dispatcher.sent[0].Kind)
	}
}

func TestHandleCanceled(t *testing.T) {
	h, dispatcher := newTestHandler()

	msg := eventMessage(events.EventTypeBookingCanceled, "booking-3", events.BookingCanceled{
		BookingID:       "booking-3",
		AssignedGuardID: "guard-9",
		Reason:          "client no-show",
		CanceledAt:      time.Now(),
	})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(dispatcher.sent))
	}

	got := dispatcher.sent[0]
	if got.Recipient != "guard-9" {
		t.Errorf("Recipient = %q, want guard-9", got.Recipient)
	}
	if got.Kind != "cancellation" {
		t.Errorf("Kind = %q, want cancellation", got.Kind)
	}
}

func TestHandleCanceledUnassignedIsDropped(t *testing.T) {
	h, dispatcher := newTestHandler()

	msg := eventMessage(events.EventTypeBookingCanceled, "booking-4", events.BookingCanceled{
		BookingID:  "booking-4",
		CanceledAt: time.Now(),
	})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v, want nil", err)
	}
	if len(dispatcher.sent) != 0 {
		t.Fatalf("dispatched %d notifications for unassigned cancellation, want 0", len(dispatcher.sent))
	}
}

func TestHandleUnknownEventTypeIsDropped(t *testing.T) {
	h, dispatcher := newTestHandler()

	msg := eventMessage("booking.rescheduled", "booking-5", map[string]string{"booking_id": "booking-5"})

	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle() = %v for unknown event type, want nil", err)
	}
	if len(dispatcher.sent) != 0 {
		t.Fatalf("dispatched %d notifications for unknown event type, want 0", len(dispatcher.sent))
	}
}

func TestHandleMalformedPayload(t *testing.T) {
	h, _ := newTestHandler()

	msg := pkgkafka.NewMessage().
		WithKey("booking-6").
		WithRawValue([]byte("not json")).
		WithEventType(events.EventTypeBookingAssigned).
		WithBookingID("booking-6").
		Build()

	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("Handle() = nil for malformed payload, want error")
	}
}

func TestHandleDispatcherFailurePropagates(t *testing.T) {
	h, dispatcher := newTestHandler()
	dispatcher.err = errors.New("smtp down")

	msg := eventMessage(events.EventTypeBookingAssigned, "booking-7", events.BookingAssigned{
		BookingID:  "booking-7",
		GuardID:    "guard-1",
		AssignedAt: time.Now(),
	})

	if err := h.Handle(context.Background(), msg); err == nil {
		t.Fatal("Handle() = nil when dispatcher fails, want error")
	}
}
