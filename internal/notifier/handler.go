package notifier

import (
	"context"
	"fmt"
	"time"

	"guardpost/pkg/events"
	pkgkafka "guardpost/pkg/kafka"
	"guardpost/pkg/logger"
)

// Handler turns booking lifecycle events into notifications. One handler
// serves all topics; the event-type header selects the translation.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewHandler(dispatcher Dispatcher, log *logger.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        log,
	}
}

// Handle is the kafka MessageHandler. Unknown event types are dropped with
// a warning instead of erroring, so they never cycle through the DLQ.
func (h *Handler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	eventType := msg.GetEventType()

	switch eventType {
	case events.EventTypeBookingOffered:
		return h.handleOffered(ctx, msg)
	case events.EventTypeBookingAssigned:
		return h.handleAssigned(ctx, msg)
	case events.EventTypeBookingCanceled:
		return h.handleCanceled(ctx, msg)
	default:
		h.log.Warn("Dropping event with unknown type",
			"event_type", eventType,
			"event_id", msg.GetEventID(),
			"booking_id", msg.GetBookingID(),
		)
		return nil
	}
}

func (h *Handler) handleOffered(ctx context.Context, msg pkgkafka.Message) error {
	var payload events.BookingOffered
	if err := msg.DecodeValue(&payload); err != nil {
		return fmt.Errorf("failed to decode booking.offered payload: %w", err)
	}

	return h.dispatcher.Dispatch(ctx, Notification{
		Recipient: payload.GuardID,
		Kind:      "offer",
		BookingID: payload.BookingID,
		Body: fmt.Sprintf("New booking available. Offer expires at %s.",
			payload.ExpiresAt.Format(time.RFC3339)),
		At: time.Now().UTC(),
	})
}

func (h *Handler) handleAssigned(ctx context.Context, msg pkgkafka.Message) error {
	var payload events.BookingAssigned
	if err := msg.DecodeValue(&payload); err != nil {
		return fmt.Errorf("failed to decode booking.assigned payload: %w", err)
	}

	return h.dispatcher.Dispatch(ctx, Notification{
		Recipient: payload.GuardID,
		Kind:      "assignment",
		BookingID: payload.BookingID,
		Body:      "You won the booking. Check in when you arrive on site.",
		At:        time.Now().UTC(),
	})
}

func (h *Handler) handleCanceled(ctx context.Context, msg pkgkafka.Message) error {
	var payload events.BookingCanceled
	if err := msg.DecodeValue(&payload); err != nil {
		return fmt.Errorf("failed to decode booking.canceled payload: %w", err)
	}

	// Nobody to notify when the booking was never assigned.
	if payload.AssignedGuardID == "" {
		return nil
	}

	body := "Your booking was canceled."
	if payload.Reason != "" {
		body = fmt.Sprintf("Your booking was canceled: %s.", payload.Reason)
	}

	return h.dispatcher.Dispatch(ctx, Notification{
		Recipient: payload.AssignedGuardID,
		Kind:      "cancellation",
		BookingID: payload.BookingID,
		Body:      body,
		At:        time.Now().UTC(),
	})
}
