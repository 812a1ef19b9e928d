package notifier

import (
	"context"
	"time"

	"guardpost/pkg/logger"
)

// Notification is a delivery-ready message for a single recipient. The
// transport behind Dispatcher decides how it reaches them.
type Notification struct {
	Recipient string
	Kind      string
	BookingID string
	Body      string
	At        time.Time
}

type Dispatcher interface {
	Dispatch(ctx context.Context, n Notification) error
}

// logDispatcher writes notifications to the structured log. It stands in
// for a real delivery transport (SMS, push) behind the same interface.
type logDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) Dispatcher {
	return &logDispatcher{log: log}
}

func (d *logDispatcher) Dispatch(_ context.Context, n Notification) error {
	d.log.Info("Notification dispatched",
		"recipient", n.Recipient,
		"kind", n.Kind,
		"booking_id", n.BookingID,
		"body", n.Body,
		"at", n.At,
	)
	return nil
}
