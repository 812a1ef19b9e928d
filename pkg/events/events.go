// Package events defines the Kafka topics and payloads shared between the
// bookings, dispatch, and notifier services.
package events

import "time"

// Topic names. One topic per event type, keyed by booking ID so all events
// for a booking land on the same partition.
const (
	TopicBookingCreated  = "booking.created"
	TopicBookingOffered  = "booking.offered"
	TopicBookingAssigned = "booking.assigned"
	TopicBookingCanceled = "booking.canceled"

	TopicDLQBookings = "dlq-bookings"
	TopicDLQNotifier = "dlq-notifier"
	TopicDLQDispatch = "dlq-dispatch"
)

// Event type header values
const (
	EventTypeBookingCreated  = "booking.created"
	EventTypeBookingOffered  = "booking.offered"
	EventTypeBookingAssigned = "booking.assigned"
	EventTypeBookingCanceled = "booking.canceled"
)

// BookingCreated is published when a client opens a new booking request.
type BookingCreated struct {
	BookingID      string    `json:"booking_id"`
	ClientID       string    `json:"client_id"`
	CompanyID      string    `json:"company_id,omitempty"`
	City           string    `json:"city"`
	Armed          bool      `json:"armed"`
	HourlyRate     int64     `json:"hourly_rate_cents"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingOffered is published once per guard the dispatcher offers a
// booking to. The accept token is an opaque sealed credential the guard
// presents back when accepting.
type BookingOffered struct {
	BookingID   string    `json:"booking_id"`
	GuardID     string    `json:"guard_id"`
	AcceptToken string    `json:"accept_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	OfferedAt   time.Time `json:"offered_at"`
}

// BookingAssigned is published after a guard wins the booking.
type BookingAssigned struct {
	BookingID  string    `json:"booking_id"`
	GuardID    string    `json:"guard_id"`
	CompanyID  string    `json:"company_id,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// BookingCanceled is published when a booking is canceled before or after
// assignment. AssignedGuardID is set when a guard had already won.
type BookingCanceled struct {
	BookingID       string    `json:"booking_id"`
	AssignedGuardID string    `json:"assigned_guard_id,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	CanceledAt      time.Time `json:"canceled_at"`
}
