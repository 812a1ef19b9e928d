package model

import "time"

// Assignment sub-status progression once a guard has won a booking.
const (
	SubStatusPendingCheckin = "pending_checkin"
	SubStatusEnRoute        = "en_route"
	SubStatusOnSite         = "on_site"
	SubStatusCheckedOut     = "checked_out"
)

// Assignment is the companion tracking record created after a guard wins a
// booking. The booking's status/assigned_guard_id pair is the source of
// truth; this record is best-effort and may be reconciled later if its
// creation failed.
type Assignment struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID string    `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	GuardID   string    `json:"guard_id" bson:"guard_id" validate:"required,mongodb"`
	SubStatus string    `json:"sub_status" bson:"sub_status" validate:"required,oneof=pending_checkin en_route on_site checked_out"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
