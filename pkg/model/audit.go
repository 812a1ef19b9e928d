package model

import "time"

// AuditEntry records a booking status transition. Entries are append-only;
// failures to write one never affect the transition they describe.
type AuditEntry struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID   string    `json:"booking_id" bson:"booking_id"`
	PriorStatus string    `json:"prior_status" bson:"prior_status"`
	NewStatus   string    `json:"new_status" bson:"new_status"`
	ActorID     string    `json:"actor_id" bson:"actor_id"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
