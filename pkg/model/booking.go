package model

import (
	"time"
)

// BookingRequest lifecycle. A request is created in StatusMatching and leaves
// it exactly once: to assigned (a guard won the claim race), canceled, or
// failed (no guard found). Completed only follows assigned.
const (
	StatusMatching  = "matching"
	StatusAssigned  = "assigned"
	StatusCanceled  = "canceled"
	StatusFailed    = "failed"
	StatusCompleted = "completed"
)

type BookingRequest struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ClientID        string    `json:"client_id" bson:"client_id" validate:"required,mongodb"`
	CompanyID       string    `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	AssignedGuardID string    `json:"assigned_guard_id,omitempty" bson:"assigned_guard_id,omitempty" validate:"omitempty,mongodb"`
	Status          string    `json:"status" bson:"status" validate:"required,oneof=matching assigned canceled failed completed"`
	Address         string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	City            string    `json:"city" bson:"city" validate:"required,min=2,max=60"`
	StartTime       time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime         time.Time `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	HourlyRateCents int64     `json:"hourly_rate_cents" bson:"hourly_rate_cents" validate:"required,rate_cents"`
	Armed           bool      `json:"armed" bson:"armed"`
	Notes           string    `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type BookingUpdate struct {
	Address         string     `json:"address,omitempty" validate:"omitempty,min=2,max=200"`
	City            string     `json:"city,omitempty" validate:"omitempty,min=2,max=60"`
	StartTime       *time.Time `json:"start_time,omitempty" validate:"omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty" validate:"omitempty"`
	HourlyRateCents *int64     `json:"hourly_rate_cents,omitempty" validate:"omitempty,rate_cents"`
	Armed           *bool      `json:"armed,omitempty"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Open reports whether the request is still waiting for a guard to claim it.
func (b *BookingRequest) Open() bool {
	return b.Status == StatusMatching
}
