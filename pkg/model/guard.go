package model

import "time"

type Guard struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CompanyID    string    `json:"company_id" bson:"company_id" validate:"required,mongodb"`
	FullName     string    `json:"full_name" bson:"full_name" validate:"required,min=2,max=100"`
	Phone        string    `json:"phone" bson:"phone" validate:"required,e164"`
	City         string    `json:"city" bson:"city" validate:"required,min=2,max=60"`
	ArmedLicense bool      `json:"armed_license" bson:"armed_license"`
	Rating       float64   `json:"rating" bson:"rating" validate:"omitempty,min=0,max=5"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type GuardUpdate struct {
	FullName     string   `json:"full_name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone        string   `json:"phone,omitempty" validate:"omitempty,e164"`
	City         string   `json:"city,omitempty" validate:"omitempty,min=2,max=60"`
	ArmedLicense *bool    `json:"armed_license,omitempty"`
	Rating       *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=5"`
	Active       *bool    `json:"active,omitempty"`
}
