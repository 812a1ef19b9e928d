package model

import "time"

type Company struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Cities       []string  `json:"cities" bson:"cities" validate:"required,min=1,max=50,dive,required"`
	ContactPhone string    `json:"contact_phone" bson:"contact_phone" validate:"required,e164"`
	Priority     int       `json:"priority" bson:"priority" validate:"omitempty,min=0"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type CompanyUpdate struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Cities       []string `json:"cities,omitempty" validate:"omitempty,min=1,max=50,dive,required"`
	ContactPhone string   `json:"contact_phone,omitempty" validate:"omitempty,e164"`
	Priority     *int     `json:"priority,omitempty" validate:"omitempty,min=0"`
	Active       *bool    `json:"active,omitempty"`
}
