package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// BookAppointmentRequest payload.
type BookAppointmentRequest struct {
	Type       string    `json:"type"`
	LocationID *string   `json:"location_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Notes      *string   `json:"notes"`
}

// RescheduleAppointmentRequest payload.
type RescheduleAppointmentRequest struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// AppointmentResponse response.
type AppointmentResponse struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"user_id"`
	Type       string                   `json:"type"`
	LocationID *string                  `json:"location_id"`
	StartsAt   time.Time                `json:"starts_at"`
	EndsAt     time.Time                `json:"ends_at"`
	Notes      *string                  `json:"notes"`
	Status     domain.AppointmentStatus `json:"status"`
	CreatedAt  time.Time                `json:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at"`
}

// AvailabilityResponse reports whether a slot is free.
type AvailabilityResponse struct {
	Available  bool    `json:"available"`
	ConflictID *string `json:"conflict_id,omitempty"`
}
