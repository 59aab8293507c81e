package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// CreateRepairRequest payload.
type CreateRepairRequest struct {
	OrderLineID string `json:"order_line_id"`
	Notes       string `json:"notes"`
}

// RepairNotesRequest replaces or appends technician notes.
type RepairNotesRequest struct {
	Notes string `json:"notes"`
}

// RepairResponse response.
type RepairResponse struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	OrderLineID string              `json:"order_line_id"`
	Notes       string              `json:"notes"`
	Status      domain.RepairStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
