package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// CreateReturnRequest payload.
type CreateReturnRequest struct {
	OrderID string              `json:"order_id"`
	Type    domain.ReturnType   `json:"type"`
	Reason  *string             `json:"reason"`
	Items   []ReturnItemRequest `json:"items"`
}

// ReturnItemRequest describes one order line in an RMA.
type ReturnItemRequest struct {
	OrderLineID string                  `json:"order_line_id"`
	Quantity    int                     `json:"quantity"`
	Condition   *domain.ItemCondition   `json:"condition"`
	Disposition *domain.ItemDisposition `json:"disposition"`
	FeeCents    *int64                  `json:"fee_cents"`
}

// UpdateReturnReasonRequest payload.
type UpdateReturnReasonRequest struct {
	Reason string `json:"reason"`
}

// ReturnSummary response.
type ReturnSummary struct {
	ID          string              `json:"id"`
	ExternalKey string              `json:"external_key"`
	OrderID     string              `json:"order_id"`
	UserID      string              `json:"user_id"`
	Type        domain.ReturnType   `json:"type"`
	Reason      *string             `json:"reason"`
	Status      domain.ReturnStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ReturnDetailResponse provides full RMA info including items.
type ReturnDetailResponse struct {
	ReturnSummary
	Items []ReturnItemResponse `json:"items"`
}

// ReturnItemResponse represents one RMA line.
type ReturnItemResponse struct {
	OrderLineID string                  `json:"order_line_id"`
	Quantity    int                     `json:"quantity"`
	Condition   *domain.ItemCondition   `json:"condition"`
	Disposition *domain.ItemDisposition `json:"disposition"`
	FeeCents    *int64                  `json:"fee_cents"`
	CreatedAt   time.Time               `json:"created_at"`
}
