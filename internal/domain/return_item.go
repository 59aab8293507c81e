package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// ItemCondition describes the reported condition of a returned line item.
type ItemCondition string

const (
	ItemConditionNew     ItemCondition = "NEW"
	ItemConditionUsed    ItemCondition = "USED"
	ItemConditionDamaged ItemCondition = "DAMAGED"
)

// ItemDisposition describes what the warehouse should do with the item.
type ItemDisposition string

const (
	ItemDispositionRestock ItemDisposition = "RESTOCK"
	ItemDispositionRepair  ItemDisposition = "REPAIR"
	ItemDispositionDiscard ItemDisposition = "DISCARD"
)

// ReturnItem is one order line inside an RMA. The (ReturnID, OrderLineID)
// pair is the composite key. FeeCents is an optional restocking fee.
type ReturnItem struct {
	ReturnID    string
	OrderLineID string
	Quantity    int
	Condition   *ItemCondition
	Disposition *ItemDisposition
	FeeCents    *int64
	CreatedAt   time.Time
}

// NewReturnItem validates and builds a return line item.
func NewReturnItem(returnID, orderLineID string, quantity int, condition *ItemCondition, disposition *ItemDisposition, feeCents *int64, now time.Time) (ReturnItem, error) {
	if strings.TrimSpace(returnID) == "" {
		return ReturnItem{}, apperrors.NewValidationError("return_id required", map[string]any{"field": "return_id"})
	}
	if strings.TrimSpace(orderLineID) == "" {
		return ReturnItem{}, apperrors.NewValidationError("order_line_id required", map[string]any{"field": "order_line_id"})
	}
	if quantity <= 0 {
		return ReturnItem{}, apperrors.NewValidationError("quantity must be positive", map[string]any{"field": "quantity"})
	}
	if condition != nil {
		switch *condition {
		case ItemConditionNew, ItemConditionUsed, ItemConditionDamaged:
		default:
			return ReturnItem{}, apperrors.NewValidationError("unknown condition", map[string]any{"field": "condition"})
		}
	}
	if disposition != nil {
		switch *disposition {
		case ItemDispositionRestock, ItemDispositionRepair, ItemDispositionDiscard:
		default:
			return ReturnItem{}, apperrors.NewValidationError("unknown disposition", map[string]any{"field": "disposition"})
		}
	}
	if feeCents != nil && *feeCents < 0 {
		return ReturnItem{}, apperrors.NewValidationError("fee must not be negative", map[string]any{"field": "fee_cents"})
	}
	return ReturnItem{
		ReturnID:    returnID,
		OrderLineID: orderLineID,
		Quantity:    quantity,
		Condition:   condition,
		Disposition: disposition,
		FeeCents:    feeCents,
		CreatedAt:   now,
	}, nil
}
