package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

// ReturnType enumerates the kinds of return requests.
type ReturnType string

const (
	ReturnTypeReturn     ReturnType = "RETURN"
	ReturnTypeExchange   ReturnType = "EXCHANGE"
	ReturnTypeGiftReturn ReturnType = "GIFT_RETURN"
)

// ReturnStatus enumerates RMA lifecycle states.
type ReturnStatus string

const (
	ReturnStatusEligibility ReturnStatus = "ELIGIBILITY"
	ReturnStatusApproved    ReturnStatus = "APPROVED"
	ReturnStatusInTransit   ReturnStatus = "IN_TRANSIT"
	ReturnStatusReceived    ReturnStatus = "RECEIVED"
	ReturnStatusRefunded    ReturnStatus = "REFUNDED"
	ReturnStatusRejected    ReturnStatus = "REJECTED"
)

// ReturnGraph declares the RMA transition graph. Refunded and rejected are
// terminal.
var ReturnGraph = Graph[ReturnStatus]{
	ReturnStatusEligibility: {ReturnStatusApproved, ReturnStatusRejected},
	ReturnStatusApproved:    {ReturnStatusInTransit, ReturnStatusRejected},
	ReturnStatusInTransit:   {ReturnStatusReceived},
	ReturnStatusReceived:    {ReturnStatusRefunded},
	ReturnStatusRefunded:    {},
	ReturnStatusRejected:    {},
}

// ReturnRequest is the RMA aggregate. Values are immutable; every guarded
// operation returns a new value or an error, never mutates in place.
type ReturnRequest struct {
	ID          string
	ExternalKey string
	OrderID     string
	UserID      string
	Type        ReturnType
	Reason      *string
	Status      ReturnStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewReturnRequest creates an RMA in the eligibility state.
func NewReturnRequest(orderID, userID string, returnType ReturnType, reason *string, now time.Time) (ReturnRequest, error) {
	if strings.TrimSpace(orderID) == "" {
		return ReturnRequest{}, apperrors.NewValidationError("order_id required", map[string]any{"field": "order_id"})
	}
	switch returnType {
	case ReturnTypeReturn, ReturnTypeExchange, ReturnTypeGiftReturn:
	default:
		return ReturnRequest{}, apperrors.NewValidationError("unknown return type", map[string]any{"field": "type"})
	}
	return ReturnRequest{
		ID:          uuid.NewString(),
		ExternalKey: generateExternalKey("RMA"),
		OrderID:     orderID,
		UserID:      userID,
		Type:        returnType,
		Reason:      reason,
		Status:      ReturnStatusEligibility,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Finalized reports whether the RMA reached a terminal state.
func (r ReturnRequest) Finalized() bool {
	return ReturnGraph.IsTerminal(r.Status)
}

// Approve moves the RMA from eligibility to approved.
func (r ReturnRequest) Approve(now time.Time) (ReturnRequest, error) {
	return r.transitionTo(ReturnStatusApproved, now)
}

// Reject is legal from any non-terminal state, bypassing the graph edges.
func (r ReturnRequest) Reject(now time.Time) (ReturnRequest, error) {
	if r.Finalized() {
		return r, apperrors.NewAlreadyFinalized("return request", string(r.Status))
	}
	r.Status = ReturnStatusRejected
	r.UpdatedAt = now
	return r, nil
}

// MarkInTransit records that the customer shipped the items back.
func (r ReturnRequest) MarkInTransit(now time.Time) (ReturnRequest, error) {
	return r.transitionTo(ReturnStatusInTransit, now)
}

// MarkReceived records warehouse receipt of the returned items.
func (r ReturnRequest) MarkReceived(now time.Time) (ReturnRequest, error) {
	return r.transitionTo(ReturnStatusReceived, now)
}

// MarkRefunded settles the RMA.
func (r ReturnRequest) MarkRefunded(now time.Time) (ReturnRequest, error) {
	return r.transitionTo(ReturnStatusRefunded, now)
}

// UpdateReason replaces the free-text reason while the RMA is still open.
func (r ReturnRequest) UpdateReason(reason string, now time.Time) (ReturnRequest, error) {
	if r.Finalized() {
		return r, apperrors.NewFinalized("return request", "reason", string(r.Status))
	}
	r.Reason = &reason
	r.UpdatedAt = now
	return r, nil
}

func (r ReturnRequest) transitionTo(target ReturnStatus, now time.Time) (ReturnRequest, error) {
	if !ReturnGraph.CanTransition(r.Status, target) {
		return r, apperrors.NewInvalidTransition("return request", string(r.Status), string(target))
	}
	r.Status = target
	r.UpdatedAt = now
	return r, nil
}

func generateExternalKey(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
