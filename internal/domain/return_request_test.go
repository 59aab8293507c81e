package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

func newTestReturn(t *testing.T) ReturnRequest {
	t.Helper()
	rma, err := NewReturnRequest("order-1", "user-1", ReturnTypeExchange, nil, time.Now())
	require.NoError(t, err)
	return rma
}

func TestNewReturnRequest_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewReturnRequest("", "user-1", ReturnTypeReturn, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = NewReturnRequest("order-1", "user-1", ReturnType("TRADE_IN"), nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	rma, err := NewReturnRequest("order-1", "user-1", ReturnTypeGiftReturn, nil, now)
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusEligibility, rma.Status)
	assert.NotEmpty(t, rma.ID)
	assert.Nil(t, rma.Reason)
}

func TestReturnRequest_TransitionSoundness(t *testing.T) {
	now := time.Now()
	statuses := []ReturnStatus{
		ReturnStatusEligibility, ReturnStatusApproved, ReturnStatusInTransit,
		ReturnStatusReceived, ReturnStatusRefunded, ReturnStatusRejected,
	}
	ops := map[ReturnStatus]func(ReturnRequest) (ReturnRequest, error){
		ReturnStatusApproved:  func(r ReturnRequest) (ReturnRequest, error) { return r.Approve(now) },
		ReturnStatusInTransit: func(r ReturnRequest) (ReturnRequest, error) { return r.MarkInTransit(now) },
		ReturnStatusReceived:  func(r ReturnRequest) (ReturnRequest, error) { return r.MarkReceived(now) },
		ReturnStatusRefunded:  func(r ReturnRequest) (ReturnRequest, error) { return r.MarkRefunded(now) },
	}

	for _, from := range statuses {
		for target, op := range ops {
			rma := newTestReturn(t)
			rma.Status = from
			next, err := op(rma)
			if ReturnGraph.CanTransition(from, target) {
				require.NoError(t, err, "%s -> %s", from, target)
				assert.Equal(t, target, next.Status)
			} else {
				assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err), "%s -> %s", from, target)
				assert.Equal(t, from, next.Status, "failed transition must not change state")
			}
		}
	}
}

func TestReturnRequest_RejectFromAnyNonTerminal(t *testing.T) {
	now := time.Now()
	for _, from := range []ReturnStatus{ReturnStatusEligibility, ReturnStatusApproved, ReturnStatusInTransit, ReturnStatusReceived} {
		rma := newTestReturn(t)
		rma.Status = from
		next, err := rma.Reject(now)
		require.NoError(t, err, "reject from %s", from)
		assert.Equal(t, ReturnStatusRejected, next.Status)
	}

	for _, from := range []ReturnStatus{ReturnStatusRefunded, ReturnStatusRejected} {
		rma := newTestReturn(t)
		rma.Status = from
		_, err := rma.Reject(now)
		assert.Equal(t, "ALREADY_FINALIZED", apperrors.CodeOf(err), "reject from %s", from)
	}
}

func TestReturnRequest_UpdateReason(t *testing.T) {
	rma := newTestReturn(t)
	later := rma.UpdatedAt.Add(time.Minute)

	updated, err := rma.UpdateReason("wrong size", later)
	require.NoError(t, err)
	require.NotNil(t, updated.Reason)
	assert.Equal(t, "wrong size", *updated.Reason)
	assert.True(t, updated.UpdatedAt.After(rma.UpdatedAt))

	for _, terminal := range []ReturnStatus{ReturnStatusRefunded, ReturnStatusRejected} {
		rma := newTestReturn(t)
		rma.Status = terminal
		_, err := rma.UpdateReason("test", later)
		assert.Equal(t, "FINALIZED", apperrors.CodeOf(err))
	}
}

func TestReturnRequest_ExchangeEndToEnd(t *testing.T) {
	now := time.Now()
	rma, err := NewReturnRequest("order-77", "user-9", ReturnTypeExchange, nil, now)
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusEligibility, rma.Status)

	rma, err = rma.Approve(now)
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusApproved, rma.Status)

	// skipping the in-transit step is illegal and must not move the state
	_, err = rma.MarkReceived(now)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))
	assert.Equal(t, ReturnStatusApproved, rma.Status)

	rma, err = rma.MarkInTransit(now)
	require.NoError(t, err)
	rma, err = rma.MarkReceived(now)
	require.NoError(t, err)
	rma, err = rma.MarkRefunded(now)
	require.NoError(t, err)
	assert.Equal(t, ReturnStatusRefunded, rma.Status)

	_, err = rma.UpdateReason("test", now)
	assert.Equal(t, "FINALIZED", apperrors.CodeOf(err))
}

func TestNewReturnItem_Validation(t *testing.T) {
	now := time.Now()
	condition := ItemConditionUsed
	disposition := ItemDispositionRestock
	fee := int64(500)

	item, err := NewReturnItem("rma-1", "line-1", 2, &condition, &disposition, &fee, now)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	_, err = NewReturnItem("rma-1", "line-1", 0, nil, nil, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = NewReturnItem("rma-1", "line-1", -3, nil, nil, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	badFee := int64(-1)
	_, err = NewReturnItem("rma-1", "line-1", 1, nil, nil, &badFee, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	badCondition := ItemCondition("BROKEN")
	_, err = NewReturnItem("rma-1", "line-1", 1, &badCondition, nil, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	badDisposition := ItemDisposition("SHRED")
	_, err = NewReturnItem("rma-1", "line-1", 1, nil, &badDisposition, nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
