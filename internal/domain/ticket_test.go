package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

func newTestTicket(t *testing.T) SupportTicket {
	t.Helper()
	ticket, err := NewSupportTicket(nil, nil, TicketSourceWeb, "order never arrived", nil, time.Now())
	require.NoError(t, err)
	return ticket
}

func TestNewSupportTicket_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewSupportTicket(nil, nil, TicketSourceEmail, "   ", nil, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	bad := Priority("WHENEVER")
	_, err = NewSupportTicket(nil, nil, TicketSourceEmail, "subject", &bad, now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	ticket, err := NewSupportTicket(nil, nil, TicketSourcePhone, "  damaged on arrival  ", nil, now)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, "damaged on arrival", ticket.Subject)
}

func TestTicket_MarkInProgressAndResolve(t *testing.T) {
	now := time.Now()
	ticket := newTestTicket(t)

	ticket, err := ticket.MarkInProgress(now)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusInProgress, ticket.Status)

	ticket, err = ticket.MarkResolved(now)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusResolved, ticket.Status)

	closedTicket := newTestTicket(t)
	closedTicket.Status = TicketStatusClosed
	_, err = closedTicket.MarkInProgress(now)
	assert.Equal(t, "TICKET_CLOSED", apperrors.CodeOf(err))
	_, err = closedTicket.MarkResolved(now)
	assert.Equal(t, "ALREADY_CLOSED", apperrors.CodeOf(err))
}

func TestTicket_CloseIsIdempotentAndDirect(t *testing.T) {
	now := time.Now()

	// open -> closed directly, bypassing resolved, is legal
	ticket := newTestTicket(t)
	ticket, err := ticket.Close(now)
	require.NoError(t, err)
	assert.Equal(t, TicketStatusClosed, ticket.Status)
	require.NotNil(t, ticket.ClosedAt)

	// closing again is a no-op, not an error
	again, err := ticket.Close(now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, TicketStatusClosed, again.Status)
	assert.Equal(t, ticket.ClosedAt, again.ClosedAt)
}

func TestTicket_Reopen(t *testing.T) {
	now := time.Now()

	for _, from := range []TicketStatus{TicketStatusClosed, TicketStatusResolved} {
		ticket := newTestTicket(t)
		ticket.Status = from
		reopened, err := ticket.Reopen(now)
		require.NoError(t, err, "reopen from %s", from)
		assert.Equal(t, TicketStatusOpen, reopened.Status)
		assert.Nil(t, reopened.ClosedAt)
	}

	for _, from := range []TicketStatus{TicketStatusOpen, TicketStatusInProgress} {
		ticket := newTestTicket(t)
		ticket.Status = from
		_, err := ticket.Reopen(now)
		assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err), "reopen from %s", from)
	}
}

func TestTicket_SubjectAndPriorityImmutableOnceClosed(t *testing.T) {
	now := time.Now()
	ticket := newTestTicket(t)

	ticket, err := ticket.UpdateSubject("refund request for order 42", now)
	require.NoError(t, err)
	ticket, err = ticket.UpdatePriority(PriorityHigh, now)
	require.NoError(t, err)
	require.NotNil(t, ticket.Priority)
	assert.Equal(t, PriorityHigh, *ticket.Priority)

	ticket, err = ticket.Close(now)
	require.NoError(t, err)

	_, err = ticket.UpdateSubject("too late", now)
	assert.Equal(t, "TICKET_CLOSED", apperrors.CodeOf(err))
	_, err = ticket.UpdatePriority(PriorityLow, now)
	assert.Equal(t, "TICKET_CLOSED", apperrors.CodeOf(err))
}

func TestNewTicketMessage(t *testing.T) {
	now := time.Now()
	agentID := "agent-1"

	msg, err := NewTicketMessage("ticket-1", SenderAgent, &agentID, "looking into it", now)
	require.NoError(t, err)
	assert.Equal(t, SenderAgent, msg.Sender)
	assert.Equal(t, "looking into it", msg.Body)

	_, err = NewTicketMessage("ticket-1", SenderCustomer, nil, "  ", now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

	_, err = NewTicketMessage("ticket-1", MessageSender("BOT"), nil, "hello", now)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
