package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/aftersale-service/pkg/util"
)

func newTestChat(t *testing.T) ChatSession {
	t.Helper()
	session, err := NewChatSession(nil, nil, nil, time.Now())
	require.NoError(t, err)
	return session
}

func TestChatSession_AssignAgent(t *testing.T) {
	session := newTestChat(t)
	assert.Equal(t, ChatStatusWaiting, session.Status)

	// assignment from waiting jumps straight to active
	session, err := session.AssignAgent("agent-7")
	require.NoError(t, err)
	assert.Equal(t, ChatStatusActive, session.Status)
	require.NotNil(t, session.AgentID)
	assert.Equal(t, "agent-7", *session.AgentID)

	_, err = session.AssignAgent("  ")
	assert.Equal(t, "EMPTY_AGENT_ID", apperrors.CodeOf(err))

	ended, err := session.End(time.Now())
	require.NoError(t, err)
	_, err = ended.AssignAgent("agent-8")
	assert.Equal(t, "SESSION_ENDED", apperrors.CodeOf(err))
}

func TestChatSession_EndStampsOnce(t *testing.T) {
	start := time.Now()
	session, err := NewChatSession(nil, nil, nil, start)
	require.NoError(t, err)

	endTime := start.Add(12 * time.Minute)
	session, err = session.End(endTime)
	require.NoError(t, err)
	assert.Equal(t, ChatStatusEnded, session.Status)
	require.NotNil(t, session.EndedAt)
	assert.Equal(t, endTime, *session.EndedAt)

	_, err = session.End(endTime.Add(time.Minute))
	assert.Equal(t, "ALREADY_ENDED", apperrors.CodeOf(err))

	duration, ok := session.Duration()
	require.True(t, ok)
	assert.Equal(t, 12*time.Minute, duration)
}

func TestChatSession_DurationUndefinedWhileOpen(t *testing.T) {
	session := newTestChat(t)
	_, ok := session.Duration()
	assert.False(t, ok)
}

func TestChatSession_MutationsFailOnceEnded(t *testing.T) {
	now := time.Now()
	session := newTestChat(t)
	session, err := session.End(now)
	require.NoError(t, err)

	_, err = session.UpdateStatus(ChatStatusActive, now)
	assert.Equal(t, "SESSION_ENDED", apperrors.CodeOf(err))

	_, err = session.UpdateTopic("late topic")
	assert.Equal(t, "SESSION_ENDED", apperrors.CodeOf(err))

	_, err = session.UpdatePriority(PriorityHigh)
	assert.Equal(t, "SESSION_ENDED", apperrors.CodeOf(err))
}

func TestChatSession_UpdateStatus(t *testing.T) {
	now := time.Now()
	session := newTestChat(t)

	session, err := session.UpdateStatus(ChatStatusActive, now)
	require.NoError(t, err)
	assert.Equal(t, ChatStatusActive, session.Status)

	// active cannot go back to waiting
	_, err = session.UpdateStatus(ChatStatusWaiting, now)
	assert.Equal(t, "INVALID_TRANSITION", apperrors.CodeOf(err))

	// moving to ended stamps the end time like End
	session, err = session.UpdateStatus(ChatStatusEnded, now)
	require.NoError(t, err)
	assert.Equal(t, ChatStatusEnded, session.Status)
	require.NotNil(t, session.EndedAt)
}

func TestChatSession_UpdateTopicAndPriority(t *testing.T) {
	session := newTestChat(t)

	session, err := session.UpdateTopic("billing question")
	require.NoError(t, err)
	require.NotNil(t, session.Topic)
	assert.Equal(t, "billing question", *session.Topic)

	session, err = session.UpdatePriority(PriorityUrgent)
	require.NoError(t, err)
	require.NotNil(t, session.Priority)
	assert.Equal(t, PriorityUrgent, *session.Priority)

	_, err = session.UpdatePriority(Priority("SOMEDAY"))
	assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))
}
