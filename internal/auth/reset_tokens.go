package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

const resetKeyPrefix = "pwreset:"

// ResetToken is the payload stored behind a one-time reset token.
type ResetToken struct {
	SubjectType domain.SubjectType `json:"subject_type"`
	SubjectID   string             `json:"subject_id"`
}

// ResetTokenStore keeps password-reset tokens in Redis with a TTL. Eviction
// is handled by Redis itself and consumption is a single atomic GETDEL, so
// there is no sweep loop and no read-check-delete race.
type ResetTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetTokenStore builds the store.
func NewResetTokenStore(client *redis.Client, ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Put stores the token payload under the given opaque token string.
func (s *ResetTokenStore) Put(ctx context.Context, token string, payload ResetToken) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, resetKeyPrefix+token, data, s.ttl).Err()
}

// Consume atomically fetches and deletes the token. The second return is
// false when the token is unknown, already used, or expired.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (ResetToken, bool, error) {
	data, err := s.client.GetDel(ctx, resetKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return ResetToken{}, false, nil
	}
	if err != nil {
		return ResetToken{}, false, err
	}
	var payload ResetToken
	if err := json.Unmarshal(data, &payload); err != nil {
		return ResetToken{}, false, err
	}
	return payload, true, nil
}
