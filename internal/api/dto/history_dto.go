package dto

import (
	"time"

	"github.com/spec-kit/aftersale-service/internal/domain"
)

// HistoryResponse represents one audit entry.
type HistoryResponse struct {
	ID            string             `json:"id"`
	ChangedByType domain.SubjectType `json:"changed_by_type"`
	ChangedByID   *string            `json:"changed_by_id"`
	OldValue      map[string]any     `json:"old_value"`
	NewValue      map[string]any     `json:"new_value"`
	CreatedAt     time.Time          `json:"created_at"`
}
