package domain

import "time"

// HistoryEntityType identifies which aggregate a history row belongs to.
type HistoryEntityType string

const (
	HistoryEntityReturn      HistoryEntityType = "RETURN"
	HistoryEntityRepair      HistoryEntityType = "REPAIR"
	HistoryEntityTicket      HistoryEntityType = "TICKET"
	HistoryEntityChat        HistoryEntityType = "CHAT"
	HistoryEntityAppointment HistoryEntityType = "APPOINTMENT"
)

// ServiceHistory is an audit row recorded after each successful transition.
type ServiceHistory struct {
	ID            string
	EntityType    HistoryEntityType
	EntityID      string
	ChangedByType SubjectType
	ChangedByID   *string
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
