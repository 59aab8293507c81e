package dto

import "time"

// SubmitFeedbackRequest payload.
type SubmitFeedbackRequest struct {
	OrderID  *string `json:"order_id"`
	TicketID *string `json:"ticket_id"`
	Score    int     `json:"score"`
	Comment  *string `json:"comment"`
}

// FeedbackResponse response.
type FeedbackResponse struct {
	ID        string    `json:"id"`
	OrderID   *string   `json:"order_id"`
	TicketID  *string   `json:"ticket_id"`
	Score     int       `json:"score"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
