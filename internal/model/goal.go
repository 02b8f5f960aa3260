package model

import "time"

// Goal priorities.
const (
    PriorityLow    = "low"
    PriorityMedium = "medium"
    PriorityHigh   = "high"
)

// Goal is a personal health goal.  CompletedAt is set exactly when
// IsCompleted is true.
type Goal struct {
    ID          int64      `json:"id"`
    UserID      int64      `json:"user_id"`
    Title       string     `json:"title"`
    Description *string    `json:"description"`
    Deadline    *string    `json:"deadline"`
    Priority    string     `json:"priority"`
    IsCompleted bool       `json:"is_completed"`
    CompletedAt *time.Time `json:"completed_at"`
    CreatedAt   time.Time  `json:"created_at"`
    UpdatedAt   time.Time  `json:"updated_at"`
}
