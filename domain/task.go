package domain

import "time"

// Task status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task priority values.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task represents a user-owned to-do item.
type Task struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	DueDate      time.Time `json:"due_date"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// ValidStatus reports whether s is a recognised task status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusCompleted
}

// ValidPriority reports whether p is a recognised task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ReminderWindow returns the calendar-day interval covering tomorrow in the
// location of now: [tomorrow 00:00:00, tomorrow 23:59:59.999999999].
func ReminderWindow(now time.Time) (start, end time.Time) {
	tomorrow := now.AddDate(0, 0, 1)
	start = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
