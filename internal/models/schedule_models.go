package models

import "time"

// TimeEntry is one row of worked hours, keyed (user_id, work_date).
// Writes are idempotent upserts on that key.
type TimeEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	WorkDate  string    `json:"work_date" db:"work_date"` // YYYY-MM-DD
	Hours     float64   `json:"hours" db:"hours"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined from users for list views.
	FullName string     `json:"full_name,omitempty"`
	Role     string     `json:"role,omitempty"`
	FiredAt  *time.Time `json:"fired_at,omitempty"`
}

// TimesheetDay is one day cell of a monthly timesheet.
type TimesheetDay struct {
	Hours    float64 `json:"hours"`
	Comment  string  `json:"comment"`
	RecordID int64   `json:"record_id"`
}

// UserTimesheet groups a user's time entries for one month.
type UserTimesheet struct {
	UserID   int64                   `json:"user_id"`
	FullName string                  `json:"full_name"`
	FiredAt  *time.Time              `json:"fired_at,omitempty"`
	Days     map[string]TimesheetDay `json:"days"`
}

// TimesheetEmployee is a roster entry for the timesheet view, independent
// of user accounts.
type TimesheetEmployee struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WorkScheduleEntry is a planned working day for a user.
type WorkScheduleEntry struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	WorkDate   string    `json:"work_date" db:"work_date"` // YYYY-MM-DD
	ShiftStart *string   `json:"shift_start,omitempty" db:"shift_start"`
	ShiftEnd   *string   `json:"shift_end,omitempty" db:"shift_end"`
	IsDayOff   bool      `json:"is_day_off" db:"is_day_off"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
