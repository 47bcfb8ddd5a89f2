package models

import "time"

// Request is an ad-hoc material request: a simpler workflow parallel to
// orders that does not touch inventory directly.
// Status: new -> in_progress -> completed -> sent.
type Request struct {
	ID            int64      `json:"id" db:"id"`
	RequestNumber string     `json:"request_number" db:"request_number"`
	SectionID     *int64     `json:"section_id,omitempty" db:"section_id"`
	Status        string     `json:"status" db:"status"`
	Comment       string     `json:"comment" db:"comment"`
	CreatedBy     *int64     `json:"created_by,omitempty" db:"created_by"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	// Joined names for list views.
	SectionName   string `json:"section_name,omitempty"`
	CreatedByName string `json:"created_by_name,omitempty"`

	Items []RequestItem `json:"items"`
}

// RequestItem is one line of a request. QuantityRequired may be nil,
// in which case the item counts as satisfied for status derivation.
type RequestItem struct {
	ID                int64     `json:"id" db:"id"`
	RequestID         int64     `json:"request_id" db:"request_id"`
	MaterialName      string    `json:"material_name" db:"material_name"`
	QuantityRequired  *int64    `json:"quantity_required" db:"quantity_required"`
	QuantityCompleted int64     `json:"quantity_completed" db:"quantity_completed"`
	Color             *string   `json:"color,omitempty" db:"color"`
	Size              *string   `json:"size,omitempty" db:"size"`
	Comment           string    `json:"comment" db:"comment"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
