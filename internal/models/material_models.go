package models

import "time"

// Section groups materials; sections form a tree via ParentID.
type Section struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Color is a display color assignable to materials.
type Color struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	HexCode   string    `json:"hex_code" db:"hex_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Material is a tracked stock item owned by a section.
type Material struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name" binding:"required"`
	SectionID      *int64    `json:"section_id,omitempty" db:"section_id"`
	Quantity       int64     `json:"quantity" db:"quantity"`
	AutoDeduct     bool      `json:"auto_deduct" db:"auto_deduct"`
	ManualDeduct   bool      `json:"manual_deduct" db:"manual_deduct"`
	DefectTracking bool      `json:"defect_tracking" db:"defect_tracking"`
	ImageURL       string    `json:"image_url" db:"image_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Colors         []Color              `json:"colors,omitempty"`
	ColorInventory []ColorInventoryCell `json:"color_inventory,omitempty"`
}

// ColorInventoryCell is one (material, color) inventory quantity.
type ColorInventoryCell struct {
	MaterialID int64  `json:"material_id" db:"material_id"`
	ColorID    int64  `json:"color_id" db:"color_id"`
	Quantity   int64  `json:"quantity" db:"quantity"`
	ColorName  string `json:"color_name,omitempty"`
	HexCode    string `json:"hex_code,omitempty"`
}

// MaterialHistory is an append-only record of a quantity change.
type MaterialHistory struct {
	ID             int64     `json:"id" db:"id"`
	MaterialID     int64     `json:"material_id" db:"material_id"`
	UserID         *int64    `json:"user_id,omitempty" db:"user_id"`
	QuantityChange int64     `json:"quantity_change" db:"quantity_change"`
	ActionType     string    `json:"action_type" db:"action_type"` // add | deduct
	Comment        string    `json:"comment" db:"comment"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
