package models

import "time"

// Order is a production order grouping line items per (material, color).
// Status is derived from item completion: new -> in_progress -> completed -> shipped.
type Order struct {
	ID          int64      `json:"id" db:"id"`
	OrderNumber string     `json:"order_number" db:"order_number"`
	SectionID   *int64     `json:"section_id,omitempty" db:"section_id"`
	Status      string     `json:"status" db:"status"`
	AutoDeduct  bool       `json:"auto_deduct" db:"auto_deduct"`
	Comment     string     `json:"comment" db:"comment"`
	CreatedBy   *int64     `json:"created_by,omitempty" db:"created_by"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty" db:"shipped_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Items []OrderItem `json:"items"`
}

// OrderItem is one required-quantity line of an order.
type OrderItem struct {
	ID                int64     `json:"id" db:"id"`
	OrderID           int64     `json:"order_id" db:"order_id"`
	MaterialID        *int64    `json:"material_id,omitempty" db:"material_id"`
	ColorID           *int64    `json:"color_id,omitempty" db:"color_id"`
	QuantityRequired  int64     `json:"quantity_required" db:"quantity_required"`
	QuantityCompleted int64     `json:"quantity_completed" db:"quantity_completed"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ShippedOrder is a ledger entry recording a shipment tied to an order.
type ShippedOrder struct {
	ID          int64     `json:"id" db:"id"`
	OrderID     int64     `json:"order_id" db:"order_id"`
	MaterialID  int64     `json:"material_id" db:"material_id"`
	ColorID     *int64    `json:"color_id,omitempty" db:"color_id"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	IsDefective bool      `json:"is_defective" db:"is_defective"`
	ShippedBy   *int64    `json:"shipped_by,omitempty" db:"shipped_by"`
	ShippedAt   time.Time `json:"shipped_at" db:"shipped_at"`

	// Joined from orders for list views.
	OrderNumber string `json:"order_number,omitempty"`
	SectionID   *int64 `json:"section_id,omitempty"`
}

// FreeShipment is a shipment not tied to any order. Deleting a
// non-defective free shipment restores the deducted inventory.
type FreeShipment struct {
	ID          int64     `json:"id" db:"id"`
	MaterialID  int64     `json:"material_id" db:"material_id"`
	ColorID     *int64    `json:"color_id,omitempty" db:"color_id"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	IsDefective bool      `json:"is_defective" db:"is_defective"`
	ShippedBy   *int64    `json:"shipped_by,omitempty" db:"shipped_by"`
	Comment     string    `json:"comment" db:"comment"`
	ShippedAt   time.Time `json:"shipped_at" db:"shipped_at"`
}
