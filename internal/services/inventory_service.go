package services

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrShipmentNotFound  = errors.New("shipment not found")
	ErrZeroQuantityDelta = errors.New("quantity change must be non-zero")
)

// Workflow statuses shared by orders and requests.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusShipped    = "shipped"
	StatusSent       = "sent"
)

// History action types.
const (
	ActionAdd    = "add"
	ActionDeduct = "deduct"
)

// DeriveOrderStatus computes an order's status from its items: completed when
// every item reached its required quantity, in_progress when any item has
// progress, new otherwise. An order with no items is new.
func DeriveOrderStatus(items []models.OrderItem) string {
	if len(items) == 0 {
		return StatusNew
	}
	allDone := true
	anyProgress := false
	for _, item := range items {
		if item.QuantityCompleted < item.QuantityRequired {
			allDone = false
		}
		if item.QuantityCompleted > 0 {
			anyProgress = true
		}
	}
	if allDone {
		return StatusCompleted
	}
	if anyProgress {
		return StatusInProgress
	}
	return StatusNew
}

// DeriveRequestStatus applies the same three-way rule to request items.
// An item with no required quantity counts as satisfied.
func DeriveRequestStatus(items []models.RequestItem) string {
	if len(items) == 0 {
		return StatusNew
	}
	allDone := true
	anyProgress := false
	for _, item := range items {
		if item.QuantityRequired != nil && item.QuantityCompleted < *item.QuantityRequired {
			allDone = false
		}
		if item.QuantityCompleted > 0 {
			anyProgress = true
		}
	}
	if allDone {
		return StatusCompleted
	}
	if anyProgress {
		return StatusInProgress
	}
	return StatusNew
}

// AdjustQuantityRequest is the input for a manual stock adjustment.
type AdjustQuantityRequest struct {
	MaterialID   int64  `json:"material_id"`
	Delta        int64  `json:"quantity_change"`
	ColorID      *int64 `json:"color_id"`
	ActorID      *int64 `json:"user_id"`
	Comment      string `json:"comment"`
	ShipMaterial bool   `json:"ship_material"`
	IsDefective  bool   `json:"is_defective"`
}

// ShipmentRequest describes one shipment event. OrderID nil means a free
// shipment; defective shipments are recorded but never move inventory.
type ShipmentRequest struct {
	MaterialID  int64  `json:"material_id"`
	ColorID     *int64 `json:"color_id"`
	Quantity    int64  `json:"quantity"`
	IsDefective bool   `json:"is_defective"`
	OrderID     *int64 `json:"order_id"`
	ActorID     *int64 `json:"shipped_by"`
	Comment     string `json:"comment"`
}

// InventoryService keeps material stock, per-color inventory cells and the
// history log consistent across adjustments, shipments and reversals. Every
// multi-statement operation runs inside a single transaction.
type InventoryService interface {
	AdjustQuantity(req AdjustQuantityRequest) (int64, error)
	RecordShipment(req ShipmentRequest) error
	ApplyShipment(tx *sql.Tx, req ShipmentRequest) error
	ReverseFreeShipment(shipmentID int64) error
	GetHistory(materialID int64) ([]models.MaterialHistory, error)
}

type inventoryService struct {
	materialRepo repositories.MaterialRepository
	shipmentRepo repositories.ShipmentRepository
	orderRepo    repositories.OrderRepository
	db           *sql.DB
}

// NewInventoryService creates a new instance of InventoryService.
func NewInventoryService(
	mr repositories.MaterialRepository,
	sr repositories.ShipmentRepository,
	or repositories.OrderRepository,
	db *sql.DB,
) InventoryService {
	return &inventoryService{
		materialRepo: mr,
		shipmentRepo: sr,
		orderRepo:    or,
		db:           db,
	}
}

// AdjustQuantity applies a signed delta to a material's total quantity and
// appends a history row. The delta is applied with a single additive UPDATE,
// so concurrent adjustments cannot lose each other's writes. Going negative
// is allowed. Returns the new quantity.
func (s *inventoryService) AdjustQuantity(req AdjustQuantityRequest) (int64, error) {
	if req.Delta == 0 {
		return 0, fmt.Errorf("%w: %v", ErrValidation, ErrZeroQuantityDelta)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	newQuantity, err := s.materialRepo.ApplyQuantityDelta(tx, req.MaterialID, req.Delta)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, fmt.Errorf("%w: ID %d", ErrMaterialNotFound, req.MaterialID)
		}
		return 0, fmt.Errorf("failed to apply quantity delta: %w", err)
	}

	action := ActionAdd
	if req.Delta < 0 {
		action = ActionDeduct
	}
	history := &models.MaterialHistory{
		MaterialID:     req.MaterialID,
		UserID:         req.ActorID,
		QuantityChange: req.Delta,
		ActionType:     action,
		Comment:        req.Comment,
	}
	if err := s.materialRepo.InsertHistory(tx, history); err != nil {
		return 0, fmt.Errorf("failed to record history: %w", err)
	}

	if req.ColorID != nil {
		if err := s.materialRepo.UpsertColorInventory(tx, req.MaterialID, *req.ColorID, req.Delta); err != nil {
			return 0, fmt.Errorf("failed to update color inventory: %w", err)
		}
	}

	// A deduction flagged ship_material is also recorded as a free shipment.
	if req.ShipMaterial && req.Delta < 0 {
		shipment := &models.FreeShipment{
			MaterialID:  req.MaterialID,
			ColorID:     req.ColorID,
			Quantity:    -req.Delta,
			IsDefective: req.IsDefective,
			ShippedBy:   req.ActorID,
			Comment:     req.Comment,
		}
		if err := s.shipmentRepo.InsertFreeShipment(tx, shipment); err != nil {
			return 0, fmt.Errorf("failed to record free shipment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return newQuantity, nil
}

// RecordShipment records one shipment in its own transaction.
func (s *inventoryService) RecordShipment(req ShipmentRequest) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.ApplyShipment(tx, req); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyShipment writes a shipment inside the caller's transaction. The audit
// record is always written. Inventory moves only when the shipment is not
// defective, the material auto-deducts, and, for order-tied shipments, the
// order auto-deducts too.
func (s *inventoryService) ApplyShipment(tx *sql.Tx, req ShipmentRequest) error {
	if req.Quantity <= 0 {
		return fmt.Errorf("%w: shipment quantity must be positive", ErrValidation)
	}

	if req.OrderID != nil {
		shipment := &models.ShippedOrder{
			OrderID:     *req.OrderID,
			MaterialID:  req.MaterialID,
			ColorID:     req.ColorID,
			Quantity:    req.Quantity,
			IsDefective: req.IsDefective,
			ShippedBy:   req.ActorID,
		}
		if err := s.shipmentRepo.InsertShippedOrder(tx, shipment); err != nil {
			return fmt.Errorf("failed to record shipped order: %w", err)
		}
	} else {
		shipment := &models.FreeShipment{
			MaterialID:  req.MaterialID,
			ColorID:     req.ColorID,
			Quantity:    req.Quantity,
			IsDefective: req.IsDefective,
			ShippedBy:   req.ActorID,
			Comment:     req.Comment,
		}
		if err := s.shipmentRepo.InsertFreeShipment(tx, shipment); err != nil {
			return fmt.Errorf("failed to record free shipment: %w", err)
		}
	}

	if req.IsDefective {
		return nil
	}

	_, autoDeduct, err := s.materialRepo.GetMaterialFlags(tx, req.MaterialID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrMaterialNotFound, req.MaterialID)
		}
		return fmt.Errorf("failed to fetch material flags: %w", err)
	}
	if !autoDeduct {
		return nil
	}
	if req.OrderID != nil {
		orderAutoDeduct, _, err := s.orderRepo.GetOrderMeta(tx, *req.OrderID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: ID %d", ErrOrderNotFound, *req.OrderID)
			}
			return fmt.Errorf("failed to fetch order: %w", err)
		}
		if !orderAutoDeduct {
			return nil
		}
	}

	return s.moveInventory(tx, req.MaterialID, req.ColorID, -req.Quantity, req.ActorID, req.Comment)
}

// ReverseFreeShipment deletes a free shipment and, when it had moved
// inventory, adds the shipped quantity back. Deleting shipped-order records
// does not pass through here and never restores inventory.
func (s *inventoryService) ReverseFreeShipment(shipmentID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	shipment, err := s.shipmentRepo.GetFreeShipmentByID(tx, shipmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: ID %d", ErrShipmentNotFound, shipmentID)
		}
		return fmt.Errorf("failed to fetch free shipment: %w", err)
	}
	if err := s.shipmentRepo.DeleteFreeShipment(tx, shipmentID); err != nil {
		return fmt.Errorf("failed to delete free shipment: %w", err)
	}

	if !shipment.IsDefective {
		_, autoDeduct, err := s.materialRepo.GetMaterialFlags(tx, shipment.MaterialID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to fetch material flags: %w", err)
		}
		if err == nil && autoDeduct {
			comment := fmt.Sprintf("reversal of shipment %d", shipmentID)
			if err := s.moveInventory(tx, shipment.MaterialID, shipment.ColorID, shipment.Quantity, shipment.ShippedBy, comment); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *inventoryService) GetHistory(materialID int64) ([]models.MaterialHistory, error) {
	return s.materialRepo.GetHistory(materialID)
}

// moveInventory applies one signed delta to the material total, the per-color
// cell when a color is involved, and the history log.
func (s *inventoryService) moveInventory(tx *sql.Tx, materialID int64, colorID *int64, delta int64, actorID *int64, comment string) error {
	if _, err := s.materialRepo.ApplyQuantityDelta(tx, materialID, delta); err != nil {
		return fmt.Errorf("failed to apply quantity delta: %w", err)
	}
	if colorID != nil {
		if err := s.materialRepo.UpsertColorInventory(tx, materialID, *colorID, delta); err != nil {
			return fmt.Errorf("failed to update color inventory: %w", err)
		}
	}
	action := ActionAdd
	if delta < 0 {
		action = ActionDeduct
	}
	history := &models.MaterialHistory{
		MaterialID:     materialID,
		UserID:         actorID,
		QuantityChange: delta,
		ActionType:     action,
		Comment:        comment,
	}
	if err := s.materialRepo.InsertHistory(tx, history); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}
