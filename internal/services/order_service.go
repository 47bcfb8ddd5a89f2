package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemNotFound  = errors.New("order item not found")
	ErrOrderDeleteWindow  = errors.New("order can be deleted only 180 days after completion")
	ErrInvalidShipmentRef = errors.New("invalid shipment reference")
)

// orderDeleteRetention is how long a completed order stays protected from
// deletion.
const orderDeleteRetention = 180 * 24 * time.Hour

// CreateOrderItemRequest is one line of a new order.
type CreateOrderItemRequest struct {
	MaterialID       *int64 `json:"material_id"`
	ColorID          *int64 `json:"color_id"`
	QuantityRequired int64  `json:"quantity_required" binding:"required,gt=0"`
}

// CreateOrderRequest is used for creating a new order.
type CreateOrderRequest struct {
	OrderNumber string                   `json:"order_number" binding:"required"`
	SectionID   *int64                   `json:"section_id"`
	Comment     string                   `json:"comment"`
	CreatedBy   *int64                   `json:"created_by"`
	AutoDeduct  *bool                    `json:"auto_deduct"`
	Items       []CreateOrderItemRequest `json:"items" binding:"required,dive"`
}

// ShipOrderRequest marks an order shipped and records the shipped items.
type ShipOrderRequest struct {
	OrderID   int64             `json:"id"`
	ShippedBy *int64            `json:"shipped_by"`
	Items     []ShipmentRequest `json:"shipped_items"`
}

// FreeShipmentRequest records shipments not tied to any order.
type FreeShipmentRequest struct {
	ShippedBy *int64            `json:"shipped_by"`
	Comment   string            `json:"comment"`
	Items     []ShipmentRequest `json:"items"`
}

type OrderService interface {
	CreateOrder(req CreateOrderRequest) (*models.Order, error)
	GetOrders(status *string) ([]models.Order, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetShippedOrders() ([]models.ShippedOrder, error)
	GetFreeShipments() ([]models.FreeShipment, error)
	UpdateItemCompletion(orderID, itemID, quantityCompleted int64) (*models.Order, error)
	UpdateOrderStatus(orderID int64, status string) (*models.Order, error)
	ShipOrder(req ShipOrderRequest) (*models.Order, error)
	CreateFreeShipments(req FreeShipmentRequest) error
	DeleteOrder(orderID int64) error
	DeleteOrderShipments(orderID int64) error
}

type orderService struct {
	orderRepo    repositories.OrderRepository
	shipmentRepo repositories.ShipmentRepository
	inventory    InventoryService
	db           *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	sr repositories.ShipmentRepository,
	inv InventoryService,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:    or,
		shipmentRepo: sr,
		inventory:    inv,
		db:           db,
	}
}

func (s *orderService) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if req.OrderNumber == "" || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order_number and items are required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order := &models.Order{
		OrderNumber: req.OrderNumber,
		SectionID:   req.SectionID,
		Comment:     req.Comment,
		CreatedBy:   req.CreatedBy,
		AutoDeduct:  req.AutoDeduct == nil || *req.AutoDeduct,
	}
	if err := s.orderRepo.CreateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, itemReq := range req.Items {
		if itemReq.QuantityRequired <= 0 {
			return nil, fmt.Errorf("%w: quantity_required must be positive", ErrValidation)
		}
		item := models.OrderItem{
			OrderID:          order.ID,
			MaterialID:       itemReq.MaterialID,
			ColorID:          itemReq.ColorID,
			QuantityRequired: itemReq.QuantityRequired,
		}
		if err := s.orderRepo.CreateOrderItem(tx, &item); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrders(status *string) ([]models.Order, error) {
	return s.orderRepo.GetOrders(status)
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetShippedOrders() ([]models.ShippedOrder, error) {
	return s.shipmentRepo.GetShippedOrders()
}

func (s *orderService) GetFreeShipments() ([]models.FreeShipment, error) {
	return s.shipmentRepo.GetFreeShipments()
}

// UpdateItemCompletion sets one item's completed quantity and recomputes the
// order status from all items. completed_at is stamped on the transition to
// completed and cleared otherwise.
func (s *orderService) UpdateItemCompletion(orderID, itemID, quantityCompleted int64) (*models.Order, error) {
	if quantityCompleted < 0 {
		return nil, fmt.Errorf("%w: quantity_completed cannot be negative", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.orderRepo.UpdateItemCompletion(tx, itemID, quantityCompleted); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to update order item: %w", err)
	}

	items, err := s.orderRepo.GetOrderItems(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	newStatus := DeriveOrderStatus(items)
	var completedAt *time.Time
	if newStatus == StatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	if err := s.orderRepo.SetOrderStatus(tx, orderID, newStatus, completedAt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

// UpdateOrderStatus sets a status directly. Shipping goes through ShipOrder.
// A move to completed stamps completed_at; any other status leaves an
// existing stamp untouched so the delete retention window keeps working.
func (s *orderService) UpdateOrderStatus(orderID int64, status string) (*models.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if status == StatusCompleted {
		now := time.Now()
		err = s.orderRepo.SetOrderStatus(tx, orderID, status, &now)
	} else {
		err = s.orderRepo.SetOrderStatusOnly(tx, orderID, status)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrderByID(orderID)
}

// ShipOrder records every shipped item through the inventory ledger and
// stamps the order shipped. All writes share one transaction.
func (s *orderService) ShipOrder(req ShipOrderRequest) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range req.Items {
		item.OrderID = &req.OrderID
		if item.ActorID == nil {
			item.ActorID = req.ShippedBy
		}
		if err := s.inventory.ApplyShipment(tx, item); err != nil {
			return nil, err
		}
	}
	if err := s.orderRepo.MarkOrderShipped(tx, req.OrderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrOrderNotFound, req.OrderID)
		}
		return nil, fmt.Errorf("failed to mark order shipped: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return s.GetOrderByID(req.OrderID)
}

// CreateFreeShipments records a batch of shipments not tied to any order.
func (s *orderService) CreateFreeShipments(req FreeShipmentRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items are required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range req.Items {
		item.OrderID = nil
		if item.ActorID == nil {
			item.ActorID = req.ShippedBy
		}
		if item.Comment == "" {
			item.Comment = req.Comment
		}
		if err := s.inventory.ApplyShipment(tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteOrder removes an order and its items. Orders completed within the
// retention window are protected.
func (s *orderService) DeleteOrder(orderID int64) error {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if order.CompletedAt != nil && time.Since(*order.CompletedAt) < orderDeleteRetention {
		return ErrOrderDeleteWindow
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.orderRepo.DeleteOrderItems(tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if err := s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteOrderShipments removes all shipped-order records for an order and
// returns the order to completed with shipped_at cleared. Inventory deducted
// at shipping time is not restored.
func (s *orderService) DeleteOrderShipments(orderID int64) error {
	shipped, err := s.shipmentRepo.HasShippedOrders(orderID)
	if err != nil {
		return fmt.Errorf("failed to check shipped orders: %w", err)
	}
	if !shipped {
		return fmt.Errorf("%w: no shipments for order %d", ErrInvalidShipmentRef, orderID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := s.shipmentRepo.DeleteShippedOrdersByOrder(tx, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete shipped orders: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: no shipments for order %d", ErrInvalidShipmentRef, orderID)
	}
	if err := s.orderRepo.ResetOrderToCompleted(tx, orderID); err != nil {
		return fmt.Errorf("failed to reset order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
