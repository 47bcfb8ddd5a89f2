package handlers

import (
	"errors"
	"net/http"

	"prodtrack_backend/internal/middleware"
	"prodtrack_backend/internal/services"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler serves production orders, order items and shipments.
type OrderHandler struct {
	orderService     services.OrderService
	inventoryService services.InventoryService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService, is services.InventoryService) *OrderHandler {
	return &OrderHandler{orderService: os, inventoryService: is}
}

// CreateOrder handles the creation of a new order with its items.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	if req.CreatedBy == nil {
		req.CreatedBy = middleware.CallerID(c)
	}

	order, err := h.orderService.CreateOrder(req)
	if err != nil {
		h.respondOrderError(c, err, "CreateOrder")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders lists orders with an optional status filter.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}
	orders, err := h.orderService.GetOrders(status)
	if err != nil {
		utils.RespondInternalError(c, err, "GetOrders: failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order ID format")
		return
	}
	order, err := h.orderService.GetOrderByID(id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		utils.RespondInternalError(c, err, "GetOrder: failed to fetch order")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetShippedOrders lists all shipment records tied to orders.
func (h *OrderHandler) GetShippedOrders(c *gin.Context) {
	shipments, err := h.orderService.GetShippedOrders()
	if err != nil {
		utils.RespondInternalError(c, err, "GetShippedOrders: failed to fetch shipments")
		return
	}
	c.JSON(http.StatusOK, shipments)
}

// GetFreeShipments lists all free-standing shipment records.
func (h *OrderHandler) GetFreeShipments(c *gin.Context) {
	shipments, err := h.orderService.GetFreeShipments()
	if err != nil {
		utils.RespondInternalError(c, err, "GetFreeShipments: failed to fetch shipments")
		return
	}
	c.JSON(http.StatusOK, shipments)
}

// UpdateOrderItemRequest sets one item's completed quantity.
type UpdateOrderItemRequest struct {
	QuantityCompleted *int64 `json:"quantity_completed" binding:"required"`
}

// UpdateOrderItem sets an item's completed quantity and returns the order
// with its recomputed status.
func (h *OrderHandler) UpdateOrderItem(c *gin.Context) {
	orderID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order ID format")
		return
	}
	itemID, ok := utils.ParseIDParam(c, "item_id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order item ID format")
		return
	}
	var req UpdateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}

	order, err := h.orderService.UpdateItemCompletion(orderID, itemID, *req.QuantityCompleted)
	if err != nil {
		h.respondOrderError(c, err, "UpdateOrderItem")
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatusRequest sets an order status. Shipping carries the
// shipped items to run through the inventory ledger.
type UpdateOrderStatusRequest struct {
	Status       string                     `json:"status" binding:"required"`
	ShippedBy    *int64                     `json:"shipped_by"`
	ShippedItems []services.ShipmentRequest `json:"shipped_items"`
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order ID format")
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	if req.ShippedBy == nil {
		req.ShippedBy = middleware.CallerID(c)
	}

	var err error
	var order interface{}
	if req.Status == services.StatusShipped {
		order, err = h.orderService.ShipOrder(services.ShipOrderRequest{
			OrderID:   orderID,
			ShippedBy: req.ShippedBy,
			Items:     req.ShippedItems,
		})
	} else {
		order, err = h.orderService.UpdateOrderStatus(orderID, req.Status)
	}
	if err != nil {
		h.respondOrderError(c, err, "UpdateOrderStatus")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateFreeShipments records a batch of shipments not tied to any order.
func (h *OrderHandler) CreateFreeShipments(c *gin.Context) {
	var req services.FreeShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), ""))
		return
	}
	if req.ShippedBy == nil {
		req.ShippedBy = middleware.CallerID(c)
	}

	if err := h.orderService.CreateFreeShipments(req); err != nil {
		h.respondOrderError(c, err, "CreateFreeShipments")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Materials shipped successfully"})
}

// DeleteOrder removes an order unless it completed within the retention
// window.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order ID format")
		return
	}
	if err := h.orderService.DeleteOrder(id); err != nil {
		h.respondOrderError(c, err, "DeleteOrder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteFreeShipment reverses one free shipment, restoring inventory the
// shipment had deducted.
func (h *OrderHandler) DeleteFreeShipment(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid shipment ID format")
		return
	}
	if err := h.inventoryService.ReverseFreeShipment(id); err != nil {
		h.respondOrderError(c, err, "DeleteFreeShipment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Free shipment deleted"})
}

// DeleteOrderShipments removes an order's shipment records and resets the
// order to completed. Inventory is not restored.
func (h *OrderHandler) DeleteOrderShipments(c *gin.Context) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		utils.RespondValidationFailed(c, "Invalid order ID format")
		return
	}
	if err := h.orderService.DeleteOrderShipments(id); err != nil {
		h.respondOrderError(c, err, "DeleteOrderShipments")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shipments deleted, order returned to completed"})
}

func (h *OrderHandler) respondOrderError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrOrderDeleteWindow):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidShipmentRef):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), ""))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrOrderItemNotFound),
		errors.Is(err, services.ErrMaterialNotFound),
		errors.Is(err, services.ErrShipmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	default:
		utils.RespondInternalError(c, err, operation+": unexpected error")
	}
}
