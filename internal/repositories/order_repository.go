package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"prodtrack_backend/internal/models"
)

// OrderRepository defines database operations for production orders and
// their line items.
type OrderRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) error
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) error
	GetOrders(status *string) ([]models.Order, error)
	GetOrderByID(id int64) (*models.Order, error)
	GetOrderItems(executor SQLExecutor, orderID int64) ([]models.OrderItem, error)
	UpdateItemCompletion(executor SQLExecutor, itemID int64, quantityCompleted int64) (*models.OrderItem, error)
	SetOrderStatus(executor SQLExecutor, orderID int64, status string, completedAt *time.Time) error
	SetOrderStatusOnly(executor SQLExecutor, orderID int64, status string) error
	MarkOrderShipped(executor SQLExecutor, orderID int64) error
	ResetOrderToCompleted(executor SQLExecutor, orderID int64) error
	GetOrderMeta(executor SQLExecutor, orderID int64) (autoDeduct bool, completedAt *time.Time, err error)
	DeleteOrderItems(executor SQLExecutor, orderID int64) error
	DeleteOrder(executor SQLExecutor, orderID int64) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, section_id, status, auto_deduct, comment, created_by, completed_at, shipped_at, created_at, updated_at`

func scanOrderRow(row scanner) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.SectionID, &order.Status, &order.AutoDeduct,
		&order.Comment, &order.CreatedBy, &order.CompletedAt, &order.ShippedAt,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders (order_number, section_id, status, auto_deduct, comment, created_by, created_at, updated_at)
	          VALUES ($1, $2, 'new', $3, $4, $5, NOW(), NOW())
	          RETURNING id, status, created_at, updated_at`
	err := executor.QueryRow(query,
		order.OrderNumber, order.SectionID, order.AutoDeduct, order.Comment, order.CreatedBy,
	).Scan(&order.ID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, material_id, color_id, quantity_required, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          RETURNING id, quantity_completed, created_at, updated_at`
	err := executor.QueryRow(query,
		item.OrderID, item.MaterialID, item.ColorID, item.QuantityRequired,
	).Scan(&item.ID, &item.QuantityCompleted, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) GetOrders(status *string) ([]models.Order, error) {
	orders := []models.Order{}

	var rows *sql.Rows
	var err error
	if status != nil && *status != "" {
		rows, err = r.db.Query(`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC`, *status)
	} else {
		rows, err = r.db.Query(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: getting orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating orders: %v", ErrDatabaseError, err)
	}

	for i := range orders {
		items, err := r.GetOrderItems(r.db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) GetOrderByID(id int64) (*models.Order, error) {
	order, err := scanOrderRow(r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting order by ID %d: %v", ErrDatabaseError, id, err)
	}

	items, err := r.GetOrderItems(r.db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetOrderItems(executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	rows, err := executor.Query(
		`SELECT id, order_id, material_id, color_id, quantity_required, quantity_completed, created_at, updated_at
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting items for order %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.MaterialID, &item.ColorID,
			&item.QuantityRequired, &item.QuantityCompleted, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning order item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *orderRepository) UpdateItemCompletion(executor SQLExecutor, itemID int64, quantityCompleted int64) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	query := `UPDATE order_items
	          SET quantity_completed = $1, updated_at = NOW()
	          WHERE id = $2
	          RETURNING id, order_id, material_id, color_id, quantity_required, quantity_completed, created_at, updated_at`
	err := executor.QueryRow(query, quantityCompleted, itemID).Scan(
		&item.ID, &item.OrderID, &item.MaterialID, &item.ColorID,
		&item.QuantityRequired, &item.QuantityCompleted, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating completion for order item %d: %v", ErrDatabaseError, itemID, err)
	}
	return item, nil
}

// SetOrderStatus writes a derived status. completed_at is written as given:
// the recompute path supplies now() only on transition to completed and
// passes through whatever was there otherwise.
func (r *orderRepository) SetOrderStatus(executor SQLExecutor, orderID int64, status string, completedAt *time.Time) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = $1, completed_at = $2, updated_at = NOW() WHERE id = $3`,
		status, completedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: setting status for order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetOrderStatusOnly writes a status without touching completed_at, for
// direct status updates that must not disturb an earlier completion stamp.
func (r *orderRepository) SetOrderStatusOnly(executor SQLExecutor, orderID int64, status string) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, orderID)
	if err != nil {
		return fmt.Errorf("%w: setting status for order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) MarkOrderShipped(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = 'shipped', shipped_at = NOW(), updated_at = NOW() WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: marking order %d shipped: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetOrderToCompleted returns a shipped order to completed after its
// shipment records were removed. Inventory is not restored on this path.
func (r *orderRepository) ResetOrderToCompleted(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(
		`UPDATE orders SET status = 'completed', shipped_at = NULL, updated_at = NOW() WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: resetting order %d to completed: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) GetOrderMeta(executor SQLExecutor, orderID int64) (bool, *time.Time, error) {
	var autoDeduct bool
	var completedAt *time.Time
	err := executor.QueryRow(
		`SELECT auto_deduct, completed_at FROM orders WHERE id = $1`, orderID,
	).Scan(&autoDeduct, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil, ErrNotFound
		}
		return false, nil, fmt.Errorf("%w: getting meta for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return autoDeduct, completedAt, nil
}

func (r *orderRepository) DeleteOrderItems(executor SQLExecutor, orderID int64) error {
	if _, err := executor.Exec(`DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("%w: deleting items for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return nil
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) error {
	result, err := executor.Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: deleting order %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
