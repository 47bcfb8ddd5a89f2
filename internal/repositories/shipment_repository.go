package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"prodtrack_backend/internal/models"
)

// ShipmentRepository defines database operations for the two shipment
// ledgers: order-tied shipped_orders and free-standing free_shipments.
type ShipmentRepository interface {
	InsertShippedOrder(executor SQLExecutor, shipment *models.ShippedOrder) error
	GetShippedOrders() ([]models.ShippedOrder, error)
	DeleteShippedOrdersByOrder(executor SQLExecutor, orderID int64) (int64, error)
	HasShippedOrders(orderID int64) (bool, error)

	InsertFreeShipment(executor SQLExecutor, shipment *models.FreeShipment) error
	GetFreeShipments() ([]models.FreeShipment, error)
	GetFreeShipmentByID(executor SQLExecutor, id int64) (*models.FreeShipment, error)
	DeleteFreeShipment(executor SQLExecutor, id int64) error
}

type shipmentRepository struct {
	db *sql.DB
}

// NewShipmentRepository creates a new instance of ShipmentRepository.
func NewShipmentRepository(db *sql.DB) ShipmentRepository {
	return &shipmentRepository{db: db}
}

func (r *shipmentRepository) InsertShippedOrder(executor SQLExecutor, shipment *models.ShippedOrder) error {
	query := `INSERT INTO shipped_orders (order_id, material_id, color_id, quantity, is_defective, shipped_by, shipped_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING id, shipped_at`
	err := executor.QueryRow(query,
		shipment.OrderID, shipment.MaterialID, shipment.ColorID,
		shipment.Quantity, shipment.IsDefective, shipment.ShippedBy,
	).Scan(&shipment.ID, &shipment.ShippedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting shipped order record: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *shipmentRepository) GetShippedOrders() ([]models.ShippedOrder, error) {
	shipments := []models.ShippedOrder{}
	rows, err := r.db.Query(
		`SELECT so.id, so.order_id, so.material_id, so.color_id, so.quantity,
		        so.is_defective, so.shipped_by, so.shipped_at,
		        o.order_number, o.section_id
		 FROM shipped_orders so
		 JOIN orders o ON o.id = so.order_id
		 ORDER BY so.shipped_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting shipped orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var shipment models.ShippedOrder
		if err := rows.Scan(
			&shipment.ID, &shipment.OrderID, &shipment.MaterialID, &shipment.ColorID,
			&shipment.Quantity, &shipment.IsDefective, &shipment.ShippedBy, &shipment.ShippedAt,
			&shipment.OrderNumber, &shipment.SectionID,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning shipped order: %v", ErrDatabaseError, err)
		}
		shipments = append(shipments, shipment)
	}
	return shipments, rows.Err()
}

func (r *shipmentRepository) DeleteShippedOrdersByOrder(executor SQLExecutor, orderID int64) (int64, error) {
	result, err := executor.Exec(`DELETE FROM shipped_orders WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting shipped orders for order %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected, nil
}

func (r *shipmentRepository) HasShippedOrders(orderID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM shipped_orders WHERE order_id = $1)`, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking shipped orders for order %d: %v", ErrDatabaseError, orderID, err)
	}
	return exists, nil
}

func (r *shipmentRepository) InsertFreeShipment(executor SQLExecutor, shipment *models.FreeShipment) error {
	query := `INSERT INTO free_shipments (material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW())
	          RETURNING id, shipped_at`
	err := executor.QueryRow(query,
		shipment.MaterialID, shipment.ColorID, shipment.Quantity,
		shipment.IsDefective, shipment.ShippedBy, shipment.Comment,
	).Scan(&shipment.ID, &shipment.ShippedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting free shipment: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *shipmentRepository) GetFreeShipments() ([]models.FreeShipment, error) {
	shipments := []models.FreeShipment{}
	rows, err := r.db.Query(
		`SELECT id, material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at
		 FROM free_shipments
		 ORDER BY shipped_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: getting free shipments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var shipment models.FreeShipment
		if err := rows.Scan(
			&shipment.ID, &shipment.MaterialID, &shipment.ColorID, &shipment.Quantity,
			&shipment.IsDefective, &shipment.ShippedBy, &shipment.Comment, &shipment.ShippedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning free shipment: %v", ErrDatabaseError, err)
		}
		shipments = append(shipments, shipment)
	}
	return shipments, rows.Err()
}

// GetFreeShipmentByID reads through the executor so the reversal path can
// load and delete the record inside one transaction.
func (r *shipmentRepository) GetFreeShipmentByID(executor SQLExecutor, id int64) (*models.FreeShipment, error) {
	shipment := &models.FreeShipment{}
	err := executor.QueryRow(
		`SELECT id, material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at
		 FROM free_shipments WHERE id = $1`, id,
	).Scan(
		&shipment.ID, &shipment.MaterialID, &shipment.ColorID, &shipment.Quantity,
		&shipment.IsDefective, &shipment.ShippedBy, &shipment.Comment, &shipment.ShippedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting free shipment %d: %v", ErrDatabaseError, id, err)
	}
	return shipment, nil
}

func (r *shipmentRepository) DeleteFreeShipment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM free_shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting free shipment %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
