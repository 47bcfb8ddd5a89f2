package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"prodtrack_backend/internal/repositories"
)

func newOrderTestService(t *testing.T) (OrderService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	materialRepo := repositories.NewMaterialRepository(db)
	shipmentRepo := repositories.NewShipmentRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	inventory := NewInventoryService(materialRepo, shipmentRepo, orderRepo, db)
	svc := NewOrderService(orderRepo, shipmentRepo, inventory, db)
	return svc, mock, func() { db.Close() }
}

func orderRows(completedAt *time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "order_number", "section_id", "status", "auto_deduct",
		"comment", "created_by", "completed_at", "shipped_at", "created_at", "updated_at",
	}).AddRow(int64(1), "ORD-1", nil, "completed", true, "", nil, completedAt, nil, now, now)
}

func TestCreateOrderRequiresItems(t *testing.T) {
	svc, _, cleanup := newOrderTestService(t)
	defer cleanup()

	_, err := svc.CreateOrder(CreateOrderRequest{OrderNumber: "ORD-1"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestDeleteOrderInsideRetentionWindow(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	completed := time.Now().Add(-30 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(&completed))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}))

	if err := svc.DeleteOrder(1); !errors.Is(err, ErrOrderDeleteWindow) {
		t.Errorf("err = %v, want ErrOrderDeleteWindow", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderAfterRetentionWindow(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	completed := time.Now().Add(-200 * 24 * time.Hour)
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(&completed))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.DeleteOrder(1); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderNeverCompleted(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(nil))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.DeleteOrder(1); err != nil {
		t.Fatalf("DeleteOrder: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateOrderStatusKeepsCompletedAt(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	completed := time.Now().Add(-48 * time.Hour)
	itemCols := []string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("new", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(&completed))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols))

	order, err := svc.UpdateOrderStatus(1, "new")
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if order.CompletedAt == nil {
		t.Error("completed_at was cleared by a direct status update")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateOrderStatusCompletedStampsTime(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	completed := time.Now()
	itemCols := []string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE orders SET status = \$1, completed_at = \$2`).
		WithArgs(StatusCompleted, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(&completed))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols))

	if _, err := svc.UpdateOrderStatus(1, StatusCompleted); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderShipmentsResetsOrder(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM shipped_orders WHERE order_id = \$1\)`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM shipped_orders WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE orders SET status = 'completed', shipped_at = NULL`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.DeleteOrderShipments(1); err != nil {
		t.Fatalf("DeleteOrderShipments: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOrderShipmentsWithNoRecords(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM shipped_orders WHERE order_id = \$1\)`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if err := svc.DeleteOrderShipments(9); !errors.Is(err, ErrInvalidShipmentRef) {
		t.Errorf("err = %v, want ErrInvalidShipmentRef", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateItemCompletionRecomputesStatus(t *testing.T) {
	svc, mock, cleanup := newOrderTestService(t)
	defer cleanup()

	now := time.Now()
	itemCols := []string{"id", "order_id", "material_id", "color_id", "quantity_required", "quantity_completed", "created_at", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE order_items`).
		WithArgs(int64(5), int64(2)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(2), int64(1), nil, nil, int64(10), int64(5), now, now))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(2), int64(1), nil, nil, int64(10), int64(5), now, now))
	mock.ExpectExec(`UPDATE orders SET status = \$1, completed_at = \$2`).
		WithArgs(StatusInProgress, nil, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(orderRows(nil))
	mock.ExpectQuery(`SELECT .+ FROM order_items WHERE order_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(int64(2), int64(1), nil, nil, int64(10), int64(5), now, now))

	order, err := svc.UpdateItemCompletion(1, 2, 5)
	if err != nil {
		t.Fatalf("UpdateItemCompletion: %v", err)
	}
	if len(order.Items) != 1 {
		t.Errorf("items = %d, want 1", len(order.Items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateItemCompletionRejectsNegative(t *testing.T) {
	svc, _, cleanup := newOrderTestService(t)
	defer cleanup()

	if _, err := svc.UpdateItemCompletion(1, 2, -1); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}
