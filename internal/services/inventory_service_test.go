package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  string
	}{
		{"no items", nil, StatusNew},
		{"untouched", []models.OrderItem{{QuantityRequired: 10, QuantityCompleted: 0}}, StatusNew},
		{"partial", []models.OrderItem{{QuantityRequired: 10, QuantityCompleted: 3}}, StatusInProgress},
		{"one done one untouched", []models.OrderItem{
			{QuantityRequired: 10, QuantityCompleted: 10},
			{QuantityRequired: 5, QuantityCompleted: 0},
		}, StatusInProgress},
		{"all done", []models.OrderItem{
			{QuantityRequired: 10, QuantityCompleted: 10},
			{QuantityRequired: 5, QuantityCompleted: 5},
		}, StatusCompleted},
		{"overshoot counts as done", []models.OrderItem{{QuantityRequired: 10, QuantityCompleted: 12}}, StatusCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveOrderStatus(tt.items); got != tt.want {
				t.Errorf("DeriveOrderStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveRequestStatus(t *testing.T) {
	ten := int64(10)
	tests := []struct {
		name  string
		items []models.RequestItem
		want  string
	}{
		{"no items", nil, StatusNew},
		{"untouched", []models.RequestItem{{QuantityRequired: &ten, QuantityCompleted: 0}}, StatusNew},
		{"partial", []models.RequestItem{{QuantityRequired: &ten, QuantityCompleted: 4}}, StatusInProgress},
		{"done", []models.RequestItem{{QuantityRequired: &ten, QuantityCompleted: 10}}, StatusCompleted},
		{"nil requirement counts as satisfied", []models.RequestItem{{QuantityRequired: nil, QuantityCompleted: 0}}, StatusCompleted},
		{"nil requirement with unfinished sibling", []models.RequestItem{
			{QuantityRequired: nil, QuantityCompleted: 0},
			{QuantityRequired: &ten, QuantityCompleted: 2},
		}, StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveRequestStatus(tt.items); got != tt.want {
				t.Errorf("DeriveRequestStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newInventoryTestService(t *testing.T) (InventoryService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewInventoryService(
		repositories.NewMaterialRepository(db),
		repositories.NewShipmentRepository(db),
		repositories.NewOrderRepository(db),
		db,
	)
	return svc, mock, func() { db.Close() }
}

func TestAdjustQuantityDeduct(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	actor := int64(5)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE materials`).
		WithArgs(int64(-10), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(90)))
	mock.ExpectQuery(`INSERT INTO material_history`).
		WithArgs(int64(1), actor, int64(-10), ActionDeduct, "stocktake").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	newQty, err := svc.AdjustQuantity(AdjustQuantityRequest{
		MaterialID: 1,
		Delta:      -10,
		ActorID:    &actor,
		Comment:    "stocktake",
	})
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if newQty != 90 {
		t.Errorf("new quantity = %d, want 90", newQty)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAdjustQuantityZeroDelta(t *testing.T) {
	svc, _, cleanup := newInventoryTestService(t)
	defer cleanup()

	if _, err := svc.AdjustQuantity(AdjustQuantityRequest{MaterialID: 1, Delta: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestAdjustQuantityMaterialNotFound(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE materials`).
		WithArgs(int64(5), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
	mock.ExpectRollback()

	_, err := svc.AdjustQuantity(AdjustQuantityRequest{MaterialID: 99, Delta: 5})
	if !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("err = %v, want ErrMaterialNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAdjustQuantityRecordsFreeShipment(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	actor := int64(2)
	color := int64(3)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE materials`).
		WithArgs(int64(-4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(6)))
	mock.ExpectQuery(`INSERT INTO material_history`).
		WithArgs(int64(1), actor, int64(-4), ActionDeduct, "shipped to client").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectExec(`INSERT INTO material_color_inventory`).
		WithArgs(int64(1), color, int64(-4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO free_shipments`).
		WithArgs(int64(1), color, int64(4), false, actor, "shipped to client").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipped_at"}).AddRow(int64(11), time.Now()))
	mock.ExpectCommit()

	_, err := svc.AdjustQuantity(AdjustQuantityRequest{
		MaterialID:   1,
		Delta:        -4,
		ColorID:      &color,
		ActorID:      &actor,
		Comment:      "shipped to client",
		ShipMaterial: true,
	})
	if err != nil {
		t.Fatalf("AdjustQuantity: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordShipmentDeductsAndLogs(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	actor := int64(7)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO free_shipments`).
		WithArgs(int64(2), nil, int64(10), false, actor, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipped_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery(`SELECT quantity, auto_deduct FROM materials`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "auto_deduct"}).AddRow(int64(100), true))
	mock.ExpectQuery(`UPDATE materials`).
		WithArgs(int64(-10), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(90)))
	mock.ExpectQuery(`INSERT INTO material_history`).
		WithArgs(int64(2), actor, int64(-10), ActionDeduct, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	err := svc.RecordShipment(ShipmentRequest{MaterialID: 2, Quantity: 10, ActorID: &actor})
	if err != nil {
		t.Fatalf("RecordShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordShipmentDefectiveSkipsDeduction(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO free_shipments`).
		WithArgs(int64(2), nil, int64(3), true, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipped_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	err := svc.RecordShipment(ShipmentRequest{MaterialID: 2, Quantity: 3, IsDefective: true})
	if err != nil {
		t.Fatalf("RecordShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordShipmentAutoDeductOff(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO free_shipments`).
		WithArgs(int64(2), nil, int64(3), false, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipped_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery(`SELECT quantity, auto_deduct FROM materials`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "auto_deduct"}).AddRow(int64(100), false))
	mock.ExpectCommit()

	err := svc.RecordShipment(ShipmentRequest{MaterialID: 2, Quantity: 3})
	if err != nil {
		t.Fatalf("RecordShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordShipmentOrderAutoDeductOff(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	orderID := int64(4)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO shipped_orders`).
		WithArgs(orderID, int64(2), nil, int64(3), false, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shipped_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery(`SELECT quantity, auto_deduct FROM materials`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "auto_deduct"}).AddRow(int64(100), true))
	mock.ExpectQuery(`SELECT auto_deduct, completed_at FROM orders`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"auto_deduct", "completed_at"}).AddRow(false, nil))
	mock.ExpectCommit()

	err := svc.RecordShipment(ShipmentRequest{MaterialID: 2, Quantity: 3, OrderID: &orderID})
	if err != nil {
		t.Fatalf("RecordShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordShipmentRejectsNonPositiveQuantity(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	if err := svc.RecordShipment(ShipmentRequest{MaterialID: 2, Quantity: 0}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestReverseFreeShipmentRestoresInventory(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	shippedBy := int64(2)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "material_id", "color_id", "quantity", "is_defective", "shipped_by", "comment", "shipped_at"}).
			AddRow(int64(7), int64(3), nil, int64(4), false, shippedBy, "x", time.Now()))
	mock.ExpectExec(`DELETE FROM free_shipments`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT quantity, auto_deduct FROM materials`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity", "auto_deduct"}).AddRow(int64(10), true))
	mock.ExpectQuery(`UPDATE materials`).
		WithArgs(int64(4), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(int64(14)))
	mock.ExpectQuery(`INSERT INTO material_history`).
		WithArgs(int64(3), shippedBy, int64(4), ActionAdd, "reversal of shipment 7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))
	mock.ExpectCommit()

	if err := svc.ReverseFreeShipment(7); err != nil {
		t.Fatalf("ReverseFreeShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReverseFreeShipmentDefectiveSkipsRestore(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "material_id", "color_id", "quantity", "is_defective", "shipped_by", "comment", "shipped_at"}).
			AddRow(int64(7), int64(3), nil, int64(4), true, nil, "", time.Now()))
	mock.ExpectExec(`DELETE FROM free_shipments`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := svc.ReverseFreeShipment(7); err != nil {
		t.Fatalf("ReverseFreeShipment: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReverseFreeShipmentNotFound(t *testing.T) {
	svc, mock, cleanup := newInventoryTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, material_id, color_id, quantity, is_defective, shipped_by, comment, shipped_at`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	if err := svc.ReverseFreeShipment(42); !errors.Is(err, ErrShipmentNotFound) {
		t.Errorf("err = %v, want ErrShipmentNotFound", err)
	}
}
