package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"prodtrack_backend/internal/models"
	"prodtrack_backend/internal/repositories"
)

func newMaterialTestService(t *testing.T) (MaterialService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewMaterialService(repositories.NewMaterialRepository(db), db)
	return svc, mock, func() { db.Close() }
}

func TestCreateSectionNameConflict(t *testing.T) {
	svc, mock, cleanup := newMaterialTestService(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO sections`).
		WithArgs("Sewing", nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "sections_name_key"})

	err := svc.CreateSection(&models.Section{Name: "Sewing"})
	if !errors.Is(err, ErrNameConflict) {
		t.Errorf("err = %v, want ErrNameConflict", err)
	}
}

func TestCreateSectionRequiresName(t *testing.T) {
	svc, _, cleanup := newMaterialTestService(t)
	defer cleanup()

	if err := svc.CreateSection(&models.Section{}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpdateSectionNoFields(t *testing.T) {
	svc, _, cleanup := newMaterialTestService(t)
	defer cleanup()

	if _, err := svc.UpdateSection(1, map[string]interface{}{}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCreateMaterialDefaultsAutoDeduct(t *testing.T) {
	svc, mock, cleanup := newMaterialTestService(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO materials`).
		WithArgs("fabric", nil, int64(100), true, false, false, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))
	mock.ExpectExec(`INSERT INTO material_colors`).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM materials WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "section_id", "quantity", "auto_deduct", "manual_deduct", "defect_tracking", "image_url", "created_at", "updated_at"}).
			AddRow(int64(1), "fabric", nil, int64(100), true, false, false, "", now, now))
	mock.ExpectQuery(`SELECT c\.id, c\.name`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "hex_code", "created_at", "updated_at"}).
			AddRow(int64(2), "black", "#000000", now, now))
	mock.ExpectQuery(`material_color_inventory`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"color_id", "quantity"}))

	material, err := svc.CreateMaterial(CreateMaterialRequest{
		Name:     "fabric",
		Quantity: 100,
		ColorIDs: []int64{2},
	})
	if err != nil {
		t.Fatalf("CreateMaterial: %v", err)
	}
	if !material.AutoDeduct {
		t.Error("auto_deduct should default to true")
	}
	if len(material.Colors) != 1 {
		t.Errorf("colors = %d, want 1", len(material.Colors))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateMaterialRequiresName(t *testing.T) {
	svc, _, cleanup := newMaterialTestService(t)
	defer cleanup()

	if _, err := svc.CreateMaterial(CreateMaterialRequest{}); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestDeleteMaterialNotFound(t *testing.T) {
	svc, mock, cleanup := newMaterialTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM material_colors WHERE material_id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM materials WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := svc.DeleteMaterial(9); !errors.Is(err, ErrMaterialNotFound) {
		t.Errorf("err = %v, want ErrMaterialNotFound", err)
	}
}
