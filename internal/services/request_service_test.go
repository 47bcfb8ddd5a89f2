package services

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"prodtrack_backend/internal/repositories"
)

func newRequestTestService(t *testing.T) (RequestService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	svc := NewRequestService(repositories.NewRequestRepository(db), db)
	return svc, mock, func() { db.Close() }
}

func requestRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "request_number", "section_id", "status", "comment", "created_by",
		"completed_at", "created_at", "updated_at", "section_name", "created_by_name",
	}).AddRow(int64(1), "REQ-1", nil, status, "", nil, nil, now, now, "", "")
}

func requestItemCols() []string {
	return []string{"id", "request_id", "material_name", "quantity_required", "quantity_completed", "color", "size", "comment", "created_at", "updated_at"}
}

func TestCreateRequestRequiresItems(t *testing.T) {
	svc, _, cleanup := newRequestTestService(t)
	defer cleanup()

	_, err := svc.CreateRequest(CreateRequestRequest{RequestNumber: "REQ-1"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestCreateRequestWithOptionalQuantity(t *testing.T) {
	svc, mock, cleanup := newRequestTestService(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO requests`).
		WithArgs("REQ-1", nil, "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow(int64(1), "new", now, now))
	mock.ExpectQuery(`INSERT INTO request_items`).
		WithArgs(int64(1), "thread, black", nil, nil, nil, "for section 2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity_completed", "created_at", "updated_at"}).
			AddRow(int64(3), int64(0), now, now))
	mock.ExpectCommit()

	request, err := svc.CreateRequest(CreateRequestRequest{
		RequestNumber: "REQ-1",
		Items:         []CreateRequestItemRequest{{MaterialName: "thread, black", Comment: "for section 2"}},
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if len(request.Items) != 1 || request.Items[0].QuantityRequired != nil {
		t.Errorf("items = %+v", request.Items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSendRequestPreservesCompletedAt(t *testing.T) {
	svc, mock, cleanup := newRequestTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET status = 'sent', updated_at = NOW\(\) WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT r\.id, r\.request_number`).
		WithArgs(int64(1)).
		WillReturnRows(requestRows("sent"))
	mock.ExpectQuery(`SELECT .+ FROM request_items WHERE request_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(requestItemCols()))

	request, err := svc.SendRequest(1)
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if request.Status != "sent" {
		t.Errorf("status = %q, want sent", request.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSendRequestNotFound(t *testing.T) {
	svc, mock, cleanup := newRequestTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET status = 'sent'`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if _, err := svc.SendRequest(9); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("err = %v, want ErrRequestNotFound", err)
	}
}

func TestUpdateItemCompletionMarksRequestCompleted(t *testing.T) {
	svc, mock, cleanup := newRequestTestService(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT request_id FROM request_items WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}).AddRow(int64(1)))
	mock.ExpectQuery(`UPDATE request_items`).
		WithArgs(int64(5), int64(3)).
		WillReturnRows(sqlmock.NewRows(requestItemCols()).
			AddRow(int64(3), int64(1), "fabric", int64(5), int64(5), nil, nil, "", now, now))
	mock.ExpectQuery(`SELECT .+ FROM request_items WHERE request_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(requestItemCols()).
			AddRow(int64(3), int64(1), "fabric", int64(5), int64(5), nil, nil, "", now, now))
	mock.ExpectExec(`UPDATE requests SET status = \$1, completed_at = \$2`).
		WithArgs(StatusCompleted, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT r\.id, r\.request_number`).
		WithArgs(int64(1)).
		WillReturnRows(requestRows("completed"))
	mock.ExpectQuery(`SELECT .+ FROM request_items WHERE request_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(requestItemCols()))

	if _, err := svc.UpdateItemCompletion(3, 5); err != nil {
		t.Fatalf("UpdateItemCompletion: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateItemCompletionUnknownItem(t *testing.T) {
	svc, mock, cleanup := newRequestTestService(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT request_id FROM request_items WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}))
	mock.ExpectRollback()

	if _, err := svc.UpdateItemCompletion(42, 1); !errors.Is(err, ErrRequestItemNotFound) {
		t.Errorf("err = %v, want ErrRequestItemNotFound", err)
	}
}
