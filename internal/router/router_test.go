package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, authEnforced bool) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	engine := gin.New()
	Setup(engine, db, authEnforced)
	return engine, mock
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestUnknownRouteReturns404(t *testing.T) {
	engine, _ := newTestRouter(t, false)

	w := serve(engine, "GET", "/api/v1/nowhere", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Route not found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestWrongMethodReturns405(t *testing.T) {
	engine, _ := newTestRouter(t, false)

	w := serve(engine, "PATCH", "/api/v1/orders", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Method not supported") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetMissingOrderReturnsNull(t *testing.T) {
	engine, mock := newTestRouter(t, false)

	mock.ExpectQuery(`SELECT .+ FROM orders WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := serve(engine, "GET", "/api/v1/orders/99", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Errorf("body = %q, want null", w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateOrderRejectsMissingNumber(t *testing.T) {
	engine, _ := newTestRouter(t, false)

	w := serve(engine, "POST", "/api/v1/orders", `{"items": [{"quantity_required": 5}]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSectionWritesOpenWhenNotEnforced(t *testing.T) {
	engine, mock := newTestRouter(t, false)

	mock.ExpectQuery(`INSERT INTO sections`).
		WithArgs("Sewing", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), time.Now(), time.Now()))

	w := serve(engine, "POST", "/api/v1/sections", `{"name": "Sewing"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}
}

func TestSectionWritesRequireIdentityWhenEnforced(t *testing.T) {
	engine, _ := newTestRouter(t, true)

	w := serve(engine, "POST", "/api/v1/sections", `{"name": "Sewing"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestSectionReadsStayOpenWhenEnforced(t *testing.T) {
	engine, mock := newTestRouter(t, true)

	mock.ExpectQuery(`SELECT .+ FROM sections`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id", "created_at", "updated_at"}))

	w := serve(engine, "GET", "/api/v1/sections", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestAdjustQuantityRejectsZeroDelta(t *testing.T) {
	engine, _ := newTestRouter(t, false)

	w := serve(engine, "PATCH", "/api/v1/materials/1/quantity", `{"quantity_change": 0}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	engine, _ := newTestRouter(t, false)

	w := serve(engine, "POST", "/api/v1/auth/login", `{"login": "admin"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
