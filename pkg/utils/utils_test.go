package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateAccessToken(42, "worker1", "worker")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 || claims.Login != "worker1" || claims.Role != "worker" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "admin", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	SetJWTSecret("completely-different-secret")
	defer SetJWTSecret("prodtrack-dev-secret-change-me")

	if _, err := ValidateToken(token); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("PRODTRACK_TEST_KEY", "set")
	if got := Getenv("PRODTRACK_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("Getenv = %q, want %q", got, "set")
	}
	if got := Getenv("PRODTRACK_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("Getenv = %q, want %q", got, "fallback")
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		raw    string
		wantID int64
		wantOK bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}
		id, ok := ParseIDParam(c, "id")
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("ParseIDParam(%q) = (%d, %v), want (%d, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestNewNullString(t *testing.T) {
	if NewNullString("") != nil {
		t.Error("empty string should map to nil")
	}
	if got := NewNullString("red"); got == nil || *got != "red" {
		t.Errorf("NewNullString(%q) = %v", "red", got)
	}
}

func TestQueryInt64Ptr(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?limit=25&bad=x", nil)

	if got := QueryInt64Ptr(c, "limit"); got == nil || *got != 25 {
		t.Errorf("limit = %v, want 25", got)
	}
	if got := QueryInt64Ptr(c, "bad"); got != nil {
		t.Errorf("bad = %v, want nil", got)
	}
	if got := QueryInt64Ptr(c, "absent"); got != nil {
		t.Errorf("absent = %v, want nil", got)
	}
}
