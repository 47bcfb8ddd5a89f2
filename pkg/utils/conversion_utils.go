package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Int64ToStr converts an int64 to its string representation.
func Int64ToStr(num int64) string {
	return strconv.FormatInt(num, 10)
}

// StrToInt64 converts a string to an int64.
func StrToInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ParseIDParam reads a positive integer path parameter.
func ParseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NewNullString returns nil for empty strings so optional fields land as
// NULL in the database.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// QueryInt64Ptr reads an optional integer query parameter, returning nil
// when it is absent or malformed.
func QueryInt64Ptr(c *gin.Context, name string) *int64 {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}
