package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"prodtrack_backend/internal/repositories"
	"prodtrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the identity middleware.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// RequestID attaches a request ID to every request for log correlation.
// An incoming X-Request-Id is kept, otherwise one is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(utils.RequestIDKey, id)
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// Identity resolves the caller. A Bearer token takes precedence; otherwise
// the X-User-Id header is looked up in the users table. Requests without
// either pass through anonymous, as does an X-User-Id that names no user:
// whether an identity was required is decided by the role checks on the
// route, not here.
func Identity(userRepo repositories.UserRepository, db repositories.SQLExecutor) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
				return
			}
			claims, err := utils.ValidateToken(parts[1])
			if err != nil {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", ""))
				return
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUserRole, claims.Role)
			c.Next()
			return
		}

		if rawID := c.GetHeader("X-User-Id"); rawID != "" {
			userID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || userID <= 0 {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid X-User-Id header", ""))
				return
			}
			role, err := userRepo.GetUserRole(db, userID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					c.Next()
					return
				}
				utils.RespondInternalError(c, err, "Identity: resolving X-User-Id")
				return
			}
			c.Set(CtxUserID, userID)
			c.Set(CtxUserRole, role)
		}

		c.Next()
	}
}

// RequireRoles gates an endpoint to the given roles. Historically the check
// only ran when the caller sent an identity; enforced=true closes that gap
// and rejects anonymous callers too.
func RequireRoles(enforced bool, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxUserRole)
		if !exists {
			if enforced {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authentication required", ""))
				return
			}
			c.Next()
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range allowedRoles {
			if strings.EqualFold(roleStr, allowed) {
				c.Next()
				return
			}
		}
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have permission to access this resource", ""))
	}
}

// CallerID returns the resolved user ID, nil for anonymous requests.
func CallerID(c *gin.Context) *int64 {
	value, exists := c.Get(CtxUserID)
	if !exists {
		return nil
	}
	id, ok := value.(int64)
	if !ok {
		return nil
	}
	return &id
}
