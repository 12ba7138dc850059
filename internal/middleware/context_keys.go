package middleware

import (
	"github.com/finledger/fin_ledger_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey      = contextKey("userID")
	tenantIDKey    = contextKey("tenantID")
	permissionsKey = contextKey("permissions")
)

// GetUserIDFromContext retrieves the authenticated user ID from the request
// context. It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok
}

// GetTenantIDFromContext retrieves the authenticated tenant ID from the
// request context.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	return tenantID, ok
}

// GetCallerFromContext assembles the caller identity resolved by the auth
// middleware: user, tenant and granted permissions. The boolean is false when
// the request is not authenticated.
func GetCallerFromContext(c *gin.Context) (domain.Caller, bool) {
	userID, okUser := GetUserIDFromContext(c)
	tenantID, okTenant := GetTenantIDFromContext(c)
	if !okUser || !okTenant {
		return domain.Caller{}, false
	}
	permissions, _ := c.Request.Context().Value(permissionsKey).([]string)
	return domain.Caller{
		UserID:      userID,
		TenantID:    tenantID,
		Permissions: permissions,
	}, true
}
