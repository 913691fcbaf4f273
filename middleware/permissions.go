package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/morpheus-mall/mall-backend/internal/auth"
)

// Role constants to avoid string typos
const (
	RoleAdmin      = auth.RoleAdmin
	RoleStoreAdmin = auth.RoleStoreAdmin
	RoleDesigner   = auth.RoleDesigner
	RoleCustomer   = auth.RoleCustomer
)

const (
	PermissionFull     = "full"
	PermissionReadOnly = "readonly"
)

// AccessContext stores user access information
type AccessContext struct {
	UserID         uint
	RoleName       string
	PermissionType string // "full" or "readonly"
}

// NewAccessContext derives the permission level from the user's role.
func NewAccessContext(user auth.User) AccessContext {
	ac := AccessContext{
		UserID:         user.ID,
		RoleName:       user.Role.RoleName,
		PermissionType: PermissionReadOnly,
	}
	switch user.Role.RoleName {
	case RoleAdmin, RoleStoreAdmin:
		ac.PermissionType = PermissionFull
	}
	return ac
}

// CanWrite returns true if the user has write permissions
func (ac *AccessContext) CanWrite() bool {
	return ac.PermissionType == PermissionFull
}

// CanRead returns true if the user has read permissions
func (ac *AccessContext) CanRead() bool {
	return ac.PermissionType == PermissionFull || ac.PermissionType == PermissionReadOnly
}

func (ac *AccessContext) IsAdmin() bool {
	return ac.RoleName == RoleAdmin
}

// GetAccessContext returns the access context set by AuthMiddleware.
func GetAccessContext(c *gin.Context) (AccessContext, bool) {
	v, exists := c.Get("access_context")
	if !exists {
		return AccessContext{}, false
	}
	ac, ok := v.(AccessContext)
	return ac, ok
}
