package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/red11scout/blueallygenaiwebsite/internal/auth"
	"github.com/red11scout/blueallygenaiwebsite/internal/errors"
	"github.com/red11scout/blueallygenaiwebsite/internal/models"
)

// respondError writes err as {"error", "code"} with the status its code maps to.
// Internal details stay in the gin error list for the request logger.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{
		"error": errors.Message(err),
		"code":  errors.Code(err),
	})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  errors.ErrCodeInvalidInput,
	})
}

// bindJSON decodes the body into v, answering 400 on failure
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
			"code":  errors.ErrCodeUnauthorized,
		})
	}
	return id, ok
}

// RequireAdmin rejects users without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(auth.UserRoleKey) != string(models.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  errors.ErrCodeForbidden,
			})
			return
		}
		c.Next()
	}
}
