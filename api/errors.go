package api

import (
	"errors"
	"fmt"
	"strconv"

	"storefront/db"
	"storefront/utils"

	"github.com/gin-gonic/gin"
)

// respondStoreError maps a store error onto the matching HTTP status.
// notFound is the message used for db.ErrNotFound.
func respondStoreError(c *gin.Context, err error, notFound, action string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		utils.GinNotFound(c, notFound)
	case errors.Is(err, db.ErrConflict):
		utils.GinConflict(c, err.Error())
	case errors.Is(err, db.ErrInvalidInput):
		utils.GinBadRequest(c, err.Error())
	case errors.Is(err, db.ErrInvalidCredentials):
		utils.GinUnauthorized(c, "Invalid credentials")
	default:
		utils.GinInternalServerError(c, fmt.Sprintf("Failed to %s: %v", action, err))
	}
}

// pathID parses the :id path parameter. It writes a 400 and returns false
// when the parameter is not an integer.
func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.GinBadRequest(c, fmt.Sprintf("Invalid id '%s': must be an integer", raw))
		return 0, false
	}
	return id, true
}
