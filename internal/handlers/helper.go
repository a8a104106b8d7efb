package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller's identity, verified upstream. The engine
// treats it as opaque.
const UserIDHeader = "X-User-ID"

// UserIDMiddleware copies the optional identity header into the gin context.
func UserIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(UserIDHeader)); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

// optionalUserID returns the caller's user id, or nil for anonymous callers.
func optionalUserID(c *gin.Context) *string {
	if userID, exists := c.Get("user_id"); exists {
		if s, ok := userID.(string); ok && s != "" {
			return &s
		}
	}
	return nil
}

// requireUserID returns the caller's user id or responds 401 and returns "".
func requireUserID(c *gin.Context) string {
	if userID := optionalUserID(c); userID != nil {
		return *userID
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Message: "User not authenticated",
		Details: "missing " + UserIDHeader + " header",
	})
	return ""
}

// ParseStringIDParam extracts a non-empty string path parameter or responds 400.
func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

func parseIntQuery(c *gin.Context, param string, defaultValue int) int {
	valueStr := c.Query(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
