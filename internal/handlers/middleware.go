package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/encetamasb/TheSpaghettiDetective/internal/models"
	"github.com/encetamasb/TheSpaghettiDetective/internal/service"
)

// deviceContextKey holds the resolved DeviceIdentity in the gin context.
const deviceContextKey = "device"

// bearerToken extracts the credential from "Authorization: Bearer <t>".
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (h *Handler) userIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	userId, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set("userId", userId)
	c.Next()
}

// deviceAuthMiddleware resolves the printer auth token into a
// DeviceIdentity. Printers are never user sessions; the two middlewares
// share nothing but the header format.
func (h *Handler) deviceAuthMiddleware(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing or malformed Authorization header",
		})
		return
	}

	device, err := h.services.ResolveDevice(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDeviceToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or inactive token",
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to resolve device", "device_auth_failed", err)
		c.Abort()
		return
	}

	c.Set(deviceContextKey, device)
	c.Next()
}

// deviceFromContext fetches the DeviceIdentity stored by
// deviceAuthMiddleware.
func deviceFromContext(c *gin.Context) (*models.DeviceIdentity, bool) {
	v, ok := c.Get(deviceContextKey)
	if !ok {
		return nil, false
	}
	device, ok := v.(*models.DeviceIdentity)
	return device, ok
}
