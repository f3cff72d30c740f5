package webhook

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"lavanderia_backend/platform/config"
)

// APIKeyRequired guards the provider callback endpoints with a shared secret.
// The gateway is configured to send the same key on every delivery.
func APIKeyRequired(cfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := cfg.GetWebhookAPIKey()
		provided := c.GetHeader("X-Webhook-API-Key")

		if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook key"})
			return
		}

		c.Next()
	}
}
