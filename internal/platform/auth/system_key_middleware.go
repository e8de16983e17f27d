package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpPlatform "github.com/iai-group/arxivdigest-go/internal/platform/http"
	ledgerModel "github.com/iai-group/arxivdigest-go/modules/ledger/model"
)

// SystemKeyResolver resolves the opaque X-System-Key header used by the
// ingestion surface (spec.md §6), sibling to the JWT-based AuthMiddleware
// used by the operator console.
type SystemKeyResolver interface {
	GetSystemByAPIKey(ctx context.Context, apiKey string) (*ledgerModel.System, error)
}

// SystemKeyMiddleware authenticates an external system by its API key and
// stores the resolved system ID in the gin context under "system_id".
func SystemKeyMiddleware(store SystemKeyResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-System-Key")
		if key == "" {
			httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "X-System-Key header required")
			c.Abort()
			return
		}

		system, err := store.GetSystemByAPIKey(c.Request.Context(), key)
		if err != nil || system == nil {
			httpPlatform.RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or inactive system key")
			c.Abort()
			return
		}

		c.Set("system_id", system.ID)
		c.Next()
	}
}

// GetSystemID extracts the authenticated system ID from context.
func GetSystemID(c *gin.Context) (int64, bool) {
	systemID, exists := c.Get("system_id")
	if !exists {
		return 0, false
	}
	id, ok := systemID.(int64)
	return id, ok
}
