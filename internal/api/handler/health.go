package handler

import (
	"net/http"

	"github.com/kiranshivaraju/rescueassist/internal/api/response"
	"github.com/kiranshivaraju/rescueassist/internal/cache"
	"github.com/kiranshivaraju/rescueassist/internal/store"
)

// NewHealthHandler checks store and cache connectivity. provider names the
// configured model provider.
func NewHealthHandler(s store.Store, c cache.Cache, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if c != nil {
			if err := c.Ping(r.Context()); err != nil {
				checks["cache"] = "degraded"
			}
		}

		if checks["database"] != "ok" || checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"provider": provider,
			"services": checks,
		})
	}
}
