package bridgeapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listSyncQueue(c echo.Context) error {
	items, err := s.store.GetSyncQueue()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to read sync queue", err.Error())
	}
	return ok(c, items)
}

func (s *Server) clearSyncQueue(c echo.Context) error {
	if err := s.store.ClearSyncQueue(); err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to clear sync queue", err.Error())
	}
	return ok(c, map[string]interface{}{"cleared": true})
}

// drainSyncQueue triggers an immediate push pass, the "sync now" button.
func (s *Server) drainSyncQueue(c echo.Context) error {
	if s.sync == nil {
		return fail(c, http.StatusConflict, "SYNC_DISABLED", "Sync worker not configured", nil)
	}
	pushed := s.sync.DrainOnce(c.Request().Context())
	return ok(c, map[string]interface{}{"pushed": pushed})
}
