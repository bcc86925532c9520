package bridgeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type settingPayload struct {
	Value string `json:"value"`
}

func (s *Server) getSetting(c echo.Context) error {
	key := strings.TrimSpace(c.Param("key"))
	value, found, err := s.store.GetSetting(key)
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to read setting", err.Error())
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Setting not found", nil)
	}
	return ok(c, map[string]interface{}{"key": key, "value": value})
}

func (s *Server) putSetting(c echo.Context) error {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Setting key is required", nil)
	}
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	if err := s.store.StoreSetting(key, payload.Value); err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to store setting", err.Error())
	}
	return ok(c, map[string]interface{}{"key": key, "value": payload.Value})
}
