package bridgeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/compazz/posbridge/internal/syncer"
)

func (s *Server) listProducts(c echo.Context) error {
	outletID := strings.TrimSpace(c.QueryParam("outlet_id"))
	products, err := s.store.GetProducts(outletID)
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to read products", err.Error())
	}
	return ok(c, products)
}

func (s *Server) searchProducts(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	outletID := strings.TrimSpace(c.QueryParam("outlet_id"))

	products, err := s.store.SearchProducts(outletID, q)
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Search failed", err.Error())
	}
	return ok(c, products)
}

// importProductsCSV ingests a CSV catalog posted as the request body or
// as a multipart "file" field.
func (s *Server) importProductsCSV(c echo.Context) error {
	body := c.Request().Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open upload", err.Error())
		}
		defer f.Close()
		body = f
	}

	count, err := syncer.ImportCatalogCSV(s.store, body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "IMPORT_FAILED", "Catalog import failed", err.Error())
	}
	return ok(c, map[string]interface{}{"imported": count})
}

func (s *Server) refreshCatalog(c echo.Context) error {
	if s.catalog == nil {
		return fail(c, http.StatusConflict, "SYNC_DISABLED", "No catalog endpoint configured", nil)
	}
	count, err := s.catalog.Refresh(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusBadGateway, "REFRESH_FAILED", "Catalog refresh failed", err.Error())
	}
	return ok(c, map[string]interface{}{"refreshed": count})
}

func (s *Server) clearProducts(c echo.Context) error {
	if err := s.store.ClearProducts(); err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to clear products", err.Error())
	}
	return ok(c, map[string]interface{}{"cleared": true})
}
