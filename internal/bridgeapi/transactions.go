package bridgeapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"

	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/pkg/metrics"
)

type transactionPayload struct {
	OutletID      string                   `json:"outlet_id"`
	Lines         []domain.TransactionLine `json:"lines"`
	Subtotal      float64                  `json:"subtotal"`
	Tax           float64                  `json:"tax"`
	Total         float64                  `json:"total"`
	PaymentMethod string                   `json:"payment_method"`
	// Queue controls whether the sale is also placed on the sync queue.
	// The UI sets it false when the cloud call already succeeded.
	Queue bool `json:"queue"`
}

func (s *Server) createTransaction(c echo.Context) error {
	var payload transactionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transaction", err.Error())
	}
	if len(payload.Lines) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Transaction has no lines", nil)
	}

	txn := domain.OfflineTransaction{
		OutletID:      payload.OutletID,
		Lines:         payload.Lines,
		Subtotal:      payload.Subtotal,
		Tax:           payload.Tax,
		Total:         payload.Total,
		PaymentMethod: payload.PaymentMethod,
	}

	offlineID, err := s.store.StoreOfflineTransaction(txn)
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to store transaction", err.Error())
	}
	txn.OfflineID = offlineID
	txn.Status = domain.TransactionStatusOffline
	metrics.Incr(metrics.TxnStored)

	var queueID uint64
	if payload.Queue {
		queueID, err = s.store.AddToSyncQueue(domain.SyncTypeTransaction, txn)
		if err != nil {
			return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Transaction stored but not queued", err.Error())
		}
	}

	return ok(c, map[string]interface{}{
		"offline_id": offlineID,
		"queue_id":   queueID,
	})
}

func (s *Server) listTransactions(c echo.Context) error {
	txns, err := s.store.GetOfflineTransactions()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to read transactions", err.Error())
	}
	return ok(c, txns)
}

func (s *Server) deleteTransaction(c echo.Context) error {
	offlineID := c.Param("offline_id")
	if err := s.store.RemoveOfflineTransaction(offlineID); err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to remove transaction", err.Error())
	}
	return ok(c, map[string]interface{}{"offline_id": offlineID})
}

func (s *Server) clearTransactions(c echo.Context) error {
	if err := s.store.ClearOfflineTransactions(); err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to clear transactions", err.Error())
	}
	return ok(c, map[string]interface{}{"cleared": true})
}

// exportTransactions writes the offline ledger as an XLSX workbook, one
// row per transaction line. since/until accept any common date format.
func (s *Server) exportTransactions(c echo.Context) error {
	var since, until time.Time
	if v := strings.TrimSpace(c.QueryParam("since")); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unparseable since date", err.Error())
		}
		since = t
	}
	if v := strings.TrimSpace(c.QueryParam("until")); v != "" {
		t, err := dateparse.ParseAny(v)
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unparseable until date", err.Error())
		}
		until = t
	}

	txns, err := s.store.GetOfflineTransactions()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "STORE_ERROR", "Failed to read transactions", err.Error())
	}

	xlsx := excelize.NewFile()
	sheet := "Sheet1"
	headers := []string{"Offline ID", "Outlet", "Created At", "Status", "Payment",
		"Product", "Qty", "Unit Price", "Line Total", "Txn Total"}
	for i, h := range headers {
		xlsx.SetCellValue(sheet, fmt.Sprintf("%c1", 'A'+i), h)
	}

	row := 2
	for _, txn := range txns {
		if !since.IsZero() && txn.CreatedAt.Before(since) {
			continue
		}
		if !until.IsZero() && txn.CreatedAt.After(until) {
			continue
		}
		for _, line := range txn.Lines {
			xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), txn.OfflineID)
			xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), txn.OutletID)
			xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), txn.CreatedAt.Format(time.RFC3339))
			xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), txn.Status)
			xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), txn.PaymentMethod)
			xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), line.Name)
			xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), line.Qty)
			xlsx.SetCellValue(sheet, fmt.Sprintf("H%d", row), line.UnitPrice)
			xlsx.SetCellValue(sheet, fmt.Sprintf("I%d", row), line.Total)
			xlsx.SetCellValue(sheet, fmt.Sprintf("J%d", row), txn.Total)
			row++
		}
	}

	c.Response().Header().Set(echo.HeaderContentType,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="offline-transactions.xlsx"`)
	c.Response().WriteHeader(http.StatusOK)
	return xlsx.Write(c.Response())
}
