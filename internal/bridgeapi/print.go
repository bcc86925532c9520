package bridgeapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/internal/escpos"
	"github.com/compazz/posbridge/internal/printing"
	"github.com/compazz/posbridge/pkg/metrics"
)

func (s *Server) buildPrintJob(payload domain.PrintRequest) *printing.Job {
	codepage := s.cfg.Printing.Codepage
	if v, found, _ := s.store.GetSetting("printer.codepage"); found {
		codepage = v
	}

	raw := escpos.BuildReceipt(escpos.ReceiptJob{
		Content:       payload.Content,
		Copies:        payload.Copies,
		Cut:           payload.Cut,
		OpenDrawer:    payload.OpenDrawer,
		FeedBeforeCut: payload.FeedBeforeCut,
		QRData:        payload.QRData,
		Codepage:      codepage,
	})

	return &printing.Job{
		Target:  strings.TrimSpace(payload.PrinterName),
		Payload: raw,
		Content: payload.Content,
	}
}

// printReceipt delivers synchronously and always answers 200; the
// outcome is in the body. The UI decides what to tell the cashier.
func (s *Server) printReceipt(c echo.Context) error {
	var payload domain.PrintRequest
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse print request", err.Error())
	}
	if payload.Content == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Nothing to print", nil)
	}

	result := s.dsp.Dispatch(c.Request().Context(), s.buildPrintJob(payload))
	if result.Success {
		metrics.Incr(metrics.PrintDelivered)
	} else {
		metrics.Incr(metrics.PrintFailed)
	}
	return ok(c, result)
}

// printReceiptAsync queues the job and returns its id immediately.
// Completion is published on the bus and surfaced via /status.
func (s *Server) printReceiptAsync(c echo.Context) error {
	var payload domain.PrintRequest
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse print request", err.Error())
	}
	if payload.Content == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Nothing to print", nil)
	}

	jobID, err := s.queue.Submit(s.buildPrintJob(payload))
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "QUEUE_FULL", "Print queue rejected the job", err.Error())
	}
	return ok(c, map[string]interface{}{"job_id": jobID})
}

type drawerPayload struct {
	PrinterName string `json:"printer_name"`
}

// openDrawer sends a kick pulse with no receipt. The silent fallback is
// skipped; HTML rendering cannot open a drawer.
func (s *Server) openDrawer(c echo.Context) error {
	var payload drawerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse drawer request", err.Error())
	}

	job := &printing.Job{
		Target:     strings.TrimSpace(payload.PrinterName),
		Payload:    escpos.BuildDrawerKick(),
		DrawerOnly: true,
	}
	result := s.dsp.Dispatch(c.Request().Context(), job)
	return ok(c, result)
}

func (s *Server) listPrinters(c echo.Context) error {
	printers := s.dir.List(c.Request().Context())
	return ok(c, printers)
}

// printerStatus probes a network printer over SNMP. host is required;
// spooler printers have no standard remote status interface.
func (s *Server) printerStatus(c echo.Context) error {
	host := strings.TrimSpace(c.QueryParam("host"))
	if host == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "host query parameter is required", nil)
	}
	status := printing.ProbePrinter(c.Request().Context(), host)
	return ok(c, status)
}
