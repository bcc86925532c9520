package bridgeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compazz/posbridge/config"
	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/internal/printing"
	"github.com/compazz/posbridge/internal/store"
)

type captureStrategy struct {
	mode     string
	payloads [][]byte
}

func (c *captureStrategy) Mode() string { return c.mode }

func (c *captureStrategy) Attempt(_ context.Context, job *printing.Job) error {
	c.payloads = append(c.payloads, job.Payload)
	return nil
}

func newTestServer(t *testing.T) (*Server, *captureStrategy) {
	t.Helper()

	st, err := store.NewLocalStore(filepath.Join(t.TempDir(), "posbridge.db"), 1)
	require.NoError(t, err)
	require.NoError(t, st.Init())
	t.Cleanup(func() { _ = st.Close() })

	strategy := &captureStrategy{mode: domain.PrintModeNetwork}
	dsp := printing.NewDispatcherWithStrategies(strategy)

	queue, err := printing.NewQueue(1, dsp, nil, st.NewID)
	require.NoError(t, err)
	t.Cleanup(queue.Release)

	cfg := *config.DefaultAppConfig
	srv := NewServer(&cfg, st, dsp, queue, printing.NewDirectory(), nil, nil, nil)
	return srv, strategy
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echoHeaderContentType, "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

func TestSettingsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(srv, http.MethodGet, "/api/v1/settings/receipt.footer", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(srv, http.MethodPut, "/api/v1/settings/receipt.footer", `{"value":"Terima kasih"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(srv, http.MethodGet, "/api/v1/settings/receipt.footer", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Terima kasih")
}

func TestCreateTransactionQueues(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"outlet_id":"o1","lines":[{"product_id":"p1","name":"Kopi","qty":1,"unit_price":5000,"total":5000}],"total":5000,"payment_method":"cash","queue":true}`
	rec := doJSON(srv, http.MethodPost, "/api/v1/transactions", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "offline_")

	rec = doJSON(srv, http.MethodGet, "/api/v1/sync/queue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"transaction"`)
}

func TestCreateTransactionRejectsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/v1/transactions", `{"outlet_id":"o1","lines":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPrintEndpoint(t *testing.T) {
	srv, strategy := newTestServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/v1/print", `{"content":"RECEIPT\nTotal 5000","copies":1,"cut":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
	require.Len(t, strategy.payloads, 1)
	// the payload reaches the strategy as an ESC/POS stream
	assert.Equal(t, byte(0x1B), strategy.payloads[0][0])
	assert.Equal(t, byte(0x40), strategy.payloads[0][1])
}

func TestPrintRejectsEmptyContent(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/v1/print", `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductImportAndSearch(t *testing.T) {
	srv, _ := newTestServer(t)

	csv := "id,outlet_id,sku,barcode,name,price,active\np1,o1,S1,111,Teh Botol,5000,true\n"
	rec := doJSON(srv, http.MethodPost, "/api/v1/products/import", csv)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(srv, http.MethodGet, "/api/v1/products/search?outlet_id=o1&q=teh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Teh Botol")
}

func TestSyncDrainDisabled(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(srv, http.MethodPost, "/api/v1/sync/drain", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
