// Package bridgeapi is the loopback HTTP surface the till UI talks to.
// It binds to localhost only; there is no auth because nothing off the
// machine can reach it.
package bridgeapi

import (
	"context"
	"net/http"

	"github.com/asaskevich/EventBus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/config"
	"github.com/compazz/posbridge/internal/printing"
	"github.com/compazz/posbridge/internal/store"
	"github.com/compazz/posbridge/internal/syncer"
)

// Server wires the HTTP handlers to the daemon's services.
type Server struct {
	cfg     *config.AppConfig
	store   *store.LocalStore
	dsp     *printing.Dispatcher
	queue   *printing.Queue
	dir     *printing.Directory
	sync    *syncer.Service
	catalog *syncer.CatalogRefresher
	bus     EventBus.Bus
	echo    *echo.Echo
}

func NewServer(
	cfg *config.AppConfig,
	st *store.LocalStore,
	dsp *printing.Dispatcher,
	queue *printing.Queue,
	dir *printing.Directory,
	sync *syncer.Service,
	catalog *syncer.CatalogRefresher,
	bus EventBus.Bus,
) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		dsp:     dsp,
		queue:   queue,
		dir:     dir,
		sync:    sync,
		catalog: catalog,
		bus:     bus,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			zap.L().Debug("http request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	s.echo = e
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	g := s.echo.Group("/api/v1")

	g.GET("/products", s.listProducts)
	g.GET("/products/search", s.searchProducts)
	g.POST("/products/import", s.importProductsCSV)
	g.POST("/products/refresh", s.refreshCatalog)
	g.DELETE("/products", s.clearProducts)

	g.POST("/transactions", s.createTransaction)
	g.GET("/transactions", s.listTransactions)
	g.GET("/transactions/export", s.exportTransactions)
	g.DELETE("/transactions/:offline_id", s.deleteTransaction)
	g.DELETE("/transactions", s.clearTransactions)

	g.GET("/settings/:key", s.getSetting)
	g.PUT("/settings/:key", s.putSetting)

	g.GET("/sync/queue", s.listSyncQueue)
	g.DELETE("/sync/queue", s.clearSyncQueue)
	g.POST("/sync/drain", s.drainSyncQueue)

	g.POST("/print", s.printReceipt)
	g.POST("/print/async", s.printReceiptAsync)
	g.POST("/drawer/open", s.openDrawer)
	g.GET("/printers", s.listPrinters)
	g.GET("/printers/status", s.printerStatus)
	g.POST("/receipt/email", s.emailReceipt)

	g.GET("/status", s.systemStatus)
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Web.Listen()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	zap.L().Info("bridge api listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.echo.Shutdown(context.Background())
	}
}
