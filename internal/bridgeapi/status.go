package bridgeapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/compazz/posbridge/pkg/metrics"
)

var bootTime = time.Now()

// systemStatus is the health snapshot the UI polls for its bridge badge:
// queue depths plus 24h delivery counters.
func (s *Server) systemStatus(c echo.Context) error {
	queueDepth := 0
	if items, err := s.store.GetSyncQueue(); err == nil {
		queueDepth = len(items)
	}
	offline := 0
	if txns, err := s.store.GetOfflineTransactions(); err == nil {
		offline = len(txns)
	}

	day := 24 * time.Hour
	return ok(c, map[string]interface{}{
		"uptime_sec":           int64(time.Since(bootTime).Seconds()),
		"sync_queue_depth":     queueDepth,
		"offline_transactions": offline,
		"print_workers_busy":   s.queue.Running(),
		"prints_24h":           metrics.Summarize(metrics.PrintDelivered, day).Count,
		"print_failures_24h":   metrics.Summarize(metrics.PrintFailed, day).Count,
		"sync_pushed_24h":      metrics.Summarize(metrics.SyncPushed, day).Count,
	})
}
