// Package metrics keeps local operational counters in an embedded
// time-series store. Nothing leaves the machine; the bridge status
// endpoint reads summaries from here.
package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Metric names recorded by the daemon.
const (
	PrintDelivered   = "print_delivered"
	PrintFailed      = "print_failed"
	SyncPushed       = "sync_pushed"
	SyncFailed       = "sync_failed"
	TxnStored        = "txn_stored"
	SystemCPUPercent = "system_cpu_percent"
	SystemMemPercent = "system_mem_percent"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// Init opens the metrics partition under the workdir. Call once at boot.
func Init(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(7*24*time.Hour),
	)
	if err != nil {
		return errors.Errorf("metrics storage open: %v", err)
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		if err := storage.Close(); err != nil {
			zap.L().Warn("metrics storage close", zap.Error(err))
		}
		storage = nil
	}
}

// Gauge records an instantaneous value.
func Gauge(name string, value float64) {
	insert(name, value)
}

// Incr records a counter tick.
func Incr(name string) {
	insert(name, 1)
}

func insert(name string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
	if err != nil {
		zap.L().Debug("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// Summary describes one metric over a window.
type Summary struct {
	Metric string  `json:"metric"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	P95    float64 `json:"p95"`
}

// Summarize aggregates a metric over the trailing window. A metric with
// no points in the window yields a zero Summary, not an error.
func Summarize(name string, window time.Duration) Summary {
	out := Summary{Metric: name}

	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return out
	}

	end := time.Now().Unix()
	start := end - int64(window.Seconds())
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		return out
	}

	values := make([]float64, 0, len(points))
	for _, p := range points {
		values = append(values, p.Value)
	}
	out.Count = len(values)
	if out.Count == 0 {
		return out
	}
	out.Sum, _ = stats.Sum(values)
	out.Mean, _ = stats.Mean(values)
	out.P95, _ = stats.Percentile(values, 95)
	return out
}
