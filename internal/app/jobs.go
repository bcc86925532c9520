package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// retention for synced offline transactions before the daily prune
const syncedRetention = 30 * 24 * time.Hour

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedPruneSyncedTransactions()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.Gauge(metrics.SystemCPUPercent, _cpuuse[0])
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.Gauge(metrics.SystemMemPercent, _meminfo.UsedPercent)
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.Gauge("posbridge_cpu_percent", cpuuse)
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.Gauge("posbridge_mem_mb", float64(meminfo.RSS/1024/1024))
	}
}

// SchedPruneSyncedTransactions reclaims offline transactions that have
// long since reached the backend.
func (a *Application) SchedPruneSyncedTransactions() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	count, err := a.localStore.PruneSyncedTransactions(time.Now().Add(-syncedRetention))
	if err != nil {
		zap.S().Errorf("transaction prune failed: %v", err)
		return
	}
	if count > 0 {
		zap.L().Info("pruned synced transactions", zap.Int("count", count))
	}
}
