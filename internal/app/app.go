package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/compazz/posbridge/config"
	"github.com/compazz/posbridge/internal/printing"
	"github.com/compazz/posbridge/internal/store"
	"github.com/compazz/posbridge/internal/syncer"
	"github.com/compazz/posbridge/pkg/metrics"
)

type Application struct {
	appConfig   *config.AppConfig
	localStore  *store.LocalStore
	bus         EventBus.Bus
	directory   *printing.Directory
	dispatcher  *printing.Dispatcher
	printQueue  *printing.Queue
	syncService *syncer.Service
	catalog     *syncer.CatalogRefresher
	sched       *cron.Cron
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ PrintProvider     = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() *store.LocalStore {
	return a.localStore
}

// OverrideStore replaces the application's store handle (used in tests).
func (a *Application) OverrideStore(st *store.LocalStore) {
	a.localStore = st
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Dispatcher() *printing.Dispatcher {
	return a.dispatcher
}

func (a *Application) PrintQueue() *printing.Queue {
	return a.printQueue
}

func (a *Application) Directory() *printing.Directory {
	return a.directory
}

func (a *Application) SyncService() *syncer.Service {
	return a.syncService
}

func (a *Application) Catalog() *syncer.CatalogRefresher {
	return a.catalog
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	cfg.InitDirs()

	// Initialize metrics with workdir convention
	if err := metrics.Init(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Open the local store; the daemon is useless without it.
	a.localStore, err = store.NewLocalStore(cfg.GetStorePath(), cfg.Store.Node)
	if err != nil {
		return err
	}
	if err := a.localStore.Init(); err != nil {
		return err
	}
	zap.S().Infof("Local store opened at %s", cfg.GetStorePath())

	a.bus = EventBus.New()

	// Printing pipeline
	a.directory = printing.NewDirectory()
	var renderer printing.Renderer
	if cfg.Printing.SilentCommand != "" {
		renderer = &printing.ExecRenderer{Command: cfg.Printing.SilentCommand}
	}
	a.dispatcher = printing.NewDispatcher(a.directory, cfg.Printing.DefaultPrinter, renderer)

	a.printQueue, err = printing.NewQueue(cfg.Printing.Workers, a.dispatcher, a.bus, a.newJobID)
	if err != nil {
		return err
	}

	// Async print outcomes only surface on the bus; record them here.
	_ = a.bus.Subscribe(printing.TopicPrintCompleted, func(res *printing.QueuedResult) {
		if res.Result.Success {
			metrics.Incr(metrics.PrintDelivered)
		} else {
			metrics.Incr(metrics.PrintFailed)
		}
	})

	// Sync worker, mode dependent
	if err := a.initSync(cfg); err != nil {
		zap.S().Errorf("sync init error: %v", err)
	}

	a.initJob()
	return nil
}

func (a *Application) newJobID() string {
	return a.localStore.NewID()
}

// initSync constructs the pusher selected by sync.mode and starts the
// drain loop. Mode "none" leaves the queue accumulating for a manual
// export.
func (a *Application) initSync(cfg *config.AppConfig) error {
	if cfg.Sync.Endpoint != "" {
		a.catalog = syncer.NewCatalogRefresher(a.localStore, cfg.Sync.Endpoint+"/catalog", cfg.Sync.APIKey)
	}

	var pusher syncer.Pusher
	switch cfg.Sync.Mode {
	case "http":
		pusher = syncer.NewHTTPPusher(cfg.Sync.Endpoint+"/operations", cfg.Sync.APIKey)
	case "postgres":
		p, err := syncer.NewPostgresPusher(cfg.Sync.DSN)
		if err != nil {
			return err
		}
		pusher = p
	case "", "none":
		zap.L().Info("sync worker disabled")
		return nil
	default:
		zap.S().Warnf("unknown sync mode %q, sync worker disabled", cfg.Sync.Mode)
		return nil
	}

	a.syncService = syncer.NewService(a.localStore, pusher, a.bus)
	a.syncService.Start(context.Background(), time.Duration(cfg.Sync.IntervalSec)*time.Second)
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.syncService != nil {
		a.syncService.Stop()
	}

	if a.printQueue != nil {
		a.printQueue.Release()
	}

	if a.localStore != nil {
		_ = a.localStore.Close()
	}

	metrics.Close()
	_ = zap.L().Sync()
}
