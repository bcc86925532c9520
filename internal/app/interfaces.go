package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"

	"github.com/compazz/posbridge/config"
	"github.com/compazz/posbridge/internal/printing"
	"github.com/compazz/posbridge/internal/store"
	"github.com/compazz/posbridge/internal/syncer"
)

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides local store access
type StoreProvider interface {
	Store() *store.LocalStore
}

// PrintProvider provides the printing pipeline
type PrintProvider interface {
	Dispatcher() *printing.Dispatcher
	PrintQueue() *printing.Queue
	Directory() *printing.Directory
}

// SyncProvider provides the sync worker, nil when sync is disabled
type SyncProvider interface {
	SyncService() *syncer.Service
	Catalog() *syncer.CatalogRefresher
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// BusProvider provides the in-process event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	ConfigProvider
	StoreProvider
	PrintProvider
	SyncProvider
	SchedulerProvider
	BusProvider

	// Application lifecycle methods
	Init(cfg *config.AppConfig) error
	Release()
}
