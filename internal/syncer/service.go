// Package syncer drains the local sync queue to the backend whenever
// connectivity allows. The store is the source of truth; the syncer only
// moves items out of it, never into it.
package syncer

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/compazz/posbridge/internal/domain"
	"github.com/compazz/posbridge/internal/store"
	"github.com/compazz/posbridge/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Bus topics published by the sync service.
const (
	TopicItemPushed = "sync.item.pushed"
	TopicDrained    = "sync.queue.drained"
)

const drainBatchLimit = 100

// Pusher delivers one queued operation to the backend. Implementations
// must be safe to call repeatedly with the same item; the backend is
// expected to dedupe on the offline id.
type Pusher interface {
	Name() string
	Push(ctx context.Context, item domain.SyncQueueItem) error
}

// Service replays queued offline operations in creation order on a fixed
// interval. A failed item keeps its place and blocks nothing; later items
// are still attempted in the same pass.
type Service struct {
	store      *store.LocalStore
	pusher     Pusher
	bus        EventBus.Bus
	syncTicker *time.Ticker
	stopChan   chan struct{}
}

func NewService(st *store.LocalStore, pusher Pusher, bus EventBus.Bus) *Service {
	return &Service{
		store:    st,
		pusher:   pusher,
		bus:      bus,
		stopChan: make(chan struct{}),
	}
}

// Start begins periodic queue draining.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	s.syncTicker = time.NewTicker(interval)
	go s.syncLoop(ctx)

	zap.L().Info("sync service started",
		zap.String("pusher", s.pusher.Name()),
		zap.Duration("sync_interval", interval),
	)
}

// Stop halts the periodic drain. In-flight pushes finish on their own.
func (s *Service) Stop() {
	if s.syncTicker != nil {
		s.syncTicker.Stop()
	}
	close(s.stopChan)
	zap.L().Info("sync service stopped")
}

func (s *Service) syncLoop(ctx context.Context) {
	for {
		select {
		case <-s.syncTicker.C:
			s.DrainOnce(ctx)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// DrainOnce pushes queued items oldest first and reports how many were
// delivered. Exported so the UI's "sync now" button can trigger a pass
// outside the ticker.
func (s *Service) DrainOnce(ctx context.Context) int {
	items, err := s.store.GetSyncQueue()
	if err != nil {
		zap.L().Error("failed to read sync queue", zap.Error(err))
		return 0
	}
	if len(items) == 0 {
		return 0
	}
	if len(items) > drainBatchLimit {
		items = items[:drainBatchLimit]
	}

	zap.L().Debug("draining sync queue", zap.Int("count", len(items)))

	pushed := 0
	for _, item := range items {
		select {
		case <-ctx.Done():
			return pushed
		default:
		}
		if s.pushItem(ctx, item) {
			pushed++
		}
	}

	if s.bus != nil {
		s.bus.Publish(TopicDrained, pushed)
	}
	return pushed
}

func (s *Service) pushItem(ctx context.Context, item domain.SyncQueueItem) bool {
	if err := s.pusher.Push(ctx, item); err != nil {
		metrics.Incr(metrics.SyncFailed)
		if merr := s.store.MarkSyncItemFailed(item.ID, err.Error()); merr != nil {
			zap.L().Error("failed to record sync failure",
				zap.Uint64("item_id", item.ID),
				zap.Error(merr),
			)
		}
		zap.L().Warn("sync push failed",
			zap.Uint64("item_id", item.ID),
			zap.String("type", item.Type),
			zap.Int("attempts", item.Attempts+1),
			zap.Error(err),
		)
		return false
	}

	s.afterPush(item)

	if err := s.store.RemoveSyncItem(item.ID); err != nil {
		zap.L().Error("failed to remove synced item",
			zap.Uint64("item_id", item.ID),
			zap.Error(err),
		)
		return false
	}

	metrics.Incr(metrics.SyncPushed)
	if s.bus != nil {
		s.bus.Publish(TopicItemPushed, item.ID, item.Type)
	}
	zap.L().Info("sync item pushed",
		zap.Uint64("item_id", item.ID),
		zap.String("type", item.Type),
	)
	return true
}

// afterPush applies the local side effect of a successful push. Only
// transactions have one: the stored copy flips to synced so the pruning
// job can eventually reclaim it.
func (s *Service) afterPush(item domain.SyncQueueItem) {
	if item.Type != domain.SyncTypeTransaction {
		return
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(item.Payload, &raw); err != nil {
		return
	}
	var txn struct {
		OfflineID string `mapstructure:"offline_id"`
	}
	if err := mapstructure.Decode(raw, &txn); err != nil || txn.OfflineID == "" {
		return
	}
	if err := s.store.MarkTransactionSynced(txn.OfflineID); err != nil {
		zap.L().Warn("failed to mark transaction synced",
			zap.String("offline_id", txn.OfflineID),
			zap.Error(err),
		)
	}
}
